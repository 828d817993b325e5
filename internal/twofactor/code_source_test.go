package twofactor

import "testing"

func TestFixedSourceIssuesConstantCode(t *testing.T) {
	source := NewFixed("123456")

	code, sealed, err := source.Generate()
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if code != "123456" {
		t.Errorf("code = %q, want 123456", code)
	}
	if !source.Matches("123456", sealed) {
		t.Error("fixed code did not match its own sealed form")
	}
	if source.Matches("654321", sealed) {
		t.Error("wrong code matched")
	}
	if source.Matches("", sealed) {
		t.Error("empty code matched")
	}
}

func TestRandomSourceRoundTrip(t *testing.T) {
	source := NewRandom()

	code, sealed, err := source.Generate()
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(code) != codeDigits {
		t.Fatalf("code length = %d, want %d", len(code), codeDigits)
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			t.Fatalf("code %q contains non-digit %q", code, r)
		}
	}
	if sealed == code {
		t.Error("sealed form must not be the plain code")
	}
	if !source.Matches(code, sealed) {
		t.Error("generated code did not match its sealed form")
	}
	if source.Matches("000000", sealed) && code != "000000" {
		t.Error("wrong code matched sealed form")
	}
}

func TestRandomSourceGeneratesDistinctCodes(t *testing.T) {
	source := NewRandom()

	seen := make(map[string]bool)
	for i := 0; i < 5; i++ {
		code, _, err := source.Generate()
		if err != nil {
			t.Fatalf("Generate: %v", err)
		}
		seen[code] = true
	}
	if len(seen) < 2 {
		t.Error("five generations produced a single code; generator looks broken")
	}
}
