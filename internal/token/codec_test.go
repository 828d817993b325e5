package token

import (
	"errors"
	"testing"
	"time"
)

const testSecret = "test_signing_secret"

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func TestIssueAndVerifyRoundTrip(t *testing.T) {
	codec := NewCodec(testSecret)

	claims := Claims{Email: "admin@example.com", Role: "SUPER_ADMIN"}
	claims.Subject = "admin-1"

	raw, err := codec.Issue(claims, time.Hour)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	got, err := codec.Verify(raw)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if got.Subject != "admin-1" {
		t.Errorf("subject = %q, want %q", got.Subject, "admin-1")
	}
	if got.Email != "admin@example.com" {
		t.Errorf("email = %q, want %q", got.Email, "admin@example.com")
	}
	if got.Role != "SUPER_ADMIN" {
		t.Errorf("role = %q, want %q", got.Role, "SUPER_ADMIN")
	}
	if got.Partial {
		t.Error("full token must not carry the partial marker")
	}
}

func TestPartialClaimSurvivesRoundTrip(t *testing.T) {
	codec := NewCodec(testSecret)

	claims := Claims{Partial: true}
	claims.Subject = "admin-1"

	raw, err := codec.Issue(claims, 5*time.Minute)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	got, err := codec.Verify(raw)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !got.Partial {
		t.Error("partial marker lost in round trip")
	}
	if got.Email != "" || got.Role != "" {
		t.Errorf("partial token must not carry identity claims, got email=%q role=%q", got.Email, got.Role)
	}
}

func TestVerifyExpiryBoundary(t *testing.T) {
	issuedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ttl := time.Hour

	issuer := NewCodec(testSecret).WithClock(fixedClock(issuedAt))
	claims := Claims{}
	claims.Subject = "admin-1"

	raw, err := issuer.Issue(claims, ttl)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	justBefore := NewCodec(testSecret).WithClock(fixedClock(issuedAt.Add(ttl - time.Second)))
	if _, err := justBefore.Verify(raw); err != nil {
		t.Errorf("token one second before expiry should verify, got %v", err)
	}

	justAfter := NewCodec(testSecret).WithClock(fixedClock(issuedAt.Add(ttl + time.Second)))
	if _, err := justAfter.Verify(raw); !errors.Is(err, ErrExpired) {
		t.Errorf("token past expiry: got %v, want ErrExpired", err)
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	raw, err := NewCodec(testSecret).Issue(Claims{}, time.Hour)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if _, err := NewCodec("other_secret").Verify(raw); !errors.Is(err, ErrSignature) {
		t.Errorf("wrong secret: got %v, want ErrSignature", err)
	}
}

func TestVerifyRejectsTamperedToken(t *testing.T) {
	codec := NewCodec(testSecret)
	raw, err := codec.Issue(Claims{Role: "ADMIN"}, time.Hour)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	tampered := raw[:len(raw)-2] + "xx"
	if _, err := codec.Verify(tampered); err == nil {
		t.Error("tampered token verified")
	}
}

func TestVerifyRejectsMalformedToken(t *testing.T) {
	codec := NewCodec(testSecret)

	for _, raw := range []string{"", "not-a-token", "a.b", "a.b.c.d"} {
		if _, err := codec.Verify(raw); !errors.Is(err, ErrMalformed) {
			t.Errorf("Verify(%q): got %v, want ErrMalformed", raw, err)
		}
	}
}
