package util

import "testing"

func TestGetEnv(t *testing.T) {
	t.Setenv("FITHUB_TEST_ENV_KEY", "set-value")

	if got := GetEnv("FITHUB_TEST_ENV_KEY", "fallback"); got != "set-value" {
		t.Errorf("GetEnv set key = %q, want set-value", got)
	}
	if got := GetEnv("FITHUB_TEST_ENV_MISSING", "fallback"); got != "fallback" {
		t.Errorf("GetEnv missing key = %q, want fallback", got)
	}

	t.Setenv("FITHUB_TEST_ENV_KEY", "")
	if got := GetEnv("FITHUB_TEST_ENV_KEY", "fallback"); got != "fallback" {
		t.Errorf("GetEnv empty key = %q, want fallback", got)
	}
}
