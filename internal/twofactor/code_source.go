// Package twofactor generates and checks one-time codes. The code source is
// pluggable so the fixed development code can be swapped for random codes
// without touching the login state machine.
package twofactor

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"math/big"

	"golang.org/x/crypto/bcrypt"
)

const codeDigits = 6

// CodeSource produces a one-time code for delivery and a sealed form for
// storage, and later checks a submitted code against the sealed form.
type CodeSource interface {
	// Generate returns the code to send to the admin and the value to keep
	// in the challenge store.
	Generate() (code, sealed string, err error)
	// Matches reports whether a submitted code corresponds to the sealed
	// value. Implementations must not be vulnerable to timing comparison.
	Matches(submitted, sealed string) bool
}

// Fixed always issues the same code and stores it as-is. This mirrors the
// panel's long-standing development behavior (code 123456) and is selected
// outside production.
type Fixed struct {
	Code string
}

func NewFixed(code string) *Fixed {
	return &Fixed{Code: code}
}

func (f *Fixed) Generate() (string, string, error) {
	return f.Code, f.Code, nil
}

func (f *Fixed) Matches(submitted, sealed string) bool {
	return subtle.ConstantTimeCompare([]byte(submitted), []byte(sealed)) == 1
}

// Random issues a fresh 6-digit code per challenge and seals it with bcrypt,
// so the challenge store never holds a usable code.
type Random struct{}

func NewRandom() *Random {
	return &Random{}
}

func (g *Random) Generate() (string, string, error) {
	code, err := randomDigits(codeDigits)
	if err != nil {
		return "", "", fmt.Errorf("failed to generate one-time code: %w", err)
	}
	sealed, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return "", "", fmt.Errorf("failed to seal one-time code: %w", err)
	}
	return code, string(sealed), nil
}

func (g *Random) Matches(submitted, sealed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(sealed), []byte(submitted)) == nil
}

func randomDigits(n int) (string, error) {
	max := big.NewInt(10)
	buf := make([]byte, n)
	for i := range buf {
		d, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		buf[i] = byte('0' + d.Int64())
	}
	return string(buf), nil
}
