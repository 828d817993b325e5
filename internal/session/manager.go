// Package session manages the admin session cookies: the full 24h session
// and the short-lived partial cookie issued between the first and second
// authentication factors.
package session

import (
	"context"
	"net/http"
	"time"

	"fithub-admin/internal/config"
	"fithub-admin/internal/model"
	"fithub-admin/internal/token"
)

const (
	SessionCookie   = "admin_session"
	ChallengeCookie = "admin_2fa_temp"
)

type contextKey struct{}

var claimsKey contextKey

// Manager issues and revokes the cookie-borne admin credentials. Tokens are
// self-contained; nothing is persisted server-side.
type Manager struct {
	codec        *token.Codec
	sessionTTL   time.Duration
	challengeTTL time.Duration
	secure       bool
}

func NewManager(codec *token.Codec, cfg *config.Config) *Manager {
	return &Manager{
		codec:        codec,
		sessionTTL:   cfg.Auth.SessionTTL,
		challengeTTL: cfg.Auth.ChallengeTTL,
		secure:       cfg.IsProduction(),
	}
}

// Issue creates the full session for an authenticated admin and sets the
// session cookie. Returns the signed token.
func (m *Manager) Issue(w http.ResponseWriter, admin *model.Admin) (string, error) {
	claims := token.Claims{Email: admin.Email, Role: admin.Role}
	claims.Subject = admin.AdminID

	signed, err := m.codec.Issue(claims, m.sessionTTL)
	if err != nil {
		return "", err
	}

	http.SetCookie(w, m.cookie(SessionCookie, signed, int(m.sessionTTL.Seconds())))
	return signed, nil
}

// IssueChallenge creates the partial token for a pending second factor and
// sets the temporary cookie.
func (m *Manager) IssueChallenge(w http.ResponseWriter, adminID string) (string, error) {
	claims := token.Claims{Partial: true}
	claims.Subject = adminID

	signed, err := m.codec.Issue(claims, m.challengeTTL)
	if err != nil {
		return "", err
	}

	http.SetCookie(w, m.cookie(ChallengeCookie, signed, int(m.challengeTTL.Seconds())))
	return signed, nil
}

// Destroy clears both cookies. Idempotent: clearing absent cookies is fine.
func (m *Manager) Destroy(w http.ResponseWriter) {
	http.SetCookie(w, m.cookie(SessionCookie, "", -1))
	http.SetCookie(w, m.cookie(ChallengeCookie, "", -1))
}

// ClearChallenge removes only the partial cookie, after a passed or spent
// challenge.
func (m *Manager) ClearChallenge(w http.ResponseWriter) {
	http.SetCookie(w, m.cookie(ChallengeCookie, "", -1))
}

// Current returns the verified full-session claims from the request, or
// (nil, false) on any missing, invalid, expired, or partial token. It never
// propagates an error: an unreadable session is simply no session.
func (m *Manager) Current(r *http.Request) (*token.Claims, bool) {
	claims := m.verifyCookie(r, SessionCookie)
	if claims == nil || claims.Partial {
		return nil, false
	}
	return claims, true
}

// Challenge returns the verified partial claims, or (nil, false). A full
// token presented here is rejected: it belongs to a different cookie and a
// different stage.
func (m *Manager) Challenge(r *http.Request) (*token.Claims, bool) {
	claims := m.verifyCookie(r, ChallengeCookie)
	if claims == nil || !claims.Partial {
		return nil, false
	}
	return claims, true
}

func (m *Manager) verifyCookie(r *http.Request, name string) *token.Claims {
	cookie, err := r.Cookie(name)
	if err != nil || cookie.Value == "" {
		return nil
	}
	claims, err := m.codec.Verify(cookie.Value)
	if err != nil {
		return nil
	}
	return claims
}

func (m *Manager) cookie(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// WithClaims stores verified claims on a request context.
func WithClaims(ctx context.Context, claims *token.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// ClaimsFromContext retrieves claims stored by the route guard.
func ClaimsFromContext(ctx context.Context) (*token.Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(*token.Claims)
	return claims, ok
}
