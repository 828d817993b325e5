package handler

import (
	"net/http"
	"testing"

	"fithub-admin/internal/session"
)

func TestIsPublicAdminPath(t *testing.T) {
	cases := []struct {
		path string
		want bool
	}{
		{"/admin/login", true},
		{"/admin/login/", true},
		{"/admin/forgot-password", true},
		{"/admin/forgot-password/step2", true},
		{"/admin", false},
		{"/admin/", false},
		{"/admin/settings", false},
		{"/admin/loginx", false},
	}

	for _, tc := range cases {
		if got := isPublicAdminPath(tc.path); got != tc.want {
			t.Errorf("isPublicAdminPath(%q) = %v, want %v", tc.path, got, tc.want)
		}
	}
}

func TestGuardRedirectsAnonymousPageRequests(t *testing.T) {
	fx := newFixture(t, seedAdmin(t, false))

	for _, path := range []string{"/admin", "/admin/settings", "/admin/members"} {
		rec := fx.do(t, http.MethodGet, path, nil)
		if rec.Code != http.StatusFound {
			t.Errorf("GET %s: status = %d, want 302", path, rec.Code)
			continue
		}
		if loc := rec.Header().Get("Location"); loc != "/admin/login" {
			t.Errorf("GET %s: Location = %q, want /admin/login", path, loc)
		}
	}
}

func TestGuardAllowsPublicPages(t *testing.T) {
	fx := newFixture(t, seedAdmin(t, false))

	for _, path := range []string{"/admin/login", "/admin/forgot-password"} {
		rec := fx.do(t, http.MethodGet, path, nil)
		if rec.Code != http.StatusOK {
			t.Errorf("GET %s: status = %d, want 200", path, rec.Code)
		}
	}
}

func TestGuardRejectsExpiredAndGarbageCookies(t *testing.T) {
	fx := newFixture(t, seedAdmin(t, false))

	for _, value := range []string{"garbage", "a.b.c", ""} {
		rec := fx.do(t, http.MethodGet, "/admin", nil,
			&http.Cookie{Name: session.SessionCookie, Value: value})
		if rec.Code != http.StatusFound {
			t.Errorf("cookie %q: status = %d, want 302", value, rec.Code)
		}
	}
}

func TestLoginPageRedirectsAuthenticatedAdmin(t *testing.T) {
	fx := newFixture(t, seedAdmin(t, false))

	login := fx.do(t, http.MethodPost, "/api/auth/admin/login",
		map[string]string{"identifier": "yonetici@fithub.example", "password": "gizli-sifre"})
	sess := cookieFrom(t, login, session.SessionCookie)

	rec := fx.do(t, http.MethodGet, "/admin/login", nil, sess)
	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/admin" {
		t.Errorf("Location = %q, want /admin", loc)
	}
}

func TestGuardAPIRespondsJSONNotRedirect(t *testing.T) {
	fx := newFixture(t, seedAdmin(t, false))

	rec := fx.do(t, http.MethodGet, "/api/auth/admin/me", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "" {
		t.Errorf("API guard redirected to %q", loc)
	}
	if got := decodeResponse(t, rec).Error; got != MsgSessionExpired {
		t.Errorf("error = %q, want %q", got, MsgSessionExpired)
	}
}
