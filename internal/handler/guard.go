package handler

import (
	"net/http"
	"strings"

	"fithub-admin/internal/session"
)

const loginPath = "/admin/login"

// publicAdminPaths are the /admin pages reachable without a session.
var publicAdminPaths = []string{
	"/admin/login",
	"/admin/forgot-password",
}

// Guard protects the admin surface. Pages get a redirect to the login
// screen; APIs get a 401 body the panel knows how to handle.
type Guard struct {
	sessions *session.Manager
}

func NewGuard(sessions *session.Manager) *Guard {
	return &Guard{sessions: sessions}
}

func isPublicAdminPath(path string) bool {
	for _, p := range publicAdminPaths {
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}

// RequireAdmin guards browser-facing admin pages. Requests without a valid
// full session bounce to the login page; partial tokens never pass.
func (g *Guard) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isPublicAdminPath(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		claims, ok := g.sessions.Current(r)
		if !ok {
			http.Redirect(w, r, loginPath, http.StatusFound)
			return
		}

		next.ServeHTTP(w, r.WithContext(session.WithClaims(r.Context(), claims)))
	})
}

// RequireAdminAPI guards JSON endpoints. No redirects here: the caller is
// script code, not a browser navigation.
func (g *Guard) RequireAdminAPI(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := g.sessions.Current(r)
		if !ok {
			respondWithError(w, http.StatusUnauthorized, MsgSessionExpired)
			return
		}

		next.ServeHTTP(w, r.WithContext(session.WithClaims(r.Context(), claims)))
	})
}
