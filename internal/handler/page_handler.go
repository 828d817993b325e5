package handler

import (
	"net/http"

	"fithub-admin/internal/session"
)

// PageHandler serves the minimal server-rendered admin pages. The panel's
// real UI is a separate frontend; these endpoints exist so the guard has
// pages to protect and the login flow has somewhere to land.
type PageHandler struct {
	sessions *session.Manager
}

func NewPageHandler(sessions *session.Manager) *PageHandler {
	return &PageHandler{sessions: sessions}
}

func servePage(w http.ResponseWriter, title, body string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`<!doctype html><html lang="tr"><head><meta charset="utf-8"><title>` +
		title + `</title></head><body>` + body + `</body></html>`))
}

func (h *PageHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	servePage(w, "Yönetim Paneli", `<h1>Yönetim Paneli</h1>`)
}

// Login is public. An admin who already holds a full session is sent
// straight to the dashboard.
func (h *PageHandler) Login(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.sessions.Current(r); ok {
		http.Redirect(w, r, "/admin", http.StatusFound)
		return
	}
	servePage(w, "Giriş", `<h1>Yönetici Girişi</h1>`)
}

func (h *PageHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	servePage(w, "Şifremi Unuttum", `<h1>Şifremi Unuttum</h1>`)
}
