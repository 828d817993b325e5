package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"fithub-admin/internal/service"
	"fithub-admin/internal/session"
	"fithub-admin/internal/util"
)

// AuthHandler handles the admin login flow: credentials, the two-factor
// challenge, logout, and session introspection.
type AuthHandler struct {
	authService     *service.AuthService
	settingsService *service.SettingsService
	sessions        *session.Manager
	logger          *zap.Logger
}

func NewAuthHandler(
	authService *service.AuthService,
	settingsService *service.SettingsService,
	sessions *session.Manager,
	logger *zap.Logger,
) *AuthHandler {
	return &AuthHandler{
		authService:     authService,
		settingsService: settingsService,
		sessions:        sessions,
		logger:          logger,
	}
}

type loginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

type loginResponse struct {
	RequiresTwoFactor bool        `json:"requires2FA"`
	Admin             interface{} `json:"admin,omitempty"`
}

// Login runs the first factor. A success either sets the full session
// cookie, or sets the short-lived challenge cookie and asks for the code.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, MsgInvalidBody)
		return
	}

	req.Identifier = strings.TrimSpace(req.Identifier)
	if req.Identifier == "" || req.Password == "" {
		respondWithError(w, http.StatusBadRequest, MsgMissingField)
		return
	}

	outcome, err := h.authService.VerifyCredentials(ctx, req.Identifier, req.Password, clientIP(r))
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	if outcome.RequiresTwoFactor {
		if _, err := h.sessions.IssueChallenge(w, outcome.Admin.AdminID); err != nil {
			h.logger.Error("Failed to issue challenge token", util.ErrorField(err))
			respondWithError(w, http.StatusInternalServerError, MsgSystemError)
			return
		}
		respondWithJSON(w, http.StatusOK, successResponse(loginResponse{RequiresTwoFactor: true}, ""))
		return
	}

	if _, err := h.sessions.Issue(w, outcome.Admin); err != nil {
		h.logger.Error("Failed to issue session token", util.ErrorField(err))
		respondWithError(w, http.StatusInternalServerError, MsgSystemError)
		return
	}

	respondWithJSON(w, http.StatusOK, successResponse(loginResponse{Admin: outcome.Admin}, ""))
	h.logger.Info("Admin logged in",
		util.String("admin_id", outcome.Admin.AdminID),
		util.Bool("two_factor", false),
	)
}

type verifyRequest struct {
	Code string `json:"code"`
}

// Verify2FA runs the second factor against the partial cookie. On success
// the challenge cookie is replaced by the full session.
func (h *AuthHandler) Verify2FA(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	claims, ok := h.sessions.Challenge(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, MsgSessionExpired)
		return
	}

	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, MsgInvalidBody)
		return
	}
	req.Code = strings.TrimSpace(req.Code)
	if req.Code == "" {
		respondWithError(w, http.StatusBadRequest, MsgMissingField)
		return
	}

	admin, err := h.authService.CompleteTwoFactor(ctx, claims.Subject, req.Code, clientIP(r))
	if err != nil {
		// Here the account came from a signed challenge token, so a
		// lookup miss means the admin itself is gone.
		if errors.Is(err, service.ErrUserNotFound) {
			respondWithError(w, http.StatusNotFound, MsgAdminNotFound)
			return
		}
		respondWithServiceError(w, err)
		return
	}

	h.sessions.ClearChallenge(w)
	if _, err := h.sessions.Issue(w, admin); err != nil {
		h.logger.Error("Failed to issue session token", util.ErrorField(err))
		respondWithError(w, http.StatusInternalServerError, MsgSystemError)
		return
	}

	respondWithJSON(w, http.StatusOK, successResponse(loginResponse{Admin: admin}, ""))
	h.logger.Info("Admin logged in",
		util.String("admin_id", admin.AdminID),
		util.Bool("two_factor", true),
	)
}

// Logout clears both cookies unconditionally. A dead session still logs
// out cleanly.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if claims, ok := h.sessions.Current(r); ok {
		h.authService.Logout(r.Context(), claims.Subject, clientIP(r))
	}

	h.sessions.Destroy(w)
	respondWithJSON(w, http.StatusOK, successResponse(nil, MsgLoggedOut))
}

// Me returns the account behind the current session.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := session.ClaimsFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, MsgSessionExpired)
		return
	}

	admin, err := h.authService.GetAdmin(r.Context(), claims.Subject)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, successResponse(admin, ""))
}

// CaptchaConfig serves the public captcha settings the login page loads
// before rendering.
func (h *AuthHandler) CaptchaConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.settingsService.GetCaptchaConfig(r.Context())
	if err != nil {
		h.logger.Error("Failed to load captcha config", util.ErrorField(err))
		respondWithError(w, http.StatusInternalServerError, MsgSystemError)
		return
	}
	respondWithJSON(w, http.StatusOK, successResponse(cfg, ""))
}

// clientIP trusts RemoteAddr; the RealIP middleware rewrites it from the
// forwarding headers upstream.
func clientIP(r *http.Request) string {
	addr := r.RemoteAddr
	if idx := strings.LastIndex(addr, ":"); idx > 0 {
		return addr[:idx]
	}
	return addr
}
