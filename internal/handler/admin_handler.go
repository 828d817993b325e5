package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"fithub-admin/internal/service"
	"fithub-admin/internal/session"
	"fithub-admin/internal/util"
)

// AdminHandler covers the signed-in admin's self-service endpoints.
type AdminHandler struct {
	adminService *service.AdminService
	logger       *zap.Logger
}

func NewAdminHandler(adminService *service.AdminService, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		adminService: adminService,
		logger:       logger,
	}
}

func adminID(r *http.Request) (string, bool) {
	claims, ok := session.ClaimsFromContext(r.Context())
	if !ok {
		return "", false
	}
	return claims.Subject, true
}

func (h *AdminHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := adminID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, MsgSessionExpired)
		return
	}

	admin, err := h.adminService.GetProfile(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			respondWithError(w, http.StatusNotFound, MsgAdminNotFound)
			return
		}
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, successResponse(admin, ""))
}

type updateProfileRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	AvatarURL string `json:"avatarUrl"`
}

func (h *AdminHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := adminID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, MsgSessionExpired)
		return
	}

	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, MsgInvalidBody)
		return
	}

	admin, err := h.adminService.UpdateProfile(r.Context(), id, service.UpdateProfileInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		AvatarURL: req.AvatarURL,
	})
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			respondWithError(w, http.StatusNotFound, MsgAdminNotFound)
			return
		}
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, successResponse(admin, MsgProfileUpdated))
	h.logger.Info("Admin profile updated via HTTP", util.String("admin_id", id))
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func (h *AdminHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	id, ok := adminID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, MsgSessionExpired)
		return
	}

	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, MsgInvalidBody)
		return
	}
	if req.CurrentPassword == "" || req.NewPassword == "" {
		respondWithError(w, http.StatusBadRequest, MsgMissingField)
		return
	}

	if err := h.adminService.ChangePassword(r.Context(), id, req.CurrentPassword, req.NewPassword, clientIP(r)); err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, successResponse(nil, MsgPasswordChanged))
	h.logger.Info("Admin password changed via HTTP", util.String("admin_id", id))
}

type twoFactorSetupRequest struct {
	Method string `json:"method"`
	Code   string `json:"code,omitempty"`
}

// SendTwoFactorCode starts two-factor enrollment by dispatching a code
// over the requested channel.
func (h *AdminHandler) SendTwoFactorCode(w http.ResponseWriter, r *http.Request) {
	id, ok := adminID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, MsgSessionExpired)
		return
	}

	var req twoFactorSetupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, MsgInvalidBody)
		return
	}

	if err := h.adminService.StartTwoFactorSetup(r.Context(), id, req.Method); err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, successResponse(nil, MsgCodeSent))
}

// VerifyTwoFactorSetup completes enrollment once the admin echoes the code.
func (h *AdminHandler) VerifyTwoFactorSetup(w http.ResponseWriter, r *http.Request) {
	id, ok := adminID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, MsgSessionExpired)
		return
	}

	var req twoFactorSetupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, MsgInvalidBody)
		return
	}
	if req.Code == "" {
		respondWithError(w, http.StatusBadRequest, MsgMissingField)
		return
	}

	if err := h.adminService.ConfirmTwoFactorSetup(r.Context(), id, req.Method, req.Code, clientIP(r)); err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, successResponse(nil, MsgTwoFactorEnabled))
	h.logger.Info("Admin two-factor enabled via HTTP", util.String("admin_id", id))
}

func (h *AdminHandler) DisableTwoFactor(w http.ResponseWriter, r *http.Request) {
	id, ok := adminID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, MsgSessionExpired)
		return
	}

	if err := h.adminService.DisableTwoFactor(r.Context(), id, clientIP(r)); err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, successResponse(nil, MsgTwoFactorDisabled))
	h.logger.Info("Admin two-factor disabled via HTTP", util.String("admin_id", id))
}
