package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"fithub-admin/internal/service"
	"fithub-admin/internal/util"
)

// SettingsHandler covers the system settings panels (SMTP relay and
// related probes).
type SettingsHandler struct {
	settingsService *service.SettingsService
	logger          *zap.Logger
}

func NewSettingsHandler(settingsService *service.SettingsService, logger *zap.Logger) *SettingsHandler {
	return &SettingsHandler{
		settingsService: settingsService,
		logger:          logger,
	}
}

func (h *SettingsHandler) GetSMTP(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settingsService.GetSMTPSettings(r.Context())
	if err != nil {
		h.logger.Error("Failed to load SMTP settings", util.ErrorField(err))
		respondWithError(w, http.StatusInternalServerError, MsgSystemError)
		return
	}
	respondWithJSON(w, http.StatusOK, successResponse(settings, ""))
}

func (h *SettingsHandler) PutSMTP(w http.ResponseWriter, r *http.Request) {
	var req service.SMTPSettings
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, MsgInvalidBody)
		return
	}
	if req.Host == "" || req.From == "" {
		respondWithError(w, http.StatusBadRequest, MsgMissingField)
		return
	}

	if err := h.settingsService.SaveSMTPSettings(r.Context(), &req); err != nil {
		h.logger.Error("Failed to save SMTP settings", util.ErrorField(err))
		respondWithError(w, http.StatusInternalServerError, MsgSystemError)
		return
	}

	respondWithJSON(w, http.StatusOK, successResponse(nil, MsgSettingsSaved))
	h.logger.Info("SMTP settings updated via HTTP", util.String("host", req.Host))
}

type testEmailRequest struct {
	To string `json:"to"`
}

func (h *SettingsHandler) SendTestEmail(w http.ResponseWriter, r *http.Request) {
	var req testEmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, MsgInvalidBody)
		return
	}
	req.To = strings.TrimSpace(req.To)
	if req.To == "" {
		respondWithError(w, http.StatusBadRequest, MsgMissingField)
		return
	}

	if err := h.settingsService.SendTestEmail(r.Context(), req.To); err != nil {
		h.logger.Warn("Test email failed", util.String("to", req.To), util.ErrorField(err))
		respondWithError(w, http.StatusBadGateway, MsgSystemError)
		return
	}
	respondWithJSON(w, http.StatusOK, successResponse(nil, MsgTestEmailSent))
}
