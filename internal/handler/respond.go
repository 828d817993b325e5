package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"fithub-admin/internal/service"
	"fithub-admin/internal/util"
)

// Messages shown to panel users. The panel is Turkish-facing; internal
// detail stays in the logs and never reaches the response body.
const (
	MsgUserNotFound      = "Kullanıcı bulunamadı."
	MsgAdminNotFound     = "Admin bulunamadı."
	MsgAccountInactive   = "Hesabınız aktif değil."
	MsgInvalidPassword   = "Hatalı şifre."
	MsgSessionExpired    = "Oturum süresi doldu. Tekrar giriş yapın."
	MsgInvalidCode       = "Hatalı doğrulama kodu."
	MsgTooManyAttempts   = "Çok fazla hatalı deneme. Tekrar giriş yapın."
	MsgCurrentPassword   = "Mevcut şifre hatalı."
	MsgMissingField      = "Zorunlu alanlar eksik."
	MsgSystemError       = "Sistem hatası. Lütfen daha sonra tekrar deneyin."
	MsgInvalidBody       = "Geçersiz istek."
	MsgLoggedOut         = "Çıkış yapıldı."
	MsgPasswordChanged   = "Şifreniz güncellendi."
	MsgProfileUpdated    = "Profil güncellendi."
	MsgSettingsSaved     = "Ayarlar kaydedildi."
	MsgTestEmailSent     = "Test e-postası gönderildi."
	MsgCodeSent          = "Doğrulama kodu gönderildi."
	MsgTwoFactorEnabled  = "İki adımlı doğrulama etkinleştirildi."
	MsgTwoFactorDisabled = "İki adımlı doğrulama kapatıldı."
)

// Response represents a standard API response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Message string      `json:"message,omitempty"`
}

func successResponse(data interface{}, message string) Response {
	return Response{
		Success: true,
		Data:    data,
		Message: message,
	}
}

func errorResponse(message string) Response {
	return Response{
		Success: false,
		Error:   message,
	}
}

func respondWithJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		util.Error("Failed to encode JSON response", util.ErrorField(err))
	}
}

func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	respondWithJSON(w, statusCode, errorResponse(message))
}

// respondWithServiceError maps a service error onto its status code and
// localized message. Unknown errors become the generic system message.
func respondWithServiceError(w http.ResponseWriter, err error) {
	respondWithError(w, getStatusCode(err), localized(err))
}

func getStatusCode(err error) int {
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrAccountInactive):
		return http.StatusForbidden
	case errors.Is(err, service.ErrInvalidPassword),
		errors.Is(err, service.ErrChallengeExpired),
		errors.Is(err, service.ErrInvalidCode):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrTooManyAttempts):
		return http.StatusTooManyRequests
	case errors.Is(err, service.ErrCurrentPassword),
		errors.Is(err, service.ErrInvalidTwoFactor),
		errors.Is(err, service.ErrTwoFactorNotActive):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func localized(err error) string {
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		return MsgUserNotFound
	case errors.Is(err, service.ErrAccountInactive):
		return MsgAccountInactive
	case errors.Is(err, service.ErrInvalidPassword):
		return MsgInvalidPassword
	case errors.Is(err, service.ErrChallengeExpired):
		return MsgSessionExpired
	case errors.Is(err, service.ErrInvalidCode):
		return MsgInvalidCode
	case errors.Is(err, service.ErrTooManyAttempts):
		return MsgTooManyAttempts
	case errors.Is(err, service.ErrCurrentPassword):
		return MsgCurrentPassword
	case errors.Is(err, service.ErrInvalidTwoFactor),
		errors.Is(err, service.ErrTwoFactorNotActive):
		return MsgInvalidBody
	default:
		util.Error("Unhandled service error", util.ErrorField(err))
		return MsgSystemError
	}
}
