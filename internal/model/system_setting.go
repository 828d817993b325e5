package model

import "time"

// SystemSetting is one row of the key-value settings table backing the
// admin settings panels (SMTP relay, captcha provider, and so on).
type SystemSetting struct {
	Key       string    `json:"key" db:"key"`
	Value     string    `json:"value" db:"value"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Well-known settings keys.
const (
	SettingSMTPHost     = "smtp_host"
	SettingSMTPPort     = "smtp_port"
	SettingSMTPUser     = "smtp_user"
	SettingSMTPPass     = "smtp_pass"
	SettingSMTPFrom     = "smtp_from"
	SettingSMTPFromName = "smtp_from_name"
	SettingSMTPSecure   = "smtp_secure"

	SettingCaptchaProvider = "captcha_provider"
	SettingCaptchaSiteKey  = "captcha_site_key"
	SettingCaptchaEnabled  = "captcha_enabled"
)
