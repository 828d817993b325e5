package service

import (
	"context"
	"strconv"

	"fithub-admin/internal/model"
	"fithub-admin/internal/notifier"
	"fithub-admin/internal/repository/scylla"
)

// SettingsService reads and writes the system settings table behind the
// admin settings panels.
type SettingsService struct {
	settings scylla.SettingsRepository
	mailer   *notifier.SMTPNotifier
}

func NewSettingsService(settings scylla.SettingsRepository, mailer *notifier.SMTPNotifier) *SettingsService {
	return &SettingsService{settings: settings, mailer: mailer}
}

// SMTPSettings is the relay configuration shown on the settings page. The
// password is write-only: reads return whether one is stored, never the
// value.
type SMTPSettings struct {
	Host        string `json:"host"`
	Port        int    `json:"port"`
	User        string `json:"user"`
	Password    string `json:"password,omitempty"`
	From        string `json:"from"`
	FromName    string `json:"fromName"`
	Secure      bool   `json:"secure"`
	HasPassword bool   `json:"hasPassword"`
}

// CaptchaConfig is the public captcha configuration the login page loads
// before rendering.
type CaptchaConfig struct {
	Provider string `json:"provider"`
	SiteKey  string `json:"siteKey"`
	Enabled  bool   `json:"enabled"`
}

func (s *SettingsService) GetSMTPSettings(ctx context.Context) (*SMTPSettings, error) {
	all, err := s.settings.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	out := &SMTPSettings{
		Host:        all[model.SettingSMTPHost],
		Port:        587,
		User:        all[model.SettingSMTPUser],
		From:        all[model.SettingSMTPFrom],
		FromName:    all[model.SettingSMTPFromName],
		HasPassword: all[model.SettingSMTPPass] != "",
	}
	if raw := all[model.SettingSMTPPort]; raw != "" {
		if port, err := strconv.Atoi(raw); err == nil {
			out.Port = port
		}
	}
	if raw := all[model.SettingSMTPSecure]; raw != "" {
		out.Secure, _ = strconv.ParseBool(raw)
	}
	return out, nil
}

// SaveSMTPSettings upserts the relay settings. An empty password keeps the
// stored one, so the panel can resubmit the form without re-entering it.
func (s *SettingsService) SaveSMTPSettings(ctx context.Context, in *SMTPSettings) error {
	pairs := map[string]string{
		model.SettingSMTPHost:     in.Host,
		model.SettingSMTPPort:     strconv.Itoa(in.Port),
		model.SettingSMTPUser:     in.User,
		model.SettingSMTPFrom:     in.From,
		model.SettingSMTPFromName: in.FromName,
		model.SettingSMTPSecure:   strconv.FormatBool(in.Secure),
	}
	if in.Password != "" {
		pairs[model.SettingSMTPPass] = in.Password
	}

	for key, value := range pairs {
		if err := s.settings.Upsert(ctx, key, value); err != nil {
			return err
		}
	}
	return nil
}

// SendTestEmail delivers a probe message through the saved relay settings.
func (s *SettingsService) SendTestEmail(ctx context.Context, to string) error {
	return s.mailer.Send(ctx, to,
		"SMTP Test",
		"SMTP ayarlarınız doğru şekilde yapılandırıldı.\r\n")
}

// GetCaptchaConfig returns the captcha settings for the login page, with
// the provider defaulting to Turnstile.
func (s *SettingsService) GetCaptchaConfig(ctx context.Context) (*CaptchaConfig, error) {
	all, err := s.settings.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	out := &CaptchaConfig{
		Provider: all[model.SettingCaptchaProvider],
		SiteKey:  all[model.SettingCaptchaSiteKey],
	}
	if out.Provider == "" {
		out.Provider = "turnstile"
	}
	if raw := all[model.SettingCaptchaEnabled]; raw != "" {
		out.Enabled, _ = strconv.ParseBool(raw)
	}
	return out, nil
}
