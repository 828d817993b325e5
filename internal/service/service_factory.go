package service

import (
	"go.uber.org/zap"

	"fithub-admin/internal/config"
	"fithub-admin/internal/events"
	"fithub-admin/internal/notifier"
	"fithub-admin/internal/repository/scylla"
	"fithub-admin/internal/twofactor"
)

// ServiceFactory creates and manages service instances
type ServiceFactory struct {
	adminRepo    scylla.AdminRepository
	settingsRepo scylla.SettingsRepository
	codes        CodeStore
	source       twofactor.CodeSource
	notifier     notifier.Notifier
	mailer       *notifier.SMTPNotifier
	publisher    *events.Publisher
	config       *config.Config
	logger       *zap.Logger

	authService     *AuthService
	adminService    *AdminService
	settingsService *SettingsService
}

// NewServiceFactory creates a new service factory
func NewServiceFactory(
	adminRepo scylla.AdminRepository,
	settingsRepo scylla.SettingsRepository,
	codes CodeStore,
	source twofactor.CodeSource,
	sender notifier.Notifier,
	mailer *notifier.SMTPNotifier,
	publisher *events.Publisher,
	cfg *config.Config,
	logger *zap.Logger,
) *ServiceFactory {
	return &ServiceFactory{
		adminRepo:    adminRepo,
		settingsRepo: settingsRepo,
		codes:        codes,
		source:       source,
		notifier:     sender,
		mailer:       mailer,
		publisher:    publisher,
		config:       cfg,
		logger:       logger,
	}
}

// AuthService returns the auth service instance (singleton)
func (f *ServiceFactory) AuthService() *AuthService {
	if f.authService == nil {
		f.authService = NewAuthService(
			f.adminRepo,
			f.codes,
			f.source,
			f.notifier,
			f.publisher,
			f.config,
		)
	}
	return f.authService
}

// AdminService returns the admin self-service instance (singleton)
func (f *ServiceFactory) AdminService() *AdminService {
	if f.adminService == nil {
		f.adminService = NewAdminService(
			f.adminRepo,
			f.codes,
			f.source,
			f.notifier,
			f.publisher,
			f.config,
		)
	}
	return f.adminService
}

// SettingsService returns the settings service instance (singleton)
func (f *ServiceFactory) SettingsService() *SettingsService {
	if f.settingsService == nil {
		f.settingsService = NewSettingsService(f.settingsRepo, f.mailer)
	}
	return f.settingsService
}
