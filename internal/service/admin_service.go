package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"fithub-admin/internal/config"
	"fithub-admin/internal/events"
	"fithub-admin/internal/model"
	"fithub-admin/internal/notifier"
	"fithub-admin/internal/repository/scylla"
	"fithub-admin/internal/twofactor"
	"fithub-admin/internal/util"
)

// passwordHashCost matches the cost the panel has always stored hashes with.
const passwordHashCost = 10

var (
	ErrCurrentPassword    = errors.New("current password does not match")
	ErrInvalidTwoFactor   = errors.New("unsupported two-factor method")
	ErrTwoFactorNotActive = errors.New("two-factor is not enabled")
	ErrAdminExists        = errors.New("admin already exists")
)

// AdminService covers the signed-in admin's self-service operations:
// profile, password, and two-factor enrollment.
type AdminService struct {
	admins   scylla.AdminRepository
	codes    CodeStore
	source   twofactor.CodeSource
	notifier notifier.Notifier
	events   *events.Publisher
	config   *config.Config
}

func NewAdminService(
	admins scylla.AdminRepository,
	codes CodeStore,
	source twofactor.CodeSource,
	sender notifier.Notifier,
	publisher *events.Publisher,
	cfg *config.Config,
) *AdminService {
	return &AdminService{
		admins:   admins,
		codes:    codes,
		source:   source,
		notifier: sender,
		events:   publisher,
		config:   cfg,
	}
}

// UpdateProfileInput carries the mutable profile fields. Empty strings mean
// "clear" for optional fields; email must stay non-empty.
type UpdateProfileInput struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	AvatarURL string
}

// ProvisionAdminInput carries the fields a new administrator account is
// created with. Role defaults to SUPER_ADMIN.
type ProvisionAdminInput struct {
	Email     string
	Phone     string
	FirstName string
	LastName  string
	Password  string
	Role      string
}

// ProvisionAdmin creates an administrator account. Accounts are never
// self-registered; seeding and back-office tooling come through here.
func (s *AdminService) ProvisionAdmin(ctx context.Context, input ProvisionAdminInput) (*model.Admin, error) {
	email := util.NormalizeEmail(input.Email)
	if email == "" || input.Password == "" {
		return nil, errors.New("email and password are required")
	}

	if _, err := s.admins.GetAdminByEmail(ctx, email); err == nil {
		return nil, ErrAdminExists
	} else if !errors.Is(err, scylla.ErrAdminNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), passwordHashCost)
	if err != nil {
		return nil, err
	}

	role := input.Role
	if role == "" {
		role = model.RoleSuperAdmin
	}

	admin := &model.Admin{
		Email:        email,
		Phone:        util.NormalizePhone(input.Phone),
		FirstName:    util.SanitizeInput(input.FirstName),
		LastName:     util.SanitizeInput(input.LastName),
		PasswordHash: string(hash),
		Role:         role,
		Status:       model.StatusActive,
	}
	if err := s.admins.CreateAdmin(ctx, admin); err != nil {
		return nil, err
	}
	return admin, nil
}

func (s *AdminService) GetProfile(ctx context.Context, adminID string) (*model.Admin, error) {
	admin, err := s.admins.GetAdminByID(ctx, adminID)
	if err != nil {
		if errors.Is(err, scylla.ErrAdminNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return admin, nil
}

func (s *AdminService) UpdateProfile(ctx context.Context, adminID string, input UpdateProfileInput) (*model.Admin, error) {
	admin, err := s.GetProfile(ctx, adminID)
	if err != nil {
		return nil, err
	}

	admin.FirstName = util.SanitizeInput(input.FirstName)
	admin.LastName = util.SanitizeInput(input.LastName)
	admin.AvatarURL = input.AvatarURL
	if input.Email != "" {
		admin.Email = util.NormalizeEmail(input.Email)
	}
	admin.Phone = util.NormalizePhone(input.Phone)

	if err := s.admins.UpdateProfile(ctx, admin); err != nil {
		return nil, err
	}
	return admin, nil
}

// ChangePassword re-verifies the current password before storing the new
// hash, so a hijacked session alone cannot rotate the credential.
func (s *AdminService) ChangePassword(ctx context.Context, adminID, currentPassword, newPassword, ipAddress string) error {
	admin, err := s.GetProfile(ctx, adminID)
	if err != nil {
		return err
	}

	if bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(currentPassword)) != nil {
		return ErrCurrentPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), passwordHashCost)
	if err != nil {
		return err
	}
	if err := s.admins.UpdatePasswordHash(ctx, adminID, string(hash)); err != nil {
		return err
	}

	s.events.PublishSecurityEvent(ctx, adminID, model.EventPasswordChanged, ipAddress, "")
	return nil
}

// StartTwoFactorSetup sends a verification code for the chosen delivery
// method. Enrollment only completes once the admin echoes the code back.
func (s *AdminService) StartTwoFactorSetup(ctx context.Context, adminID, method string) error {
	if method != model.TwoFactorEmail && method != model.TwoFactorPhone {
		return ErrInvalidTwoFactor
	}

	admin, err := s.GetProfile(ctx, adminID)
	if err != nil {
		return err
	}

	code, sealed, err := s.source.Generate()
	if err != nil {
		return err
	}
	if err := s.codes.SetCode(ctx, adminID, sealed, s.config.Auth.ChallengeTTL); err != nil {
		return err
	}
	return s.notifier.SendCode(ctx, admin, code)
}

// ConfirmTwoFactorSetup verifies the echoed code and enables the second
// factor on the account.
func (s *AdminService) ConfirmTwoFactorSetup(ctx context.Context, adminID, method, code, ipAddress string) error {
	if method != model.TwoFactorEmail && method != model.TwoFactorPhone {
		return ErrInvalidTwoFactor
	}

	sealed, err := s.codes.GetCode(ctx, adminID)
	if err != nil {
		return ErrChallengeExpired
	}
	if !s.source.Matches(code, sealed) {
		return ErrInvalidCode
	}
	if err := s.codes.DeleteCode(ctx, adminID); err != nil {
		util.Warn("Failed to clear spent code", zap.String("admin_id", adminID), zap.Error(err))
	}

	if err := s.admins.UpdateTwoFactor(ctx, adminID, true, method); err != nil {
		return err
	}
	s.events.PublishSecurityEvent(ctx, adminID, model.EventTwoFactorEnabled, ipAddress, method)
	return nil
}

func (s *AdminService) DisableTwoFactor(ctx context.Context, adminID, ipAddress string) error {
	admin, err := s.GetProfile(ctx, adminID)
	if err != nil {
		return err
	}
	if !admin.TwoFactorEnabled {
		return ErrTwoFactorNotActive
	}

	if err := s.admins.UpdateTwoFactor(ctx, adminID, false, ""); err != nil {
		return err
	}
	s.events.PublishSecurityEvent(ctx, adminID, model.EventTwoFactorDisabled, ipAddress, "")
	return nil
}
