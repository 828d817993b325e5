package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"fithub-admin/internal/config"
	"fithub-admin/internal/events"
	"fithub-admin/internal/model"
	"fithub-admin/internal/notifier"
	redisrepo "fithub-admin/internal/repository/redis"
	"fithub-admin/internal/repository/scylla"
	"fithub-admin/internal/twofactor"
	"fithub-admin/internal/util"
)

// Sentinel errors for the login flow. Handlers map these onto the localized
// messages shown in the admin panel.
var (
	ErrUserNotFound     = errors.New("user not found")
	ErrAccountInactive  = errors.New("account is not active")
	ErrInvalidPassword  = errors.New("invalid password")
	ErrChallengeExpired = errors.New("two-factor challenge expired")
	ErrInvalidCode      = errors.New("invalid verification code")
	ErrTooManyAttempts  = errors.New("too many failed code attempts")
)

// CodeStore is the challenge-state backend: sealed one-time codes and their
// attempt counters, both bounded by the challenge TTL.
type CodeStore interface {
	SetCode(ctx context.Context, adminID, sealed string, ttl time.Duration) error
	GetCode(ctx context.Context, adminID string) (string, error)
	DeleteCode(ctx context.Context, adminID string) error
	IncrementAttempts(ctx context.Context, adminID string, ttl time.Duration) (int, error)
}

// LoginOutcome is the result of a successful first factor. When
// RequiresTwoFactor is set, the caller must issue a challenge instead of a
// session.
type LoginOutcome struct {
	Admin             *model.Admin
	RequiresTwoFactor bool
}

// AuthService implements the admin authentication state machine: credential
// verification, the two-factor challenge, and logout bookkeeping. It never
// touches HTTP; cookie handling belongs to the session manager.
type AuthService struct {
	admins   scylla.AdminRepository
	codes    CodeStore
	source   twofactor.CodeSource
	notifier notifier.Notifier
	events   *events.Publisher
	config   *config.Config
}

func NewAuthService(
	admins scylla.AdminRepository,
	codes CodeStore,
	source twofactor.CodeSource,
	sender notifier.Notifier,
	publisher *events.Publisher,
	cfg *config.Config,
) *AuthService {
	return &AuthService{
		admins:   admins,
		codes:    codes,
		source:   source,
		notifier: sender,
		events:   publisher,
		config:   cfg,
	}
}

// VerifyCredentials runs the first authentication factor. The identifier is
// classified as email or phone, the account must be ACTIVE, and the password
// is checked against the stored bcrypt hash. When the admin has two-factor
// enabled, a one-time code is generated, stored, and dispatched, and the
// outcome demands the second factor.
func (s *AuthService) VerifyCredentials(ctx context.Context, identifier, password, ipAddress string) (*LoginOutcome, error) {
	admin, err := s.lookupAdmin(ctx, identifier)
	if err != nil {
		if errors.Is(err, scylla.ErrAdminNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if !admin.IsActive() {
		s.events.PublishSecurityEvent(ctx, admin.AdminID, model.EventLoginFailed, ipAddress, "account inactive")
		return nil, ErrAccountInactive
	}

	if bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)) != nil {
		s.events.PublishSecurityEvent(ctx, admin.AdminID, model.EventLoginFailed, ipAddress, "wrong password")
		return nil, ErrInvalidPassword
	}

	if admin.TwoFactorEnabled {
		if err := s.startChallenge(ctx, admin); err != nil {
			return nil, err
		}
		s.events.PublishSecurityEvent(ctx, admin.AdminID, model.EventTwoFactorRequired, ipAddress, "")
		return &LoginOutcome{Admin: admin, RequiresTwoFactor: true}, nil
	}

	s.recordLogin(ctx, admin.AdminID)
	s.events.PublishSecurityEvent(ctx, admin.AdminID, model.EventLoginSuccess, ipAddress, "")
	return &LoginOutcome{Admin: admin}, nil
}

// CompleteTwoFactor runs the second factor for the admin named by the
// partial token. Attempts are counted per challenge; exceeding the limit
// burns the code and forces a fresh login.
func (s *AuthService) CompleteTwoFactor(ctx context.Context, adminID, code, ipAddress string) (*model.Admin, error) {
	// The code is checked before the account: a wrong code on a vanished
	// account must still read as a code failure, not an account probe.
	if err := s.checkCode(ctx, adminID, code, ipAddress); err != nil {
		return nil, err
	}

	admin, err := s.admins.GetAdminByID(ctx, adminID)
	if err != nil {
		if errors.Is(err, scylla.ErrAdminNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	s.recordLogin(ctx, adminID)
	s.events.PublishSecurityEvent(ctx, adminID, model.EventLoginSuccess, ipAddress, "two-factor")
	return admin, nil
}

// Logout only records the event; the caller clears the cookies.
func (s *AuthService) Logout(ctx context.Context, adminID, ipAddress string) {
	s.events.PublishSecurityEvent(ctx, adminID, model.EventLogout, ipAddress, "")
}

// GetAdmin loads the account behind a verified session.
func (s *AuthService) GetAdmin(ctx context.Context, adminID string) (*model.Admin, error) {
	admin, err := s.admins.GetAdminByID(ctx, adminID)
	if err != nil {
		if errors.Is(err, scylla.ErrAdminNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return admin, nil
}

func (s *AuthService) lookupAdmin(ctx context.Context, identifier string) (*model.Admin, error) {
	if util.IsEmailIdentifier(identifier) {
		return s.admins.GetAdminByEmail(ctx, util.NormalizeEmail(identifier))
	}
	phone := util.NormalizePhone(identifier)
	if phone == "" {
		return nil, scylla.ErrAdminNotFound
	}
	return s.admins.GetAdminByPhone(ctx, phone)
}

// startChallenge generates, stores, and dispatches a fresh one-time code.
// Delivery is best-effort: in development the fixed code is accepted anyway,
// and a down relay must not hide the challenge state from the admin.
func (s *AuthService) startChallenge(ctx context.Context, admin *model.Admin) error {
	code, sealed, err := s.source.Generate()
	if err != nil {
		return err
	}
	if err := s.codes.SetCode(ctx, admin.AdminID, sealed, s.config.Auth.ChallengeTTL); err != nil {
		return err
	}
	if err := s.notifier.SendCode(ctx, admin, code); err != nil {
		util.Warn("Failed to dispatch one-time code",
			zap.String("admin_id", admin.AdminID),
			zap.Error(err))
	}
	return nil
}

// checkCode verifies a submitted code against the stored challenge and
// enforces the attempt limit.
func (s *AuthService) checkCode(ctx context.Context, adminID, code, ipAddress string) error {
	sealed, err := s.codes.GetCode(ctx, adminID)
	if err != nil {
		if errors.Is(err, redisrepo.ErrCodeNotFound) {
			return ErrChallengeExpired
		}
		return err
	}

	attempts, err := s.codes.IncrementAttempts(ctx, adminID, s.config.Auth.ChallengeTTL)
	if err != nil {
		return fmt.Errorf("failed to count code attempt: %w", err)
	}
	if attempts > s.config.Auth.MaxCodeAttempts {
		if err := s.codes.DeleteCode(ctx, adminID); err != nil {
			util.Warn("Failed to burn one-time code", zap.String("admin_id", adminID), zap.Error(err))
		}
		s.events.PublishSecurityEvent(ctx, adminID, model.EventTwoFactorLocked, ipAddress, "")
		return ErrTooManyAttempts
	}

	if !s.source.Matches(code, sealed) {
		s.events.PublishSecurityEvent(ctx, adminID, model.EventTwoFactorFailed, ipAddress, "")
		return ErrInvalidCode
	}

	if err := s.codes.DeleteCode(ctx, adminID); err != nil {
		util.Warn("Failed to clear spent code", zap.String("admin_id", adminID), zap.Error(err))
	}
	return nil
}

func (s *AuthService) recordLogin(ctx context.Context, adminID string) {
	if err := s.admins.UpdateLastLogin(ctx, adminID, time.Now().UTC()); err != nil {
		util.Warn("Failed to record last login", zap.String("admin_id", adminID), zap.Error(err))
	}
}
