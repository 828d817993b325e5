package scylla

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gocql/gocql"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"fithub-admin/internal/model"
	"fithub-admin/internal/util"
)

// ErrAdminNotFound is returned when no administrator matches the lookup key.
var ErrAdminNotFound = errors.New("admin not found")

const adminColumns = `admin_id, email, phone, first_name, last_name, password_hash,
	role, status, two_factor_enabled, two_factor_method, avatar_url,
	created_at, updated_at, last_login_at`

// adminRepository stores admins in the `admins` table with `admins_by_email`
// and `admins_by_phone` lookup tables, so both identifier classes resolve in
// a single partition read.
type adminRepository struct {
	client *ScyllaClient
}

func NewAdminRepository(client *ScyllaClient, logger *zap.Logger) AdminRepository {
	return &adminRepository{client: client}
}

func (r *adminRepository) CreateAdmin(ctx context.Context, admin *model.Admin) error {
	if admin.AdminID == "" {
		admin.AdminID = uuid.New().String()
	}
	now := time.Now().UTC()
	admin.CreatedAt = now
	admin.UpdatedAt = now

	batch := r.client.Session.NewBatch(gocql.LoggedBatch).WithContext(ctx)

	batch.Query(fmt.Sprintf(`INSERT INTO admins (%s) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, adminColumns),
		admin.AdminID, admin.Email, admin.Phone, admin.FirstName, admin.LastName,
		admin.PasswordHash, admin.Role, admin.Status, admin.TwoFactorEnabled,
		admin.TwoFactorMethod, admin.AvatarURL, admin.CreatedAt, admin.UpdatedAt, admin.LastLoginAt)

	batch.Query(`INSERT INTO admins_by_email (email, admin_id) VALUES (?, ?)`,
		admin.Email, admin.AdminID)

	if admin.Phone != "" {
		batch.Query(`INSERT INTO admins_by_phone (phone, admin_id) VALUES (?, ?)`,
			admin.Phone, admin.AdminID)
	}

	if err := r.client.Session.ExecuteBatch(batch); err != nil {
		util.Error("Failed to create admin",
			zap.String("email", admin.Email),
			zap.Error(err))
		return fmt.Errorf("failed to create admin: %w", err)
	}

	util.Info("Admin created",
		zap.String("admin_id", admin.AdminID),
		zap.String("role", admin.Role))
	return nil
}

func (r *adminRepository) GetAdminByID(ctx context.Context, adminID string) (*model.Admin, error) {
	admin := &model.Admin{}

	err := r.client.Session.Query(fmt.Sprintf(`SELECT %s FROM admins WHERE admin_id = ?`, adminColumns), adminID).
		WithContext(ctx).
		Scan(&admin.AdminID, &admin.Email, &admin.Phone, &admin.FirstName, &admin.LastName,
			&admin.PasswordHash, &admin.Role, &admin.Status, &admin.TwoFactorEnabled,
			&admin.TwoFactorMethod, &admin.AvatarURL, &admin.CreatedAt, &admin.UpdatedAt, &admin.LastLoginAt)
	if err != nil {
		if errors.Is(err, gocql.ErrNotFound) {
			return nil, ErrAdminNotFound
		}
		util.Error("Failed to get admin by ID", zap.String("admin_id", adminID), zap.Error(err))
		return nil, fmt.Errorf("failed to get admin by ID: %w", err)
	}
	return admin, nil
}

func (r *adminRepository) GetAdminByEmail(ctx context.Context, email string) (*model.Admin, error) {
	var adminID string
	err := r.client.Session.Query(`SELECT admin_id FROM admins_by_email WHERE email = ?`, email).
		WithContext(ctx).Scan(&adminID)
	if err != nil {
		if errors.Is(err, gocql.ErrNotFound) {
			return nil, ErrAdminNotFound
		}
		util.Error("Failed to resolve admin by email", zap.Error(err))
		return nil, fmt.Errorf("failed to resolve admin by email: %w", err)
	}
	return r.GetAdminByID(ctx, adminID)
}

func (r *adminRepository) GetAdminByPhone(ctx context.Context, phone string) (*model.Admin, error) {
	var adminID string
	err := r.client.Session.Query(`SELECT admin_id FROM admins_by_phone WHERE phone = ?`, phone).
		WithContext(ctx).Scan(&adminID)
	if err != nil {
		if errors.Is(err, gocql.ErrNotFound) {
			return nil, ErrAdminNotFound
		}
		util.Error("Failed to resolve admin by phone", zap.Error(err))
		return nil, fmt.Errorf("failed to resolve admin by phone: %w", err)
	}
	return r.GetAdminByID(ctx, adminID)
}

// UpdateProfile rewrites the mutable profile fields and keeps the lookup
// tables consistent when the email or phone identifier changes.
func (r *adminRepository) UpdateProfile(ctx context.Context, admin *model.Admin) error {
	current, err := r.GetAdminByID(ctx, admin.AdminID)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	batch := r.client.Session.NewBatch(gocql.LoggedBatch).WithContext(ctx)

	batch.Query(`UPDATE admins SET email = ?, phone = ?, first_name = ?, last_name = ?,
		avatar_url = ?, updated_at = ? WHERE admin_id = ?`,
		admin.Email, admin.Phone, admin.FirstName, admin.LastName,
		admin.AvatarURL, now, admin.AdminID)

	if current.Email != admin.Email {
		batch.Query(`DELETE FROM admins_by_email WHERE email = ?`, current.Email)
		batch.Query(`INSERT INTO admins_by_email (email, admin_id) VALUES (?, ?)`,
			admin.Email, admin.AdminID)
	}
	if current.Phone != admin.Phone {
		if current.Phone != "" {
			batch.Query(`DELETE FROM admins_by_phone WHERE phone = ?`, current.Phone)
		}
		if admin.Phone != "" {
			batch.Query(`INSERT INTO admins_by_phone (phone, admin_id) VALUES (?, ?)`,
				admin.Phone, admin.AdminID)
		}
	}

	if err := r.client.Session.ExecuteBatch(batch); err != nil {
		util.Error("Failed to update admin profile",
			zap.String("admin_id", admin.AdminID),
			zap.Error(err))
		return fmt.Errorf("failed to update admin profile: %w", err)
	}

	admin.UpdatedAt = now
	util.Info("Admin profile updated", zap.String("admin_id", admin.AdminID))
	return nil
}

func (r *adminRepository) UpdatePasswordHash(ctx context.Context, adminID, passwordHash string) error {
	now := time.Now().UTC()
	err := r.client.Session.Query(`UPDATE admins SET password_hash = ?, updated_at = ? WHERE admin_id = ?`,
		passwordHash, now, adminID).WithContext(ctx).Exec()
	if err != nil {
		util.Error("Failed to update password hash", zap.String("admin_id", adminID), zap.Error(err))
		return fmt.Errorf("failed to update password hash: %w", err)
	}
	util.Info("Admin password hash updated", zap.String("admin_id", adminID))
	return nil
}

func (r *adminRepository) UpdateTwoFactor(ctx context.Context, adminID string, enabled bool, method string) error {
	now := time.Now().UTC()
	err := r.client.Session.Query(`UPDATE admins SET two_factor_enabled = ?, two_factor_method = ?, updated_at = ? WHERE admin_id = ?`,
		enabled, method, now, adminID).WithContext(ctx).Exec()
	if err != nil {
		util.Error("Failed to update two-factor settings", zap.String("admin_id", adminID), zap.Error(err))
		return fmt.Errorf("failed to update two-factor settings: %w", err)
	}
	util.Info("Admin two-factor settings updated",
		zap.String("admin_id", adminID),
		zap.Bool("enabled", enabled),
		zap.String("method", method))
	return nil
}

func (r *adminRepository) UpdateLastLogin(ctx context.Context, adminID string, at time.Time) error {
	err := r.client.Session.Query(`UPDATE admins SET last_login_at = ? WHERE admin_id = ?`,
		at, adminID).WithContext(ctx).Exec()
	if err != nil {
		util.Error("Failed to update last login", zap.String("admin_id", adminID), zap.Error(err))
		return fmt.Errorf("failed to update last login: %w", err)
	}
	return nil
}

func (r *adminRepository) HealthCheck(ctx context.Context) error {
	return r.client.HealthCheck(ctx)
}
