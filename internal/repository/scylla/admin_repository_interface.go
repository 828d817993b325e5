package scylla

import (
	"context"
	"time"

	"fithub-admin/internal/model"
)

// AdminRepository defines the persistence operations for administrator
// accounts.
type AdminRepository interface {
	CreateAdmin(ctx context.Context, admin *model.Admin) error
	GetAdminByID(ctx context.Context, adminID string) (*model.Admin, error)
	GetAdminByEmail(ctx context.Context, email string) (*model.Admin, error)
	GetAdminByPhone(ctx context.Context, phone string) (*model.Admin, error)

	UpdateProfile(ctx context.Context, admin *model.Admin) error
	UpdatePasswordHash(ctx context.Context, adminID, passwordHash string) error
	UpdateTwoFactor(ctx context.Context, adminID string, enabled bool, method string) error
	UpdateLastLogin(ctx context.Context, adminID string, at time.Time) error

	HealthCheck(ctx context.Context) error
}
