package model

import "time"

// Account status values. Only ACTIVE admins may authenticate.
const (
	StatusActive    = "ACTIVE"
	StatusInactive  = "INACTIVE"
	StatusPending   = "PENDING"
	StatusSuspended = "SUSPENDED"
)

// Admin roles.
const (
	RoleSuperAdmin = "SUPER_ADMIN"
	RoleAdmin      = "ADMIN"
)

// Two-factor delivery methods.
const (
	TwoFactorEmail = "EMAIL"
	TwoFactorPhone = "PHONE"
)

// Admin is an administrator account. Email is a unique identifier; Phone is
// optional but unique when set, stored digits-only.
type Admin struct {
	AdminID          string     `json:"admin_id" db:"admin_id"`
	Email            string     `json:"email" db:"email"`
	Phone            string     `json:"phone,omitempty" db:"phone"`
	FirstName        string     `json:"first_name" db:"first_name"`
	LastName         string     `json:"last_name" db:"last_name"`
	PasswordHash     string     `json:"-" db:"password_hash"`
	Role             string     `json:"role" db:"role"`
	Status           string     `json:"status" db:"status"`
	TwoFactorEnabled bool       `json:"two_factor_enabled" db:"two_factor_enabled"`
	TwoFactorMethod  string     `json:"two_factor_method,omitempty" db:"two_factor_method"`
	AvatarURL        string     `json:"avatar_url,omitempty" db:"avatar_url"`
	CreatedAt        time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at" db:"updated_at"`
	LastLoginAt      *time.Time `json:"last_login_at,omitempty" db:"last_login_at"`
}

// IsActive reports whether the account may authenticate.
func (a *Admin) IsActive() bool {
	return a.Status == StatusActive
}

// FullName joins first and last name for display and notifications.
func (a *Admin) FullName() string {
	if a.FirstName == "" {
		return a.LastName
	}
	if a.LastName == "" {
		return a.FirstName
	}
	return a.FirstName + " " + a.LastName
}
