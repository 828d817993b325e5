package model

import "time"

// Security event types emitted by the auth core.
const (
	EventLoginSuccess      = "login_success"
	EventLoginFailed       = "login_failed"
	EventTwoFactorRequired = "twofactor_required"
	EventTwoFactorFailed   = "twofactor_failed"
	EventTwoFactorLocked   = "twofactor_locked"
	EventLogout            = "logout"
	EventPasswordChanged   = "password_changed"
	EventTwoFactorEnabled  = "twofactor_enabled"
	EventTwoFactorDisabled = "twofactor_disabled"
)

// SecurityEvent is a single auth-related occurrence, fanned out to the
// Kafka topic, the Elasticsearch index, and the ClickHouse analytics table.
type SecurityEvent struct {
	EventBucket int       `json:"event_bucket" db:"event_bucket"`
	AdminID     string    `json:"admin_id" db:"admin_id"`
	EventType   string    `json:"event_type" db:"event_type"`
	EventTime   time.Time `json:"event_time" db:"event_time"`
	EventDate   string    `json:"event_date" db:"event_date"`
	IPAddress   string    `json:"ip_address,omitempty" db:"ip_address"`
	Details     string    `json:"details,omitempty" db:"details"`
}
