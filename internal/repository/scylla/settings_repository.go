package scylla

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gocql/gocql"
	"go.uber.org/zap"

	"fithub-admin/internal/model"
	"fithub-admin/internal/util"
)

// ErrSettingNotFound is returned when a settings key has no value.
var ErrSettingNotFound = errors.New("setting not found")

// SettingsRepository persists the key-value system settings table behind the
// admin settings panels.
type SettingsRepository interface {
	Get(ctx context.Context, key string) (string, error)
	GetAll(ctx context.Context) (map[string]string, error)
	Upsert(ctx context.Context, key, value string) error
}

type settingsRepository struct {
	client *ScyllaClient
}

func NewSettingsRepository(client *ScyllaClient, logger *zap.Logger) SettingsRepository {
	return &settingsRepository{client: client}
}

func (r *settingsRepository) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := r.client.Session.Query(`SELECT value FROM system_settings WHERE key = ?`, key).
		WithContext(ctx).Scan(&value)
	if err != nil {
		if errors.Is(err, gocql.ErrNotFound) {
			return "", ErrSettingNotFound
		}
		return "", fmt.Errorf("failed to get setting %q: %w", key, err)
	}
	return value, nil
}

func (r *settingsRepository) GetAll(ctx context.Context) (map[string]string, error) {
	iter := r.client.Session.Query(`SELECT key, value FROM system_settings`).
		WithContext(ctx).Iter()

	settings := make(map[string]string)
	var s model.SystemSetting
	for iter.Scan(&s.Key, &s.Value) {
		settings[s.Key] = s.Value
	}
	if err := iter.Close(); err != nil {
		util.Error("Failed to list system settings", zap.Error(err))
		return nil, fmt.Errorf("failed to list system settings: %w", err)
	}
	return settings, nil
}

func (r *settingsRepository) Upsert(ctx context.Context, key, value string) error {
	err := r.client.Session.Query(`INSERT INTO system_settings (key, value, updated_at) VALUES (?, ?, ?)`,
		key, value, time.Now().UTC()).WithContext(ctx).Exec()
	if err != nil {
		util.Error("Failed to upsert setting", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("failed to upsert setting %q: %w", key, err)
	}
	return nil
}
