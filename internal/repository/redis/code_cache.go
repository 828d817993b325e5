// Package redis holds the short-lived challenge state: sealed one-time codes
// and their attempt counters, both expiring with the challenge itself.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"fithub-admin/internal/client"
	"fithub-admin/internal/util"
)

const (
	codePrefix        = "twofa_code:"
	codeAttemptPrefix = "twofa_attempts:"
)

// ErrCodeNotFound is returned when no sealed code exists for the admin,
// meaning the challenge expired or was never started.
var ErrCodeNotFound = errors.New("one-time code not found")

type CodeCache struct {
	client *client.RedisClient
}

func NewCodeCache(client *client.RedisClient) *CodeCache {
	return &CodeCache{client: client}
}

// SetCode stores the sealed code for a fresh challenge and clears any
// attempt counter from a previous one.
func (c *CodeCache) SetCode(ctx context.Context, adminID, sealed string, ttl time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	pipe := c.client.Pipeline()
	pipe.Set(ctx, codePrefix+adminID, sealed, ttl)
	pipe.Del(ctx, codeAttemptPrefix+adminID)
	if _, err := pipe.Exec(ctx); err != nil {
		util.Error("Failed to store one-time code",
			zap.String("admin_id", adminID),
			zap.Duration("ttl", ttl),
			zap.Error(err))
		return fmt.Errorf("failed to store one-time code: %w", err)
	}

	util.Debug("One-time code stored",
		zap.String("admin_id", adminID),
		zap.Duration("ttl", ttl))
	return nil
}

func (c *CodeCache) GetCode(ctx context.Context, adminID string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	sealed, err := c.client.Get(ctx, codePrefix+adminID)
	if err != nil {
		if errors.Is(err, client.ErrKeyNotFound) {
			return "", ErrCodeNotFound
		}
		util.Error("Failed to read one-time code",
			zap.String("admin_id", adminID),
			zap.Error(err))
		return "", fmt.Errorf("failed to read one-time code: %w", err)
	}
	return sealed, nil
}

// DeleteCode removes the sealed code and its attempt counter once the
// challenge is spent.
func (c *CodeCache) DeleteCode(ctx context.Context, adminID string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := c.client.Del(ctx, codePrefix+adminID, codeAttemptPrefix+adminID); err != nil {
		util.Error("Failed to delete one-time code",
			zap.String("admin_id", adminID),
			zap.Error(err))
		return fmt.Errorf("failed to delete one-time code: %w", err)
	}
	return nil
}

// IncrementAttempts bumps the per-challenge attempt counter, keeping its
// expiry aligned with the challenge window.
func (c *CodeCache) IncrementAttempts(ctx context.Context, adminID string, ttl time.Duration) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	count, err := c.client.IncrWithExpire(ctx, codeAttemptPrefix+adminID, ttl)
	if err != nil {
		util.Error("Failed to increment code attempts",
			zap.String("admin_id", adminID),
			zap.Error(err))
		return 0, fmt.Errorf("failed to increment code attempts: %w", err)
	}
	return int(count), nil
}
