// Package notifier delivers one-time verification codes to administrators.
package notifier

import (
	"context"

	"go.uber.org/zap"

	"fithub-admin/internal/model"
	"fithub-admin/internal/util"
)

// Notifier sends a one-time code over the admin's configured channel.
type Notifier interface {
	SendCode(ctx context.Context, admin *model.Admin, code string) error
}

// LogNotifier writes codes to the application log instead of delivering
// them. Used outside production, where the fixed verification code is
// accepted anyway.
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (n *LogNotifier) SendCode(ctx context.Context, admin *model.Admin, code string) error {
	util.Info("Sending 2FA code",
		zap.String("admin_id", admin.AdminID),
		zap.String("method", admin.TwoFactorMethod),
		zap.String("code", code))
	return nil
}
