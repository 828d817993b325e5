package notifier

import (
	"context"
	"errors"
	"fmt"
	"net/smtp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"fithub-admin/internal/model"
	"fithub-admin/internal/repository/scylla"
	"fithub-admin/internal/util"
)

// ErrSMTPNotConfigured is returned when the relay settings are missing from
// the settings table.
var ErrSMTPNotConfigured = errors.New("smtp relay is not configured")

// SMTPNotifier emails one-time codes through the relay configured in the
// system settings table. Settings are read per send so saves from the admin
// settings panel take effect without a restart.
type SMTPNotifier struct {
	settings scylla.SettingsRepository
}

func NewSMTPNotifier(settings scylla.SettingsRepository) *SMTPNotifier {
	return &SMTPNotifier{settings: settings}
}

type relayConfig struct {
	host     string
	port     int
	user     string
	pass     string
	from     string
	fromName string
}

func (n *SMTPNotifier) relay(ctx context.Context) (*relayConfig, error) {
	all, err := n.settings.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	rc := &relayConfig{
		host:     all[model.SettingSMTPHost],
		user:     all[model.SettingSMTPUser],
		pass:     all[model.SettingSMTPPass],
		from:     all[model.SettingSMTPFrom],
		fromName: all[model.SettingSMTPFromName],
	}
	if rc.host == "" || rc.from == "" {
		return nil, ErrSMTPNotConfigured
	}

	rc.port = 587
	if raw := all[model.SettingSMTPPort]; raw != "" {
		if port, err := strconv.Atoi(raw); err == nil {
			rc.port = port
		}
	}
	return rc, nil
}

func (n *SMTPNotifier) SendCode(ctx context.Context, admin *model.Admin, code string) error {
	subject := "Doğrulama Kodu"
	body := fmt.Sprintf("Merhaba %s,\r\n\r\nDoğrulama kodunuz: %s\r\n\r\nBu kod 5 dakika içinde geçerliliğini yitirir.\r\n", admin.FullName(), code)
	return n.Send(ctx, admin.Email, subject, body)
}

// Send delivers one plain-text message through the configured relay.
func (n *SMTPNotifier) Send(ctx context.Context, to, subject, body string) error {
	rc, err := n.relay(ctx)
	if err != nil {
		return err
	}

	var msg strings.Builder
	if rc.fromName != "" {
		fmt.Fprintf(&msg, "From: %s <%s>\r\n", rc.fromName, rc.from)
	} else {
		fmt.Fprintf(&msg, "From: %s\r\n", rc.from)
	}
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=UTF-8\r\n\r\n")
	msg.WriteString(body)

	addr := fmt.Sprintf("%s:%d", rc.host, rc.port)
	var auth smtp.Auth
	if rc.user != "" {
		auth = smtp.PlainAuth("", rc.user, rc.pass, rc.host)
	}

	if err := smtp.SendMail(addr, auth, rc.from, []string{to}, []byte(msg.String())); err != nil {
		util.Error("Failed to send mail",
			zap.String("host", rc.host),
			zap.Int("port", rc.port),
			zap.Error(err))
		return fmt.Errorf("failed to send mail: %w", err)
	}

	util.Info("Mail sent", zap.String("to", to), zap.String("subject", subject))
	return nil
}
