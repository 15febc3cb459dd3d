// Package mail delivers password-reset messages. The only implementation
// for now logs the reset token instead of sending real email, which is
// enough for development and keeps the service layer decoupled from any
// particular provider.
package mail

import (
	"context"
	"log/slog"
)

// Mailer sends a password-reset token to a user's email address.
type Mailer interface {
	SendPasswordReset(ctx context.Context, email, token string) error
}

// LogMailer writes the reset token to the structured log.
type LogMailer struct {
	logger *slog.Logger
}

func NewLogMailer(logger *slog.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) SendPasswordReset(ctx context.Context, email, token string) error {
	m.logger.InfoContext(ctx, "password reset requested",
		"email", email,
		"token", token,
	)
	return nil
}
