package mockapi

import (
	"context"

	"go.uber.org/zap"
)

// Mailer delivers verification codes and reset links.
type Mailer interface {
	SendOTP(ctx context.Context, email, otp string)
	SendResetLink(ctx context.Context, email, link string)
}

// LogMailer writes messages to the log instead of sending email.
type LogMailer struct {
	log *zap.Logger
}

func NewLogMailer(log *zap.Logger) *LogMailer {
	return &LogMailer{log: log}
}

func (m *LogMailer) SendOTP(_ context.Context, email, otp string) {
	m.log.Info("verification code", zap.String("email", email), zap.String("otp", otp))
}

func (m *LogMailer) SendResetLink(_ context.Context, email, link string) {
	m.log.Info("password reset link", zap.String("email", email), zap.String("link", link))
}
