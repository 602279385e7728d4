package client

import (
	"context"

	"github.com/medhelper/medhelper/internal/client/models"
)

// Client is the MedHelper API surface used by the CLI.
type Client interface {
	Login(ctx context.Context, email, password string) (string, error)
	Register(ctx context.Context, req models.SignUp) error
	VerifyEmail(ctx context.Context, otp string) error
	ResendOTP(ctx context.Context, email string) error
	RequestPasswordReset(ctx context.Context, email string) error
	SetNewPassword(ctx context.Context, req models.PasswordReset) error

	CartCount(ctx context.Context) (int, error)
	Notifications(ctx context.Context, page, pageSize int) (*models.NotificationPage, error)
	MarkNotificationRead(ctx context.Context, id int64) error
}

// TokenSource supplies the bearer token for authenticated requests. An empty
// token means the request goes out without Authorization.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// TokenSourceFunc adapts a function to TokenSource.
type TokenSourceFunc func(ctx context.Context) (string, error)

func (f TokenSourceFunc) Token(ctx context.Context) (string, error) { return f(ctx) }
