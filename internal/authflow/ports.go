package authflow

import (
	"context"
	"sync"
	"time"

	"github.com/medhelper/medhelper/internal/client/models"
)

// AuthAPI is the remote side of the flow. client.HTTPClient implements it.
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (string, error)
	Register(ctx context.Context, req models.SignUp) error
	VerifyEmail(ctx context.Context, otp string) error
	ResendOTP(ctx context.Context, email string) error
	RequestPasswordReset(ctx context.Context, email string) error
	SetNewPassword(ctx context.Context, req models.PasswordReset) error
}

// SessionStore persists the session once a token is obtained.
type SessionStore interface {
	Save(ctx context.Context, token string) error
}

// Timer is a scheduled callback.
type Timer interface {
	Stop() bool
}

// Clock supplies time and delayed callbacks.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

// Navigator exposes the current location of the shell. The controller reads
// it to detect reset links and rewrites it after consuming one.
type Navigator interface {
	CurrentPath() string
	ReplacePath(path string)
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func (systemClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// SystemClock is the wall clock.
var SystemClock Clock = systemClock{}

// PathNavigator is a Navigator over a plain string, for shells without a
// router.
type PathNavigator struct {
	mu   sync.Mutex
	path string
}

func NewPathNavigator(path string) *PathNavigator {
	if path == "" {
		path = "/"
	}
	return &PathNavigator{path: path}
}

func (n *PathNavigator) CurrentPath() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.path
}

func (n *PathNavigator) ReplacePath(path string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.path = path
}
