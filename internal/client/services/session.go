// Package services contains the application services of the MedHelper
// client: the durable session and the account reads shown by the shell.
package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/medhelper/medhelper/internal/client/repositories/metadata"
	"github.com/medhelper/medhelper/internal/common"
	"github.com/medhelper/medhelper/internal/dbx"
)

// Session is what the client remembers between runs.
type Session struct {
	Token         string
	Authenticated bool

	// Subject, Email and ExpiresAt come from the token's claims when the
	// token is a JWT. They are informational only; the signature is not
	// checked on the client.
	Subject   string
	Email     string
	ExpiresAt time.Time
}

// SessionService persists the session under the "token" and
// "isAuthenticated" keys.
//
// Contract:
//   - Save: store token and set the flag to "true" in one transaction.
//   - Load: read both keys; missing keys yield a zero Session.
//   - Clear: remove both keys (logout or a 401 on an authenticated call).
//   - IsAuthenticated: token present and flag equal to "true".
//   - Token: the stored token or "", suitable as a client.TokenSource.
type SessionService interface {
	Save(ctx context.Context, token string) error
	Load(ctx context.Context) (Session, error)
	Clear(ctx context.Context) error
	IsAuthenticated(ctx context.Context) (bool, error)
	Token(ctx context.Context) (string, error)
}

type sessionService struct {
	db *sql.DB
}

// NewSessionService binds a SessionService to the local database.
func NewSessionService(db *sql.DB) SessionService {
	return &sessionService{db: db}
}

func (s *sessionService) Save(ctx context.Context, token string) error {
	if token == "" {
		return fmt.Errorf("save session: empty token")
	}
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		if err := repo.Set(ctx, common.SessionKeyToken, []byte(token)); err != nil {
			return fmt.Errorf("save session: %w", err)
		}
		if err := repo.Set(ctx, common.SessionKeyAuthenticated, []byte("true")); err != nil {
			return fmt.Errorf("save session: %w", err)
		}
		return nil
	})
}

func (s *sessionService) Load(ctx context.Context) (Session, error) {
	repo := metadata.NewSQLiteRepository(s.db)

	token, err := repo.Get(ctx, common.SessionKeyToken)
	if err != nil {
		return Session{}, fmt.Errorf("load session: %w", err)
	}
	flag, err := repo.Get(ctx, common.SessionKeyAuthenticated)
	if err != nil {
		return Session{}, fmt.Errorf("load session: %w", err)
	}

	sess := Session{
		Token:         string(token),
		Authenticated: len(token) > 0 && string(flag) == "true",
	}
	readClaims(&sess)
	return sess, nil
}

func (s *sessionService) Clear(ctx context.Context) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		for _, key := range []string{common.SessionKeyToken, common.SessionKeyAuthenticated} {
			if err := repo.Delete(ctx, key); err != nil {
				return fmt.Errorf("clear session: %w", err)
			}
		}
		return nil
	})
}

func (s *sessionService) IsAuthenticated(ctx context.Context) (bool, error) {
	sess, err := s.Load(ctx)
	if err != nil {
		return false, err
	}
	return sess.Authenticated, nil
}

func (s *sessionService) Token(ctx context.Context) (string, error) {
	sess, err := s.Load(ctx)
	if err != nil {
		return "", err
	}
	if !sess.Authenticated {
		return "", nil
	}
	return sess.Token, nil
}

// readClaims fills the informational fields from an unverified JWT. Opaque
// tokens are left as they are.
func readClaims(sess *Session) {
	if sess.Token == "" {
		return
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(sess.Token, claims); err != nil {
		return
	}
	if sub, err := claims.GetSubject(); err == nil {
		sess.Subject = sub
	}
	if email, ok := claims["email"].(string); ok {
		sess.Email = email
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		sess.ExpiresAt = exp.Time
	}
}
