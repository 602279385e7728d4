package mockapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Server is the development API process.
type Server struct {
	cfg   *Config
	log   *zap.Logger
	http  *http.Server
	redis *redis.Client
}

// NewServer builds the store, token issuer and limiter from cfg. Without a
// reachable redis the resend limiter is disabled.
func NewServer(ctx context.Context, cfg *Config, log *zap.Logger) *Server {
	s := &Server{cfg: cfg, log: log}

	var limiter Limiter
	if cfg.RedisAddr != "" {
		s.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := s.redis.Ping(pingCtx).Err(); err != nil {
			log.Warn("redis ping failed, resend limiter disabled", zap.Error(err))
		} else {
			limiter = NewRedisLimiter(s.redis, cfg.ResendWindow, cfg.ResendLimit)
		}
		cancel()
	}

	h := NewHandler(log,
		NewStore(cfg.OTPTTL, cfg.ResetTTL),
		NewTokens(cfg.JWTSecret, cfg.AccessTTL),
		NewLogMailer(log),
		limiter,
		cfg.PublicURL,
	)
	s.http = &http.Server{
		Addr:              cfg.Addr,
		Handler:           NewRouter(log, h),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("starting server", zap.String("addr", s.cfg.Addr))
		errCh <- s.http.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		s.close()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := s.http.Shutdown(shutdownCtx)
	s.close()
	return err
}

func (s *Server) close() {
	if s.redis != nil {
		_ = s.redis.Close()
	}
}
