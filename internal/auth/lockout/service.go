// Package lockout throttles sign-in attempts per email and client address.
package lockout

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	dErrors "roster/pkg/domain-errors"
)

// Store keeps failure counters and locks. Counters expire with their window
// and locks with their duration.
type Store interface {
	IncrementFailures(ctx context.Context, key string, window time.Duration) (int, error)
	Lock(ctx context.Context, key string, d time.Duration) error
	LockedFor(ctx context.Context, key string) (time.Duration, error)
	Clear(ctx context.Context, key string) error
}

type Config struct {
	MaxAttempts  int
	Window       time.Duration
	LockDuration time.Duration
}

func DefaultConfig() Config {
	return Config{MaxAttempts: 5, Window: 15 * time.Minute, LockDuration: 15 * time.Minute}
}

const MsgTooManyAttempts = "Demasiados intentos fallidos. Intenta de nuevo en %d minutos."

type Service struct {
	store  Store
	config Config
	logger *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithConfig replaces the defaults. Non-positive fields keep their default.
func WithConfig(cfg Config) Option {
	return func(s *Service) {
		if cfg.MaxAttempts > 0 {
			s.config.MaxAttempts = cfg.MaxAttempts
		}
		if cfg.Window > 0 {
			s.config.Window = cfg.Window
		}
		if cfg.LockDuration > 0 {
			s.config.LockDuration = cfg.LockDuration
		}
	}
}

func New(store Store, opts ...Option) *Service {
	s := &Service{
		store:  store,
		config: DefaultConfig(),
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Key identifies a lockout subject. The email is case-insensitive.
func Key(email, ip string) string {
	return strings.ToLower(strings.TrimSpace(email)) + "|" + ip
}

// Check fails with CodeRateLimited while the subject is locked.
func (s *Service) Check(ctx context.Context, email, ip string) error {
	remaining, err := s.store.LockedFor(ctx, Key(email, ip))
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to read sign-in lockout")
	}
	if remaining > 0 {
		minutes := int(math.Ceil(remaining.Minutes()))
		return dErrors.New(dErrors.CodeRateLimited, fmt.Sprintf(MsgTooManyAttempts, minutes)).
			WithReason("locked")
	}
	return nil
}

// RecordFailure counts a failed attempt and locks the subject once the
// window's attempts are used up.
func (s *Service) RecordFailure(ctx context.Context, email, ip string) error {
	key := Key(email, ip)
	n, err := s.store.IncrementFailures(ctx, key, s.config.Window)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record sign-in failure")
	}
	if n < s.config.MaxAttempts {
		return nil
	}
	if err := s.store.Lock(ctx, key, s.config.LockDuration); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to lock sign-in")
	}
	s.logger.WarnContext(ctx, "sign-in locked",
		"failures", n,
		"locked_for", s.config.LockDuration.String(),
		"client_ip", ip,
	)
	return nil
}

// Clear forgets failures after a successful sign-in.
func (s *Service) Clear(ctx context.Context, email, ip string) error {
	if err := s.store.Clear(ctx, Key(email, ip)); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to clear sign-in failures")
	}
	return nil
}
