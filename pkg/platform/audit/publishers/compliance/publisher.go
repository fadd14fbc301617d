// Package compliance provides the synchronous audit publisher the roster
// services emit through.
//
// Emit blocks until the store write finishes and returns its error. Callers
// decide whether a failed write aborts the operation; the roster services log
// it, because the change they audit has already been applied.
package compliance

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	audit "roster/pkg/platform/audit"
)

var persistFailures = promauto.NewCounter(prometheus.CounterOpts{
	Name: "roster_audit_persist_failures_total",
	Help: "Audit events that could not be persisted",
})

// Publisher writes audit events to a store.
type Publisher struct {
	store  audit.Store
	logger *slog.Logger
	clock  func() time.Time
}

// Option configures the Publisher.
type Option func(*Publisher)

// WithLogger sets a logger for error reporting.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// WithClock overrides the timestamp source for events without one.
func WithClock(clock func() time.Time) Option {
	return func(p *Publisher) {
		if clock != nil {
			p.clock = clock
		}
	}
}

// New creates a publisher over store.
func New(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{
		store: store,
		clock: time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Emit validates and synchronously persists event. The category is always
// derived from the action.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	if event.Action == "" {
		return fmt.Errorf("audit event requires Action")
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = p.clock()
	}
	event.Category = audit.AuditEvent(event.Action).Category()

	if err := p.store.Append(ctx, event); err != nil {
		persistFailures.Inc()
		if p.logger != nil {
			p.logger.ErrorContext(ctx, "audit persistence failed",
				"action", event.Action,
				"subject", event.Subject,
				"error", err,
			)
		}
		return fmt.Errorf("audit persistence failed: %w", err)
	}
	return nil
}
