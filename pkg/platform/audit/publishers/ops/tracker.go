// Package ops provides a best-effort tracker for operational audit events.
//
// Tracking never fails the caller. Events are sampled per action and dropped
// while the store is unhealthy; every probeEvery-th event is still attempted
// so the breaker can observe recovery.
package ops

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	audit "ahliwaris/pkg/platform/audit"
	"ahliwaris/pkg/platform/circuit"
)

const defaultProbeEvery = 10

// Sink accepts events for persistence, typically an async publisher in front
// of the audit store.
type Sink interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Tracker records operational events without blocking business operations.
type Tracker struct {
	sink       Sink
	sampler    *Sampler
	breaker    *circuit.Breaker
	metrics    *Metrics
	logger     *slog.Logger
	probeEvery uint64
	dropped    atomic.Uint64
}

// Option configures the Tracker.
type Option func(*Tracker)

func WithLogger(logger *slog.Logger) Option {
	return func(t *Tracker) {
		t.logger = logger
	}
}

func WithMetrics(m *Metrics) Option {
	return func(t *Tracker) {
		t.metrics = m
	}
}

// WithSampler replaces the default sampler, which keeps everything.
func WithSampler(s *Sampler) Option {
	return func(t *Tracker) {
		if s != nil {
			t.sampler = s
		}
	}
}

// WithBreaker replaces the default circuit breaker.
func WithBreaker(b *circuit.Breaker) Option {
	return func(t *Tracker) {
		if b != nil {
			t.breaker = b
		}
	}
}

// WithProbeEvery sets how often a write is attempted while the breaker is open.
func WithProbeEvery(n int) Option {
	return func(t *Tracker) {
		if n > 0 {
			t.probeEvery = uint64(n)
		}
	}
}

func New(sink Sink, opts ...Option) *Tracker {
	t := &Tracker{
		sink:       sink,
		sampler:    NewSampler(1, nil),
		breaker:    circuit.New("audit-ops"),
		probeEvery: defaultProbeEvery,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Track records an operational event. Errors are counted, never returned.
func (t *Tracker) Track(ctx context.Context, event audit.OpsEvent) {
	if t == nil || t.sink == nil {
		return
	}
	if !t.sampler.ShouldSample(event.Action) {
		t.metrics.IncSampled()
		return
	}
	if t.breaker.IsOpen() && t.dropped.Add(1)%t.probeEvery != 0 {
		t.metrics.IncCircuitBreakerDropped()
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	if err := t.sink.Emit(ctx, event.ToEvent()); err != nil {
		t.metrics.IncPersistFailures()
		_, change := t.breaker.RecordFailure()
		if change.Opened {
			t.metrics.SetCircuitBreakerState(true)
			if t.logger != nil {
				t.logger.WarnContext(ctx, "ops audit circuit opened", "error", err)
			}
		}
		return
	}

	t.metrics.IncTracked()
	if _, change := t.breaker.RecordSuccess(); change.Closed {
		t.dropped.Store(0)
		t.metrics.SetCircuitBreakerState(false)
		if t.logger != nil {
			t.logger.InfoContext(ctx, "ops audit circuit closed")
		}
	}
}
