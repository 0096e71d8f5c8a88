// Package publisher emits audit events to a store, either inline or through a
// bounded background buffer.
package publisher

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	id "ahliwaris/pkg/domain"
	audit "ahliwaris/pkg/platform/audit"
)

// ErrBufferFull is returned by Emit in async mode when the buffer has no room
// and the caller's context ends first.
var ErrBufferFull = errors.New("audit buffer full")

// Publisher writes audit events to a store. In sync mode Emit returns the
// store's error; in async mode a single goroutine drains a buffered channel.
type Publisher struct {
	store  audit.Store
	logger *slog.Logger

	buffer  chan audit.Event
	wg      sync.WaitGroup
	closeMu sync.Once
}

type Option func(*Publisher)

func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// WithAsyncBuffer enables async mode with a buffer of the given size.
func WithAsyncBuffer(size int) Option {
	return func(p *Publisher) {
		if size > 0 {
			p.buffer = make(chan audit.Event, size)
		}
	}
}

func NewPublisher(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{store: store}
	for _, opt := range opts {
		opt(p)
	}
	if p.buffer != nil {
		p.wg.Add(1)
		go p.drain()
	}
	return p
}

// Emit records event, stamping it with the current time if unset.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if event.Category == "" {
		event.Category = audit.AuditEvent(event.Action).Category()
	}
	if p.buffer == nil {
		return p.store.Append(ctx, event)
	}

	select {
	case p.buffer <- event:
		return nil
	default:
	}
	select {
	case p.buffer <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return ErrBufferFull
	}
}

func (p *Publisher) List(ctx context.Context, declarationID id.DeclarationID) ([]audit.Event, error) {
	return p.store.ListByDeclaration(ctx, declarationID)
}

// Close stops accepting events and waits for the buffer to drain.
func (p *Publisher) Close() error {
	if p.buffer == nil {
		return nil
	}
	p.closeMu.Do(func() {
		close(p.buffer)
	})
	p.wg.Wait()
	return nil
}

func (p *Publisher) drain() {
	defer p.wg.Done()
	for event := range p.buffer {
		// Async events outlive the request that produced them.
		if err := p.store.Append(context.Background(), event); err != nil && p.logger != nil {
			p.logger.Error("failed to persist audit event",
				"action", event.Action,
				"declaration_id", event.DeclarationID,
				"error", err,
			)
		}
	}
}
