// Package worker relays outbox rows to Kafka.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"ahliwaris/internal/platform/kafka/producer"
	audit "ahliwaris/pkg/platform/audit"
	"ahliwaris/pkg/platform/audit/store/postgres"

	"github.com/google/uuid"
)

const (
	TopicCompliance = "audit.compliance"
	TopicOperations = "audit.operations"
)

// TopicFor returns the Kafka topic events of the category are relayed to.
func TopicFor(category audit.EventCategory) string {
	if category == audit.CategoryCompliance {
		return TopicCompliance
	}
	return TopicOperations
}

// Outbox is the relay's view of the outbox table.
type Outbox interface {
	FetchUnpublished(ctx context.Context, limit int) ([]postgres.OutboxEntry, error)
	MarkPublished(ctx context.Context, entryID uuid.UUID, at time.Time) error
}

// Publisher sends relayed messages.
type Publisher interface {
	Publish(ctx context.Context, msgs ...producer.Message) error
}

// Relay polls the outbox and publishes unpublished entries in creation order.
// Delivery is at-least-once: an entry published but not marked is sent again,
// and consumers deduplicate on the event ID.
type Relay struct {
	outbox    Outbox
	publisher Publisher
	logger    *slog.Logger
	interval  time.Duration
	batchSize int
}

type Option func(*Relay)

func WithInterval(d time.Duration) Option {
	return func(r *Relay) {
		if d > 0 {
			r.interval = d
		}
	}
}

func WithBatchSize(n int) Option {
	return func(r *Relay) {
		if n > 0 {
			r.batchSize = n
		}
	}
}

func NewRelay(outbox Outbox, publisher Publisher, logger *slog.Logger, opts ...Option) *Relay {
	r := &Relay{
		outbox:    outbox,
		publisher: publisher,
		logger:    logger,
		interval:  time.Second,
		batchSize: 100,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run relays until ctx is cancelled.
func (r *Relay) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		if _, err := r.RelayOnce(ctx); err != nil && ctx.Err() == nil {
			r.logger.WarnContext(ctx, "outbox relay failed", "error", err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// RelayOnce publishes one batch and returns how many entries were marked.
func (r *Relay) RelayOnce(ctx context.Context) (int, error) {
	entries, err := r.outbox.FetchUnpublished(ctx, r.batchSize)
	if err != nil {
		return 0, err
	}

	relayed := 0
	for _, entry := range entries {
		var payload postgres.Payload
		if err := json.Unmarshal(entry.Payload, &payload); err != nil {
			return relayed, fmt.Errorf("decode outbox entry %s: %w", entry.ID, err)
		}
		msg := producer.Message{
			Topic: TopicFor(audit.EventCategory(payload.Category)),
			Key:   []byte(entry.ID.String()),
			Value: entry.Payload,
			Headers: map[string]string{
				"event_type": entry.EventType,
			},
		}
		if err := r.publisher.Publish(ctx, msg); err != nil {
			return relayed, err
		}
		if err := r.outbox.MarkPublished(ctx, entry.ID, time.Now()); err != nil {
			return relayed, err
		}
		relayed++
	}
	return relayed, nil
}
