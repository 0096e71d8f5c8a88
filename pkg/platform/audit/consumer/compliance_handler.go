package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"ahliwaris/internal/platform/kafka/consumer"
	audit "ahliwaris/pkg/platform/audit"
	"ahliwaris/pkg/platform/audit/store/postgres"

	"github.com/google/uuid"
)

// EventStore materializes relayed events. Inserts must be idempotent on eventID.
type EventStore interface {
	AppendWithID(ctx context.Context, eventID uuid.UUID, event audit.Event) error
}

// ComplianceHandler processes compliance audit events from Kafka.
// Storage failures are returned so the batch is redelivered.
type ComplianceHandler struct {
	store  EventStore
	logger *slog.Logger
}

func NewComplianceHandler(store EventStore, logger *slog.Logger) *ComplianceHandler {
	return &ComplianceHandler{
		store:  store,
		logger: logger,
	}
}

// Handle processes a compliance audit event.
func (h *ComplianceHandler) Handle(ctx context.Context, msg *consumer.Message) error {
	eventID, err := uuid.Parse(string(msg.Key))
	if err != nil {
		h.logger.Error("CRITICAL: failed to parse compliance event ID",
			"key", string(msg.Key),
			"error", err,
		)
		// Malformed messages are committed so they do not block the partition.
		return nil
	}

	var payload postgres.Payload
	if err := json.Unmarshal(msg.Value, &payload); err != nil {
		h.logger.Error("CRITICAL: failed to unmarshal compliance payload",
			"event_id", eventID,
			"error", err,
		)
		return nil
	}

	if payload.DeclarationID == "" {
		h.logger.Error("CRITICAL: compliance event missing DeclarationID",
			"event_id", eventID,
			"action", payload.Action,
		)
		return nil
	}

	event := payload.ToEvent()
	event.Category = audit.CategoryCompliance
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	if err := h.store.AppendWithID(ctx, eventID, event); err != nil {
		h.logger.Error("failed to store compliance event",
			"event_id", eventID,
			"action", event.Action,
			"error", err,
		)
		return fmt.Errorf("store compliance event: %w", err)
	}

	h.logger.Debug("stored compliance event",
		"event_id", eventID,
		"action", event.Action,
		"declaration_id", event.DeclarationID,
	)
	return nil
}
