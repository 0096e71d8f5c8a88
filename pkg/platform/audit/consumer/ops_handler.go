package consumer

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"ahliwaris/internal/platform/kafka/consumer"
	audit "ahliwaris/pkg/platform/audit"
	"ahliwaris/pkg/platform/audit/store/postgres"

	"github.com/google/uuid"
)

// OpsHandler processes operational audit events from Kafka. Every failure is
// logged and the message committed.
type OpsHandler struct {
	store  EventStore
	logger *slog.Logger
}

func NewOpsHandler(store EventStore, logger *slog.Logger) *OpsHandler {
	return &OpsHandler{
		store:  store,
		logger: logger,
	}
}

// Handle processes an operational audit event.
func (h *OpsHandler) Handle(ctx context.Context, msg *consumer.Message) error {
	eventID, err := uuid.Parse(string(msg.Key))
	if err != nil {
		h.logger.Debug("failed to parse ops event ID",
			"key", string(msg.Key),
			"error", err,
		)
		return nil
	}

	var payload postgres.Payload
	if err := json.Unmarshal(msg.Value, &payload); err != nil {
		h.logger.Debug("failed to unmarshal ops payload",
			"event_id", eventID,
			"error", err,
		)
		return nil
	}

	event := payload.ToEvent()
	event.Category = audit.CategoryOperations
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	if err := h.store.AppendWithID(ctx, eventID, event); err != nil {
		h.logger.Debug("failed to store ops event",
			"event_id", eventID,
			"action", event.Action,
			"error", err,
		)
	}
	return nil
}
