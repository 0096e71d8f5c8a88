package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	id "ahliwaris/pkg/domain"
	audit "ahliwaris/pkg/platform/audit"
	txcontext "ahliwaris/pkg/platform/tx"

	"github.com/google/uuid"
)

// Schema creates the outbox and the materialized audit table.
const Schema = `
CREATE TABLE IF NOT EXISTS outbox (
	id             UUID PRIMARY KEY,
	aggregate_type TEXT        NOT NULL,
	aggregate_id   TEXT        NOT NULL,
	event_type     TEXT        NOT NULL,
	payload        JSONB       NOT NULL,
	created_at     TIMESTAMPTZ NOT NULL,
	published_at   TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS outbox_unpublished_idx ON outbox (created_at) WHERE published_at IS NULL;

CREATE TABLE IF NOT EXISTS audit_events (
	id              UUID PRIMARY KEY,
	category        TEXT        NOT NULL,
	timestamp       TIMESTAMPTZ NOT NULL,
	declaration_id  UUID,
	subject         TEXT NOT NULL DEFAULT '',
	action          TEXT NOT NULL,
	scenario        TEXT NOT NULL DEFAULT '',
	decision        TEXT NOT NULL DEFAULT '',
	reason          TEXT NOT NULL DEFAULT '',
	subject_id_hash TEXT NOT NULL DEFAULT '',
	request_id      TEXT NOT NULL DEFAULT '',
	actor_id        TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS audit_events_declaration_idx ON audit_events (declaration_id, timestamp);
`

// Store implements audit.Store using the transactional outbox pattern.
// Events are written to the outbox table and published to Kafka by the relay
// worker; the Kafka consumer materializes them into audit_events for querying.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// EnsureSchema creates the tables if they do not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("create audit schema: %w", err)
	}
	return nil
}

// Payload is the JSON structure published to Kafka.
type Payload struct {
	ID            string `json:"ID"`
	Category      string `json:"Category"`
	Timestamp     string `json:"Timestamp"`
	DeclarationID string `json:"DeclarationID,omitempty"`
	Subject       string `json:"Subject"`
	Action        string `json:"Action"`
	Scenario      string `json:"Scenario,omitempty"`
	Decision      string `json:"Decision,omitempty"`
	Reason        string `json:"Reason,omitempty"`
	SubjectIDHash string `json:"SubjectIDHash,omitempty"`
	RequestID     string `json:"RequestID,omitempty"`
	ActorID       string `json:"ActorID,omitempty"`
}

// ToEvent converts a relayed payload back to an audit.Event.
func (p Payload) ToEvent() audit.Event {
	event := audit.Event{
		Category:      audit.EventCategory(p.Category),
		Subject:       p.Subject,
		Action:        p.Action,
		Scenario:      p.Scenario,
		Decision:      p.Decision,
		Reason:        p.Reason,
		SubjectIDHash: p.SubjectIDHash,
		RequestID:     p.RequestID,
		ActorID:       p.ActorID,
	}
	if ts, err := time.Parse(time.RFC3339Nano, p.Timestamp); err == nil {
		event.Timestamp = ts
	}
	if p.DeclarationID != "" {
		if declID, err := id.ParseDeclarationID(p.DeclarationID); err == nil {
			event.DeclarationID = declID
		}
	}
	return event
}

// Append writes an audit event to the outbox table for Kafka publishing.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	eventID := uuid.New()

	// The action decides the category; the caller's value is not trusted.
	category := audit.AuditEvent(event.Action).Category()

	payload := Payload{
		ID:            eventID.String(),
		Category:      string(category),
		Timestamp:     event.Timestamp.Format(time.RFC3339Nano),
		Subject:       event.Subject,
		Action:        event.Action,
		Scenario:      event.Scenario,
		Decision:      event.Decision,
		Reason:        event.Reason,
		SubjectIDHash: event.SubjectIDHash,
		RequestID:     event.RequestID,
		ActorID:       event.ActorID,
	}
	aggregateType := "audit"
	aggregateID := eventID.String()
	if !event.DeclarationID.IsNil() {
		payload.DeclarationID = event.DeclarationID.String()
		aggregateType = "declaration"
		aggregateID = event.DeclarationID.String()
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal audit payload: %w", err)
	}

	query := `
		INSERT INTO outbox (id, aggregate_type, aggregate_id, event_type, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = txcontext.Pick(ctx, s.db).ExecContext(ctx, query,
		eventID,
		aggregateType,
		aggregateID,
		event.Action,
		payloadBytes,
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("insert outbox entry: %w", err)
	}
	return nil
}

// OutboxEntry is an outbox row awaiting relay.
type OutboxEntry struct {
	ID        uuid.UUID
	EventType string
	Payload   []byte
	CreatedAt time.Time
}

// FetchUnpublished returns up to limit entries not yet relayed, oldest first.
func (s *Store) FetchUnpublished(ctx context.Context, limit int) ([]OutboxEntry, error) {
	query := `
		SELECT id, event_type, payload, created_at
		FROM outbox
		WHERE published_at IS NULL
		ORDER BY created_at
		LIMIT $1
	`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query outbox: %w", err)
	}
	defer rows.Close()

	var entries []OutboxEntry
	for rows.Next() {
		var e OutboxEntry
		if err := rows.Scan(&e.ID, &e.EventType, &e.Payload, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan outbox entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outbox: %w", err)
	}
	return entries, nil
}

// MarkPublished records that an entry reached Kafka.
func (s *Store) MarkPublished(ctx context.Context, entryID uuid.UUID, at time.Time) error {
	_, err := s.db.ExecContext(ctx, `UPDATE outbox SET published_at = $2 WHERE id = $1`, entryID, at)
	if err != nil {
		return fmt.Errorf("mark outbox entry published: %w", err)
	}
	return nil
}

// AppendWithID inserts an audit event into the audit_events table with a specific ID.
// Used by the Kafka consumer to materialize events for querying.
// This is idempotent - duplicate inserts are ignored via ON CONFLICT DO NOTHING.
func (s *Store) AppendWithID(ctx context.Context, eventID uuid.UUID, event audit.Event) error {
	query := `
		INSERT INTO audit_events (
			id, category, timestamp, declaration_id, subject, action,
			scenario, decision, reason, subject_id_hash, request_id, actor_id
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO NOTHING
	`

	var declarationID *uuid.UUID
	if !event.DeclarationID.IsNil() {
		did := uuid.UUID(event.DeclarationID)
		declarationID = &did
	}

	_, err := s.db.ExecContext(ctx, query,
		eventID,
		string(event.Category),
		event.Timestamp,
		declarationID,
		event.Subject,
		event.Action,
		event.Scenario,
		event.Decision,
		event.Reason,
		event.SubjectIDHash,
		event.RequestID,
		event.ActorID,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

const selectEvents = `
	SELECT category, timestamp, declaration_id, subject, action,
		   scenario, decision, reason, subject_id_hash, request_id, actor_id
	FROM audit_events
`

// ListByDeclaration returns the materialized events of one declaration, oldest first.
func (s *Store) ListByDeclaration(ctx context.Context, declarationID id.DeclarationID) ([]audit.Event, error) {
	rows, err := s.db.QueryContext(ctx, selectEvents+`WHERE declaration_id = $1 ORDER BY timestamp`, uuid.UUID(declarationID))
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()
	return s.scanEvents(rows)
}

// ListRecent returns the N most recent events.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]audit.Event, error) {
	rows, err := s.db.QueryContext(ctx, selectEvents+`ORDER BY timestamp DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()
	return s.scanEvents(rows)
}

func (s *Store) scanEvents(rows *sql.Rows) ([]audit.Event, error) {
	var events []audit.Event

	for rows.Next() {
		var (
			category      string
			event         audit.Event
			declarationID *uuid.UUID
		)

		err := rows.Scan(
			&category,
			&event.Timestamp,
			&declarationID,
			&event.Subject,
			&event.Action,
			&event.Scenario,
			&event.Decision,
			&event.Reason,
			&event.SubjectIDHash,
			&event.RequestID,
			&event.ActorID,
		)
		if err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}

		event.Category = audit.EventCategory(category)
		if declarationID != nil {
			event.DeclarationID = id.DeclarationID(*declarationID)
		}
		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}
