package audit

import (
	"context"
	"encoding/hex"
	"time"

	id "ahliwaris/pkg/domain"

	"golang.org/x/crypto/blake2b"
)

// EventCategory classifies audit events by their primary purpose.
// Categories drive retention and the topic an event is relayed to.
type EventCategory string

const (
	// CategoryCompliance covers events with legal significance: an issued
	// declaration is an official record and its audit trail must be durable.
	CategoryCompliance EventCategory = "compliance"

	// CategoryOperations covers routine activity useful for debugging and
	// volume tracking. These can be sampled.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from the service layer to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Category      EventCategory
	Timestamp     time.Time
	DeclarationID id.DeclarationID
	// Subject is a human-readable identifier, e.g. the deceased's name.
	Subject  string
	Action   string
	Scenario string
	Decision string
	Reason   string
	// SubjectIDHash is a BLAKE2b hash of the deceased's national ID so the trail
	// can be searched without storing the raw number.
	SubjectIDHash string
	RequestID     string
	// ActorID identifies who performed the action, the client IP for now.
	ActorID string
}

type AuditEvent string

const (
	EventDeclarationIssued    AuditEvent = "declaration_issued"
	EventDeclarationValidated AuditEvent = "declaration_validated"
	EventDeclarationRejected  AuditEvent = "declaration_rejected"
	EventDeclarationViewed    AuditEvent = "declaration_viewed"
	EventDocumentRendered     AuditEvent = "document_rendered"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventDeclarationIssued: CategoryCompliance,

	EventDeclarationValidated: CategoryOperations,
	EventDeclarationRejected:  CategoryOperations,
	EventDeclarationViewed:    CategoryOperations,
	EventDocumentRendered:     CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

// ComplianceEvent captures a legally significant action requiring guaranteed
// persistence. Use with the compliance publisher for fail-closed semantics.
type ComplianceEvent struct {
	Timestamp     time.Time
	DeclarationID id.DeclarationID
	Subject       string
	Action        string
	Scenario      string
	Decision      string
	SubjectIDHash string
	RequestID     string
	ActorID       string
}

func (e ComplianceEvent) Category() EventCategory { return CategoryCompliance }

// ToEvent converts to the stored Event shape.
func (e ComplianceEvent) ToEvent() Event {
	return Event{
		Category:      CategoryCompliance,
		Timestamp:     e.Timestamp,
		DeclarationID: e.DeclarationID,
		Subject:       e.Subject,
		Action:        e.Action,
		Scenario:      e.Scenario,
		Decision:      e.Decision,
		SubjectIDHash: e.SubjectIDHash,
		RequestID:     e.RequestID,
		ActorID:       e.ActorID,
	}
}

// OpsEvent captures operational events with minimal overhead.
// Events are fire-and-forget with optional sampling.
type OpsEvent struct {
	Timestamp     time.Time
	DeclarationID id.DeclarationID
	Subject       string
	Action        string
	Scenario      string
	Reason        string
	RequestID     string
}

func (e OpsEvent) Category() EventCategory { return CategoryOperations }

// ToEvent converts to the stored Event shape.
func (e OpsEvent) ToEvent() Event {
	return Event{
		Category:      CategoryOperations,
		Timestamp:     e.Timestamp,
		DeclarationID: e.DeclarationID,
		Subject:       e.Subject,
		Action:        e.Action,
		Scenario:      e.Scenario,
		Reason:        e.Reason,
		RequestID:     e.RequestID,
	}
}

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByDeclaration(ctx context.Context, declarationID id.DeclarationID) ([]Event, error)
	ListRecent(ctx context.Context, limit int) ([]Event, error)
}

// HashSubjectID derives SubjectIDHash from a national ID. Blank input hashes to "".
func HashSubjectID(nationalID string) string {
	if nationalID == "" {
		return ""
	}
	sum := blake2b.Sum256([]byte(nationalID))
	return hex.EncodeToString(sum[:])
}
