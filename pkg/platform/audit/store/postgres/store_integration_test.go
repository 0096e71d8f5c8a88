//go:build integration

package postgres

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	id "ahliwaris/pkg/domain"
	audit "ahliwaris/pkg/platform/audit"
	txcontext "ahliwaris/pkg/platform/tx"
	"ahliwaris/pkg/testutil/containers"
)

type AuditStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *Store
}

func TestAuditStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(AuditStoreSuite))
}

func (s *AuditStoreSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.store = New(s.postgres.DB)
	s.Require().NoError(s.store.EnsureSchema(context.Background()))
}

func (s *AuditStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "outbox", "audit_events"))
}

func issued(declID id.DeclarationID) audit.Event {
	return audit.Event{
		Timestamp:     time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC),
		DeclarationID: declID,
		Subject:       "Budi bin Sutrisno",
		Action:        string(audit.EventDeclarationIssued),
		Scenario:      "1",
		Decision:      "issued",
		SubjectIDHash: audit.HashSubjectID("3404011203500001"),
	}
}

func (s *AuditStoreSuite) TestAppendWritesOutbox() {
	ctx := context.Background()
	declID := id.NewDeclarationID()
	s.Require().NoError(s.store.Append(ctx, issued(declID)))

	entries, err := s.store.FetchUnpublished(ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(entries, 1)
	s.Equal(string(audit.EventDeclarationIssued), entries[0].EventType)

	var payload Payload
	s.Require().NoError(json.Unmarshal(entries[0].Payload, &payload))
	s.Equal(string(audit.CategoryCompliance), payload.Category)
	s.Equal(declID.String(), payload.DeclarationID)
	s.Equal(entries[0].ID.String(), payload.ID)

	s.Require().NoError(s.store.MarkPublished(ctx, entries[0].ID, time.Now()))
	entries, err = s.store.FetchUnpublished(ctx, 10)
	s.Require().NoError(err)
	s.Empty(entries)
}

func (s *AuditStoreSuite) TestAppendJoinsTransaction() {
	ctx := context.Background()
	sqlTx, err := s.postgres.DB.BeginTx(ctx, nil)
	s.Require().NoError(err)
	s.Require().NoError(s.store.Append(txcontext.WithTx(ctx, sqlTx), issued(id.NewDeclarationID())))
	s.Require().NoError(sqlTx.Rollback())

	entries, err := s.store.FetchUnpublished(ctx, 10)
	s.Require().NoError(err)
	s.Empty(entries)
}

func (s *AuditStoreSuite) TestAppendWithIDIsIdempotent() {
	ctx := context.Background()
	declID := id.NewDeclarationID()
	eventID := uuid.New()
	event := issued(declID)
	event.Category = audit.CategoryCompliance

	s.Require().NoError(s.store.AppendWithID(ctx, eventID, event))
	s.Require().NoError(s.store.AppendWithID(ctx, eventID, event))

	events, err := s.store.ListByDeclaration(ctx, declID)
	s.Require().NoError(err)
	s.Require().Len(events, 1)
	s.Equal(event.SubjectIDHash, events[0].SubjectIDHash)
	s.Equal(declID, events[0].DeclarationID)
	s.Equal(audit.CategoryCompliance, events[0].Category)
}

func (s *AuditStoreSuite) TestListRecent() {
	ctx := context.Background()
	base := time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC)
	for i := range 3 {
		e := issued(id.NewDeclarationID())
		e.Category = audit.CategoryCompliance
		e.Timestamp = base.Add(time.Duration(i) * time.Minute)
		s.Require().NoError(s.store.AppendWithID(ctx, uuid.New(), e))
	}

	events, err := s.store.ListRecent(ctx, 2)
	s.Require().NoError(err)
	s.Require().Len(events, 2)
	s.True(events[0].Timestamp.After(events[1].Timestamp))
}
