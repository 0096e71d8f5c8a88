package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"ahliwaris/internal/declaration/document"
	"ahliwaris/internal/declaration/models"
	id "ahliwaris/pkg/domain"
	"ahliwaris/pkg/platform/sentinel"
)

type InMemoryStoreSuite struct {
	suite.Suite
	store *InMemoryStore
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.store = NewInMemoryStore()
}

func testDeclaration() *models.Declaration {
	return &models.Declaration{
		ID:       id.NewDeclarationID(),
		Scenario: 1,
		Deceased: models.DeceasedInput{Name: "Budi", Gender: "LAKI-LAKI"},
		Heirs: []models.HeirInput{
			{Name: "Sari", Relationship: "SPOUSE_WIFE", Gender: "PEREMPUAN", Status: "ALIVE"},
		},
		Document: document.Document{
			Title:    document.Title,
			Scenario: 1,
			Blocks:   []document.Block{document.Paragraph(document.SectionOpening, "Kami yang bertanda tangan di bawah ini", 0)},
		},
		IssuedAt: time.Date(2024, 6, 3, 10, 0, 0, 0, time.UTC),
	}
}

func (s *InMemoryStoreSuite) TestCreateAndFind() {
	ctx := context.Background()
	decl := testDeclaration()

	s.Require().NoError(s.store.Create(ctx, decl))

	found, err := s.store.FindByID(ctx, decl.ID)
	s.Require().NoError(err)
	s.Equal(decl, found)
}

func (s *InMemoryStoreSuite) TestCreateDuplicate() {
	ctx := context.Background()
	decl := testDeclaration()
	s.Require().NoError(s.store.Create(ctx, decl))

	err := s.store.Create(ctx, decl)
	s.ErrorIs(err, sentinel.ErrConflict)
}

func (s *InMemoryStoreSuite) TestFindMissing() {
	_, err := s.store.FindByID(context.Background(), id.NewDeclarationID())
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *InMemoryStoreSuite) TestReturnedCopyIsIsolated() {
	ctx := context.Background()
	decl := testDeclaration()
	s.Require().NoError(s.store.Create(ctx, decl))

	found, err := s.store.FindByID(ctx, decl.ID)
	s.Require().NoError(err)
	found.Heirs[0].Name = "changed"
	found.Document.Blocks[0].Text = "changed"

	again, err := s.store.FindByID(ctx, decl.ID)
	s.Require().NoError(err)
	s.Equal("Sari", again.Heirs[0].Name)
	s.Equal("Kami yang bertanda tangan di bawah ini", again.Document.Blocks[0].Text)
}
