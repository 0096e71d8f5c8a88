package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"ahliwaris/internal/declaration/document"
	"ahliwaris/internal/declaration/models"
	id "ahliwaris/pkg/domain"
	"ahliwaris/pkg/platform/audit"
	"ahliwaris/pkg/platform/sentinel"
	txcontext "ahliwaris/pkg/platform/tx"
)

// Schema creates the declarations table.
const Schema = `
CREATE TABLE IF NOT EXISTS declarations (
	id              UUID PRIMARY KEY,
	scenario        SMALLINT    NOT NULL,
	deceased_name   TEXT        NOT NULL,
	subject_id_hash TEXT        NOT NULL DEFAULT '',
	deceased        JSONB       NOT NULL,
	heirs           JSONB       NOT NULL,
	document        JSONB       NOT NULL,
	issued_at       TIMESTAMPTZ NOT NULL,
	request_id      TEXT        NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS declarations_subject_idx ON declarations (subject_id_hash);
`

const uniqueViolation = "23505"

// PostgresStore persists declarations in PostgreSQL. Writes join the
// transaction carried by ctx when there is one.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the table if it does not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("create declarations schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Create(ctx context.Context, decl *models.Declaration) error {
	deceased, err := json.Marshal(decl.Deceased)
	if err != nil {
		return fmt.Errorf("encode deceased: %w", err)
	}
	heirs, err := json.Marshal(decl.Heirs)
	if err != nil {
		return fmt.Errorf("encode heirs: %w", err)
	}
	doc, err := json.Marshal(decl.Document)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}

	query := `
		INSERT INTO declarations (id, scenario, deceased_name, subject_id_hash, deceased, heirs, document, issued_at, request_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err = txcontext.Pick(ctx, s.db).ExecContext(ctx, query,
		decl.ID.String(),
		decl.Scenario,
		decl.Deceased.Name,
		audit.HashSubjectID(decl.Deceased.NationalID),
		deceased,
		heirs,
		doc,
		decl.IssuedAt,
		decl.RequestID,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert declaration: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, declID id.DeclarationID) (*models.Declaration, error) {
	query := `
		SELECT id, scenario, deceased, heirs, document, issued_at, request_id
		FROM declarations
		WHERE id = $1
	`
	var (
		rawID                   string
		deceased, heirs, rawDoc []byte
		decl                    models.Declaration
	)
	err := txcontext.Pick(ctx, s.db).QueryRowContext(ctx, query, declID.String()).Scan(
		&rawID,
		&decl.Scenario,
		&deceased,
		&heirs,
		&rawDoc,
		&decl.IssuedAt,
		&decl.RequestID,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find declaration: %w", err)
	}

	if decl.ID, err = id.ParseDeclarationID(rawID); err != nil {
		return nil, fmt.Errorf("decode declaration id: %w", err)
	}
	if err := json.Unmarshal(deceased, &decl.Deceased); err != nil {
		return nil, fmt.Errorf("decode deceased: %w", err)
	}
	if err := json.Unmarshal(heirs, &decl.Heirs); err != nil {
		return nil, fmt.Errorf("decode heirs: %w", err)
	}
	var doc document.Document
	if err := json.Unmarshal(rawDoc, &doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	decl.Document = doc
	return &decl, nil
}
