// Package domain holds identifier primitives shared across bounded contexts.
package domain

import (
	"github.com/google/uuid"

	dErrors "ahliwaris/pkg/domain-errors"
)

// DeclarationID identifies an issued heir declaration letter.
type DeclarationID uuid.UUID

// NewDeclarationID returns a fresh random identifier.
func NewDeclarationID() DeclarationID {
	return DeclarationID(uuid.New())
}

// ParseDeclarationID validates an identifier received at a trust boundary.
// Empty, malformed and nil UUIDs are rejected.
func ParseDeclarationID(s string) (DeclarationID, error) {
	u, err := parseUUID(s)
	if err != nil {
		return DeclarationID{}, err
	}
	return DeclarationID(u), nil
}

func (id DeclarationID) String() string {
	return uuid.UUID(id).String()
}

// IsNil reports whether the identifier is the zero value.
func (id DeclarationID) IsNil() bool {
	return uuid.UUID(id) == uuid.Nil
}

// MarshalText lets DeclarationID appear as a plain string in JSON and YAML.
func (id DeclarationID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

func (id *DeclarationID) UnmarshalText(b []byte) error {
	parsed, err := ParseDeclarationID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func parseUUID(s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id is required")
	}
	if len(s) > 64 {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id is too long")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id must be a valid UUID")
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id must not be the nil UUID")
	}
	return u, nil
}
