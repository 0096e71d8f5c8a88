package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores and caches return these
// (optionally wrapped) so services can translate them into domain errors.
//
//   - ErrNotFound: record or cache entry does not exist
//   - ErrConflict: a record with the same identity already exists
//   - ErrUnavailable: backing service temporarily unavailable
//
// Validation failures are not infrastructure facts; use pkg/domain-errors.
var (
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrUnavailable = errors.New("unavailable")
)
