// Package family models the people named in an heir declaration: the
// deceased (pewaris) and the surviving relatives (ahli waris).
//
// # Domain Purity
//
//	✓ No I/O, no context.Context
//	✓ No time.Now() - dates are operator-supplied strings
//	✓ Values are copied, never mutated after construction
//
// Heir invariants:
//   - Name is non-empty
//   - A wife is female and a husband is male; an empty gender is implied
//   - HasDescendants is only meaningful for a DECEASED heir
//   - Descendants (the sidecar record) is only accepted alongside HasDescendants
package family
