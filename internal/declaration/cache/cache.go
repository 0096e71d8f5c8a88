// Package cache keeps assembled documents close to the read path. A cache miss
// is reported as sentinel.ErrNotFound; the service falls back to the store.
package cache

import (
	"fmt"

	"ahliwaris/internal/declaration/document"
	id "ahliwaris/pkg/domain"
)

const keyPrefix = "declaration:doc:"

func key(declID id.DeclarationID) string {
	return keyPrefix + declID.String()
}

func copyDocument(doc document.Document) document.Document {
	out := doc
	out.Blocks = make([]document.Block, len(doc.Blocks))
	for i, b := range doc.Blocks {
		if b.Entry != nil {
			e := *b.Entry
			e.Fields = append([]document.Field(nil), b.Entry.Fields...)
			b.Entry = &e
		}
		if b.Signature != nil {
			s := *b.Signature
			b.Signature = &s
		}
		out.Blocks[i] = b
	}
	return out
}

func decodeErr(declID id.DeclarationID, err error) error {
	return fmt.Errorf("decode cached document %s: %w", declID, err)
}
