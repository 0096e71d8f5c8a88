package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"ahliwaris/internal/declaration/document"
	id "ahliwaris/pkg/domain"
	"ahliwaris/pkg/platform/sentinel"
)

// Memory is a process-local document cache with per-entry expiry.
type Memory struct {
	entries *gocache.Cache
	ttl     time.Duration
}

// NewMemory creates a cache whose entries expire after ttl.
func NewMemory(ttl time.Duration) *Memory {
	return &Memory{
		entries: gocache.New(ttl, 2*ttl),
		ttl:     ttl,
	}
}

func (m *Memory) Get(_ context.Context, declID id.DeclarationID) (document.Document, error) {
	v, ok := m.entries.Get(key(declID))
	if !ok {
		return document.Document{}, sentinel.ErrNotFound
	}
	return copyDocument(v.(document.Document)), nil
}

func (m *Memory) Set(_ context.Context, declID id.DeclarationID, doc document.Document) error {
	m.entries.Set(key(declID), copyDocument(doc), m.ttl)
	return nil
}
