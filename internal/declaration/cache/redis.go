package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"ahliwaris/internal/declaration/document"
	id "ahliwaris/pkg/domain"
	"ahliwaris/pkg/platform/sentinel"
)

// Redis stores documents as JSON under declaration:doc:<id>.
type Redis struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewRedis(client redis.Cmdable, ttl time.Duration) *Redis {
	return &Redis{client: client, ttl: ttl}
}

func (r *Redis) Get(ctx context.Context, declID id.DeclarationID) (document.Document, error) {
	raw, err := r.client.Get(ctx, key(declID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return document.Document{}, sentinel.ErrNotFound
		}
		return document.Document{}, fmt.Errorf("redis get document: %w", err)
	}
	var doc document.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return document.Document{}, decodeErr(declID, err)
	}
	return doc, nil
}

func (r *Redis) Set(ctx context.Context, declID id.DeclarationID, doc document.Document) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	if err := r.client.Set(ctx, key(declID), raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set document: %w", err)
	}
	return nil
}
