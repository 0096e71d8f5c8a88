package cache

import (
	"context"
	"errors"
	"log/slog"

	"ahliwaris/internal/declaration/document"
	id "ahliwaris/pkg/domain"
	"ahliwaris/pkg/platform/circuit"
	"ahliwaris/pkg/platform/sentinel"
)

// Store is the document cache contract shared by every implementation.
type Store interface {
	Get(ctx context.Context, declID id.DeclarationID) (document.Document, error)
	Set(ctx context.Context, declID id.DeclarationID, doc document.Document) error
}

// Resilient writes through to both caches and reads from the primary while it
// is healthy. After a run of primary failures the breaker opens and reads are
// served from the fallback until the primary recovers.
type Resilient struct {
	primary  Store
	fallback Store
	breaker  *circuit.Breaker
	logger   *slog.Logger
}

func NewResilient(primary, fallback Store, breaker *circuit.Breaker, logger *slog.Logger) *Resilient {
	if breaker == nil {
		breaker = circuit.New("document-cache")
	}
	return &Resilient{primary: primary, fallback: fallback, breaker: breaker, logger: logger}
}

func (c *Resilient) Get(ctx context.Context, declID id.DeclarationID) (document.Document, error) {
	doc, err := c.primary.Get(ctx, declID)
	if err == nil || errors.Is(err, sentinel.ErrNotFound) {
		if usePrimary := c.recordSuccess(ctx); usePrimary {
			return doc, err
		}
		return c.fallback.Get(ctx, declID)
	}

	if useFallback := c.recordFailure(ctx, err); useFallback {
		return c.fallback.Get(ctx, declID)
	}
	return document.Document{}, err
}

func (c *Resilient) Set(ctx context.Context, declID id.DeclarationID, doc document.Document) error {
	if err := c.fallback.Set(ctx, declID, doc); err != nil {
		return err
	}
	if err := c.primary.Set(ctx, declID, doc); err != nil {
		if useFallback := c.recordFailure(ctx, err); useFallback {
			return nil
		}
		return err
	}
	c.recordSuccess(ctx)
	return nil
}

func (c *Resilient) recordSuccess(ctx context.Context) bool {
	usePrimary, change := c.breaker.RecordSuccess()
	if change.Closed && c.logger != nil {
		c.logger.InfoContext(ctx, "document cache primary recovered", "breaker", c.breaker.Name())
	}
	return usePrimary
}

func (c *Resilient) recordFailure(ctx context.Context, err error) bool {
	useFallback, change := c.breaker.RecordFailure()
	if change.Opened && c.logger != nil {
		c.logger.WarnContext(ctx, "document cache primary unavailable, serving from memory",
			"breaker", c.breaker.Name(),
			"error", err,
		)
	}
	return useFallback
}
