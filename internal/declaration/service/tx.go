package service

import (
	"context"
	"sync"
	"time"

	dErrors "ahliwaris/pkg/domain-errors"
)

// defaultTxTimeout is the maximum duration of one transaction.
const defaultTxTimeout = 5 * time.Second

// LockTx serializes transactions with a single mutex. It is the in-memory
// counterpart of a database transaction: it gives isolation, not rollback.
type LockTx struct {
	mu      sync.Mutex
	timeout time.Duration
}

func NewLockTx() *LockTx {
	return &LockTx{timeout: defaultTxTimeout}
}

func (t *LockTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "transaction aborted: context cancelled")
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	// Check again after acquiring lock
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "transaction aborted: context cancelled")
	}
	return fn(ctx)
}
