package main

import (
	"context"
	"database/sql"
	"time"

	dErrors "ahliwaris/pkg/domain-errors"
	"ahliwaris/pkg/platform/tx"
)

const defaultDeclarationTxTimeout = 5 * time.Second

// declarationPostgresTx runs the issuance in one SQL transaction. Stores find
// it in the context, so the declaration row and its outbox row commit together.
type declarationPostgresTx struct {
	db      *sql.DB
	timeout time.Duration
}

func newDeclarationPostgresTx(db *sql.DB) *declarationPostgresTx {
	return &declarationPostgresTx{db: db, timeout: defaultDeclarationTxTimeout}
}

func (t *declarationPostgresTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "transaction aborted: context cancelled")
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	sqlTx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = sqlTx.Rollback()
	}()

	if err := fn(tx.WithTx(ctx, sqlTx)); err != nil {
		return err
	}
	return sqlTx.Commit()
}
