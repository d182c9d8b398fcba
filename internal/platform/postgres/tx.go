package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/fekuna/omnipos-stockflow-service/internal/apperr"
	"github.com/jmoiron/sqlx"
)

// Transactor runs fn inside one database transaction. Any error returned by
// fn rolls the whole transaction back before it is returned.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(tx sqlx.ExtContext) error) error
}

type TxManager struct {
	DB          *sqlx.DB
	LockTimeout time.Duration
}

func NewTxManager(db *sqlx.DB, lockTimeout time.Duration) *TxManager {
	return &TxManager{DB: db, LockTimeout: lockTimeout}
}

func (m *TxManager) WithinTx(ctx context.Context, fn func(tx sqlx.ExtContext) error) (err error) {
	tx, err := m.DB.BeginTxx(ctx, nil)
	if err != nil {
		return apperr.Classify("begin", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if m.LockTimeout > 0 {
		// SET LOCAL does not accept bind parameters.
		stmt := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", m.LockTimeout.Milliseconds())
		if _, err = tx.ExecContext(ctx, stmt); err != nil {
			return apperr.Classify("lock_timeout", err)
		}
	}

	if err = fn(tx); err != nil {
		return apperr.Classify("tx", err)
	}

	if err = tx.Commit(); err != nil {
		return apperr.Classify("commit", err)
	}
	return nil
}

// AdvisoryLock serializes callers on scope until the surrounding transaction ends.
func AdvisoryLock(ctx context.Context, q sqlx.ExtContext, scope string) error {
	_, err := q.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, scope)
	return err
}
