package docnumber

import (
	"context"

	"github.com/fekuna/omnipos-stockflow-service/internal/model"
	"github.com/jmoiron/sqlx"
)

type Repository interface {
	// LockScope serializes allocations on scope until the transaction ends.
	LockScope(ctx context.Context, q sqlx.ExtContext, scope string) error

	// Paired family
	LastPairSequence(ctx context.Context, q sqlx.ExtContext, fiscalYear int) (int64, error)
	InsertPair(ctx context.Context, q sqlx.ExtContext, pair *model.DocPair) error
	LockPair(ctx context.Context, q sqlx.ExtContext, id int64) (*model.DocPair, error)
	UpdatePairStatus(ctx context.Context, q sqlx.ExtContext, id int64, status model.DocPairStatus) error

	// Counter family: atomic increment-and-fetch, first value 1.
	IncrementCounter(ctx context.Context, q sqlx.ExtContext, fiscalYear int, kind Kind, prefix string) (int64, error)
}
