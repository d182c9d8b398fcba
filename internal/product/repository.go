package product

import (
	"context"

	"github.com/fekuna/omnipos-stockflow-service/internal/model"
	"github.com/fekuna/omnipos-stockflow-service/internal/product/dto"
	"github.com/jmoiron/sqlx"
)

type Repository interface {
	// Reads outside a transaction
	GetByID(ctx context.Context, id int64) (*model.Product, error)
	ListLowStock(ctx context.Context, filters *dto.LowStockFilters) ([]model.Product, int, error)
	ListMovements(ctx context.Context, filters *dto.MovementFilters) ([]model.StockMovement, int, error)

	// Row locks, held until the transaction ends. Missing rows return nil.
	LockByID(ctx context.Context, q sqlx.ExtContext, id int64) (*model.Product, error)
	LockByIDs(ctx context.Context, q sqlx.ExtContext, ids []int64) ([]model.Product, error)
	LockByCode(ctx context.Context, q sqlx.ExtContext, code string) (*model.Product, error)

	Create(ctx context.Context, q sqlx.ExtContext, p *model.Product) error
	Rename(ctx context.Context, q sqlx.ExtContext, id int64, name string) error
	Restore(ctx context.Context, q sqlx.ExtContext, id int64, name string) error

	// ApplyDelta adds the deltas to stock and reserved and returns the new row.
	ApplyDelta(ctx context.Context, q sqlx.ExtContext, id int64, stockDelta, reservedDelta int64) (*model.Product, error)
	LogMovement(ctx context.Context, q sqlx.ExtContext, m *model.StockMovement) error
}
