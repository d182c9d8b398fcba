package bom

import (
	"context"

	"github.com/fekuna/omnipos-stockflow-service/internal/model"
	"github.com/jmoiron/sqlx"
)

type Repository interface {
	// Reads outside a transaction. Deleted BOMs are not returned.
	GetByID(ctx context.Context, id int64) (*model.BOM, error)
	ComponentStock(ctx context.Context, bomID int64) ([]ComponentStock, error)

	// LockByID locks an active BOM header and loads its components.
	LockByID(ctx context.Context, q sqlx.ExtContext, id int64) (*model.BOM, error)
	LockCodes(ctx context.Context, q sqlx.ExtContext) error
	LastCode(ctx context.Context, q sqlx.ExtContext) (string, error)

	Create(ctx context.Context, q sqlx.ExtContext, b *model.BOM) error
	Rename(ctx context.Context, q sqlx.ExtContext, id int64, name string) error
	ReplaceComponents(ctx context.Context, q sqlx.ExtContext, bomID int64, components []model.BOMComponent) error
	SoftDelete(ctx context.Context, q sqlx.ExtContext, id int64) error
}
