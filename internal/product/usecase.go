package product

import (
	"context"

	"github.com/fekuna/omnipos-stockflow-service/internal/model"
	"github.com/fekuna/omnipos-stockflow-service/internal/product/dto"
)

type UseCase interface {
	GetProduct(ctx context.Context, id int64) (*model.Product, error)
	ListLowStock(ctx context.Context, filters *dto.LowStockFilters) ([]model.Product, int, error)
	ListMovements(ctx context.Context, filters *dto.MovementFilters) ([]model.StockMovement, int, error)
	AdjustStock(ctx context.Context, input *dto.AdjustStockInput) (*model.Product, error)
}
