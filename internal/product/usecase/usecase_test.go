package usecase_test

import (
	"context"
	"testing"

	"github.com/fekuna/omnipos-stockflow-service/internal/apperr"
	"github.com/fekuna/omnipos-stockflow-service/internal/memstore"
	"github.com/fekuna/omnipos-stockflow-service/internal/model"
	"github.com/fekuna/omnipos-stockflow-service/internal/platform/logger"
	"github.com/fekuna/omnipos-stockflow-service/internal/product"
	"github.com/fekuna/omnipos-stockflow-service/internal/product/dto"
	"github.com/fekuna/omnipos-stockflow-service/internal/product/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUseCase(s *memstore.Store) product.UseCase {
	repo := s.Products()
	return usecase.NewProductUseCase(repo, product.NewLedger(repo), s, nil, logger.NewNop())
}

func TestAdjustStock(t *testing.T) {
	s := memstore.New()
	uc := newUseCase(s)
	ctx := context.Background()
	id := s.AddProduct(model.Product{Code: "P-1", Name: "Widget", Stock: 10, Reserved: 4})

	p, err := uc.AdjustStock(ctx, &dto.AdjustStockInput{ProductID: id, StockDelta: 5, Reason: "count"})
	require.NoError(t, err)
	assert.Equal(t, int64(15), p.Stock)

	_, err = uc.AdjustStock(ctx, &dto.AdjustStockInput{ProductID: id, StockDelta: -12})
	assert.ErrorIs(t, err, apperr.ErrInsufficient)
	assert.Equal(t, int64(15), s.Product(id).Stock)

	_, err = uc.AdjustStock(ctx, &dto.AdjustStockInput{ProductID: id})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	moves, total, err := uc.ListMovements(ctx, &dto.MovementFilters{ProductID: id, MovementType: model.MovementAdjust, Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, moves, 1)
	assert.Equal(t, "count", moves[0].Notes)
}

func TestAdjustStockDeletedProduct(t *testing.T) {
	s := memstore.New()
	uc := newUseCase(s)
	id := s.AddProduct(model.Product{Code: "P-1", Name: "Widget", Stock: 10})
	s.DeleteProduct(id)

	_, err := uc.AdjustStock(context.Background(), &dto.AdjustStockInput{ProductID: id, StockDelta: 1})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = uc.GetProduct(context.Background(), id)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestListLowStock(t *testing.T) {
	s := memstore.New()
	uc := newUseCase(s)
	s.AddProduct(model.Product{Code: "P-1", Name: "Plenty", Stock: 50, ReorderPoint: 10})
	low := s.AddProduct(model.Product{Code: "P-2", Name: "Low", Stock: 3, ReorderPoint: 10})

	items, total, err := uc.ListLowStock(context.Background(), &dto.LowStockFilters{Page: 1, PageSize: 20})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, items, 1)
	assert.Equal(t, low, items[0].ID)
}
