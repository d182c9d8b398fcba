package usecase

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fekuna/omnipos-stockflow-service/internal/apperr"
	"github.com/fekuna/omnipos-stockflow-service/internal/model"
	"github.com/fekuna/omnipos-stockflow-service/internal/platform/cache"
	"github.com/fekuna/omnipos-stockflow-service/internal/platform/logger"
	"github.com/fekuna/omnipos-stockflow-service/internal/platform/postgres"
	"github.com/fekuna/omnipos-stockflow-service/internal/product"
	"github.com/fekuna/omnipos-stockflow-service/internal/product/dto"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

const lowStockCacheTTL = time.Minute

type productUseCase struct {
	repo   product.Repository
	ledger *product.Ledger
	tx     postgres.Transactor
	cache  cache.Cache
	logger logger.Logger
}

func NewProductUseCase(repo product.Repository, ledger *product.Ledger, tx postgres.Transactor, c cache.Cache, log logger.Logger) product.UseCase {
	if c == nil {
		c = cache.Noop{}
	}
	return &productUseCase{
		repo:   repo,
		ledger: ledger,
		tx:     tx,
		cache:  c,
		logger: log,
	}
}

func (uc *productUseCase) GetProduct(ctx context.Context, id int64) (*model.Product, error) {
	p, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperr.NotFound("get product", "product", id)
	}
	return p, nil
}

type lowStockPage struct {
	Items []model.Product `json:"items"`
	Total int             `json:"total"`
}

func (uc *productUseCase) ListLowStock(ctx context.Context, filters *dto.LowStockFilters) ([]model.Product, int, error) {
	cacheKey, err := uc.generateCacheKey(filters)
	if err == nil {
		var page lowStockPage
		hit, err := uc.cache.GetJSON(ctx, cacheKey, &page)
		if err != nil {
			uc.logger.Warn("Low stock cache read failed", zap.Error(err))
		}
		if hit {
			return page.Items, page.Total, nil
		}
	}

	items, total, err := uc.repo.ListLowStock(ctx, filters)
	if err != nil {
		return nil, 0, err
	}

	if cacheKey != "" {
		if err := uc.cache.SetJSON(ctx, cacheKey, lowStockPage{Items: items, Total: total}, lowStockCacheTTL); err != nil {
			uc.logger.Warn("Low stock cache write failed", zap.Error(err))
		}
	}
	return items, total, nil
}

func (uc *productUseCase) ListMovements(ctx context.Context, filters *dto.MovementFilters) ([]model.StockMovement, int, error) {
	if filters.ProductID <= 0 {
		return nil, 0, apperr.Validation("list movements", "product id is required")
	}
	return uc.repo.ListMovements(ctx, filters)
}

func (uc *productUseCase) AdjustStock(ctx context.Context, input *dto.AdjustStockInput) (*model.Product, error) {
	if input.ProductID <= 0 {
		return nil, apperr.Validation("adjust stock", "product id is required")
	}
	if input.StockDelta == 0 {
		return nil, apperr.Validation("adjust stock", "stock delta must not be zero")
	}

	var out *model.Product
	err := uc.tx.WithinTx(ctx, func(tx sqlx.ExtContext) error {
		if _, err := uc.ledger.Lock(ctx, tx, input.ProductID); err != nil {
			return err
		}
		p, err := uc.ledger.Apply(ctx, tx, product.Change{
			ProductID:  input.ProductID,
			StockDelta: input.StockDelta,
			Movement:   model.MovementAdjust,
			Notes:      input.Reason,
		})
		out = p
		return err
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("Stock adjusted",
		zap.Int64("product_id", out.ID),
		zap.Int64("delta", input.StockDelta),
		zap.Int64("stock", out.Stock),
	)
	uc.ledger.StockChanged(ctx)
	return out, nil
}

func (uc *productUseCase) generateCacheKey(filters *dto.LowStockFilters) (string, error) {
	data, err := json.Marshal(filters)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%x", product.LowStockCachePrefix, md5.Sum(data)), nil
}
