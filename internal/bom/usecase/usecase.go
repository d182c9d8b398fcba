package usecase

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/fekuna/omnipos-stockflow-service/internal/apperr"
	"github.com/fekuna/omnipos-stockflow-service/internal/bom"
	"github.com/fekuna/omnipos-stockflow-service/internal/bom/dto"
	"github.com/fekuna/omnipos-stockflow-service/internal/events"
	"github.com/fekuna/omnipos-stockflow-service/internal/model"
	"github.com/fekuna/omnipos-stockflow-service/internal/platform/cache"
	"github.com/fekuna/omnipos-stockflow-service/internal/platform/logger"
	"github.com/fekuna/omnipos-stockflow-service/internal/platform/postgres"
	"github.com/fekuna/omnipos-stockflow-service/internal/platform/tracing"
	"github.com/fekuna/omnipos-stockflow-service/internal/product"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

const (
	refBOM          = "bom"
	buildabilityTTL = 15 * time.Second
)

type bomUseCase struct {
	repo   bom.Repository
	ledger *product.Ledger
	tx     postgres.Transactor
	cache  cache.Cache
	events *events.Emitter
	logger logger.Logger
}

func NewBOMUseCase(repo bom.Repository, ledger *product.Ledger, tx postgres.Transactor, c cache.Cache, emitter *events.Emitter, log logger.Logger) bom.UseCase {
	if c == nil {
		c = cache.Noop{}
	}
	return &bomUseCase{
		repo:   repo,
		ledger: ledger,
		tx:     tx,
		cache:  c,
		events: emitter,
		logger: log,
	}
}

func (uc *bomUseCase) Create(ctx context.Context, input *dto.CreateInput) (*dto.CreateResult, error) {
	const op = "create bom"
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperr.Validation(op, "bom name is required")
	}
	comps, err := toComponents(op, input.Components)
	if err != nil {
		return nil, err
	}

	var out dto.CreateResult
	err = uc.tx.WithinTx(ctx, func(tx sqlx.ExtContext) error {
		if err := uc.repo.LockCodes(ctx, tx); err != nil {
			return err
		}
		last, err := uc.repo.LastCode(ctx, tx)
		if err != nil {
			return err
		}
		next, _ := bom.ParseCode(last)
		b := &model.BOM{Code: bom.FormatCode(next + 1), Name: name}
		if err := uc.repo.Create(ctx, tx, b); err != nil {
			return err
		}

		fg, err := uc.ledger.EnsureFinishedGood(ctx, tx, b.Code, b.Name)
		if err != nil {
			return err
		}
		if err := uc.checkComponents(ctx, tx, op, fg.ID, comps); err != nil {
			return err
		}
		if err := uc.repo.ReplaceComponents(ctx, tx, b.ID, comps); err != nil {
			return err
		}
		out = dto.CreateResult{BOMID: b.ID, BOMCode: b.Code, ProductID: fg.ID}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("BOM created", zap.Int64("bom_id", out.BOMID), zap.String("bom_code", out.BOMCode), zap.Int64("fg_product_id", out.ProductID))
	return &out, nil
}

func (uc *bomUseCase) Rename(ctx context.Context, id int64, name string) (*model.BOM, error) {
	const op = "rename bom"
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Validation(op, "bom name is required")
	}

	var b *model.BOM
	err := uc.tx.WithinTx(ctx, func(tx sqlx.ExtContext) error {
		var err error
		b, err = uc.lockBOM(ctx, tx, op, id)
		if err != nil {
			return err
		}
		if err := uc.repo.Rename(ctx, tx, id, name); err != nil {
			return err
		}
		b.Name = name
		_, err = uc.ledger.EnsureFinishedGood(ctx, tx, b.Code, name)
		return err
	})
	if err != nil {
		return nil, err
	}
	uc.logger.Info("BOM renamed", zap.Int64("bom_id", id), zap.String("bom_name", name))
	return b, nil
}

func (uc *bomUseCase) ReplaceComponents(ctx context.Context, id int64, components []dto.ComponentInput) (*model.BOM, error) {
	const op = "replace bom components"
	comps, err := toComponents(op, components)
	if err != nil {
		return nil, err
	}

	var b *model.BOM
	err = uc.tx.WithinTx(ctx, func(tx sqlx.ExtContext) error {
		var err error
		b, err = uc.lockBOM(ctx, tx, op, id)
		if err != nil {
			return err
		}
		var fgID int64
		fg, err := uc.ledger.LockByCode(ctx, tx, b.Code)
		if err != nil {
			return err
		}
		if fg != nil {
			fgID = fg.ID
		}
		if err := uc.checkComponents(ctx, tx, op, fgID, comps); err != nil {
			return err
		}
		if err := uc.repo.ReplaceComponents(ctx, tx, id, comps); err != nil {
			return err
		}
		for i := range comps {
			comps[i].BOMID = id
		}
		b.Components = comps
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.logger.Info("BOM components replaced", zap.Int64("bom_id", id), zap.Int("components", len(comps)))
	uc.invalidateBuildability(ctx)
	return b, nil
}

func (uc *bomUseCase) Delete(ctx context.Context, id int64) error {
	const op = "delete bom"
	err := uc.tx.WithinTx(ctx, func(tx sqlx.ExtContext) error {
		if _, err := uc.lockBOM(ctx, tx, op, id); err != nil {
			return err
		}
		return uc.repo.SoftDelete(ctx, tx, id)
	})
	if err != nil {
		return err
	}
	uc.logger.Info("BOM deleted", zap.Int64("bom_id", id))
	uc.invalidateBuildability(ctx)
	return nil
}

func (uc *bomUseCase) Buildability(ctx context.Context, id int64) (*dto.Buildability, error) {
	ctx, span := tracing.Start(ctx, "bom.Buildability")
	defer span.End()

	key := product.BuildabilityCachePrefix + strconv.FormatInt(id, 10)
	var cached dto.Buildability
	if hit, err := uc.cache.GetJSON(ctx, key, &cached); err == nil && hit {
		return &cached, nil
	}

	if _, err := uc.getBOM(ctx, "buildability", id); err != nil {
		return nil, err
	}
	comps, err := uc.repo.ComponentStock(ctx, id)
	if err != nil {
		return nil, err
	}
	out := &dto.Buildability{BOMID: id, MaxBuildable: bom.MaxBuildable(comps)}
	if err := uc.cache.SetJSON(ctx, key, out, buildabilityTTL); err != nil {
		uc.logger.Warn("Buildability cache write failed", zap.Error(err))
	}
	return out, nil
}

func (uc *bomUseCase) Preview(ctx context.Context, id, qty int64) (*dto.PreviewResult, error) {
	const op = "preview build"
	ctx, span := tracing.Start(ctx, "bom.Preview")
	defer span.End()

	if qty < 0 {
		return nil, apperr.Validation(op, "qty must not be negative")
	}
	b, err := uc.getBOM(ctx, op, id)
	if err != nil {
		return nil, err
	}
	comps, err := uc.repo.ComponentStock(ctx, id)
	if err != nil {
		return nil, err
	}
	lines, canBuild := bom.Preview(comps, qty)
	return &dto.PreviewResult{BOMID: id, BOMCode: b.Code, Qty: qty, CanBuild: canBuild, Components: lines}, nil
}

// Reserve commits raw materials for qty units. Either every component is
// reserved or none is.
func (uc *bomUseCase) Reserve(ctx context.Context, id, qty int64) error {
	const op = "reserve for bom"
	ctx, span := tracing.Start(ctx, "bom.Reserve")
	defer span.End()

	if qty < 1 {
		return apperr.Validation(op, "qty must be at least 1")
	}
	err := uc.tx.WithinTx(ctx, func(tx sqlx.ExtContext) error {
		b, reqs, locked, err := uc.lockForBuild(ctx, tx, op, id, qty)
		if err != nil {
			return err
		}
		for _, r := range reqs {
			p := locked[r.ProductID]
			if available := p.Stock - p.Reserved; available < r.Required {
				return apperr.Insufficient(op, "product", p.ID, "available", r.Required, available)
			}
		}
		for _, r := range reqs {
			if _, err := uc.ledger.Apply(ctx, tx, product.Change{
				ProductID:     r.ProductID,
				ReservedDelta: r.Required,
				Movement:      model.MovementReserve,
				RefType:       refBOM,
				RefID:         b.ID,
				Notes:         fmt.Sprintf("reserved for %d x %s", qty, b.Code),
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	uc.logger.Info("Components reserved for BOM", zap.Int64("bom_id", id), zap.Int64("qty", qty))
	uc.ledger.StockChanged(ctx)
	return nil
}

// Produce converts reserved components into finished-good stock.
func (uc *bomUseCase) Produce(ctx context.Context, id, qty int64) (*dto.ProduceResult, error) {
	const op = "produce from bom"
	ctx, span := tracing.Start(ctx, "bom.Produce")
	defer span.End()

	if qty < 1 {
		return nil, apperr.Validation(op, "qty must be at least 1")
	}

	var out dto.ProduceResult
	err := uc.tx.WithinTx(ctx, func(tx sqlx.ExtContext) error {
		b, err := uc.lockBOM(ctx, tx, op, id)
		if err != nil {
			return err
		}
		fg, err := uc.ledger.EnsureFinishedGood(ctx, tx, b.Code, b.Name)
		if err != nil {
			return err
		}

		reqs := bom.Requirements(b.Components, qty)
		if len(reqs) == 0 {
			return apperr.Validation(op, "bom %s has no components", b.Code)
		}
		locked, err := uc.ledger.LockMany(ctx, tx, bom.RequirementIDs(reqs))
		if err != nil {
			return err
		}
		for _, r := range reqs {
			p := locked[r.ProductID]
			if p.Reserved < r.Required {
				return apperr.Insufficient(op, "product", p.ID, "reserved", r.Required, p.Reserved)
			}
			if p.Stock < r.Required {
				return apperr.Insufficient(op, "product", p.ID, "stock", r.Required, p.Stock)
			}
		}

		for _, r := range reqs {
			if _, err := uc.ledger.Apply(ctx, tx, product.Change{
				ProductID:     r.ProductID,
				StockDelta:    -r.Required,
				ReservedDelta: -r.Required,
				Movement:      model.MovementProduceInput,
				RefType:       refBOM,
				RefID:         b.ID,
				Notes:         fmt.Sprintf("consumed by %d x %s", qty, b.Code),
			}); err != nil {
				return err
			}
		}
		updated, err := uc.ledger.Apply(ctx, tx, product.Change{
			ProductID:  fg.ID,
			StockDelta: qty,
			Movement:   model.MovementProduceOutput,
			RefType:    refBOM,
			RefID:      b.ID,
			Notes:      fmt.Sprintf("produced from %s", b.Code),
		})
		if err != nil {
			return err
		}
		out = dto.ProduceResult{BOMCode: b.Code, Qty: qty, FGProductID: fg.ID, FGStock: updated.Stock}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("Finished good produced",
		zap.Int64("bom_id", id),
		zap.Int64("fg_product_id", out.FGProductID),
		zap.Int64("qty", qty),
		zap.Int64("fg_stock", out.FGStock),
	)
	uc.events.Emit(ctx, events.FinishedGoodProduced, id, out)
	uc.ledger.StockChanged(ctx)
	return &out, nil
}

func (uc *bomUseCase) CancelReserve(ctx context.Context, id, qty int64) error {
	const op = "cancel bom reservation"
	ctx, span := tracing.Start(ctx, "bom.CancelReserve")
	defer span.End()

	if qty < 1 {
		return apperr.Validation(op, "qty must be at least 1")
	}
	err := uc.tx.WithinTx(ctx, func(tx sqlx.ExtContext) error {
		b, reqs, locked, err := uc.lockForBuild(ctx, tx, op, id, qty)
		if err != nil {
			return err
		}
		for _, r := range reqs {
			if p := locked[r.ProductID]; p.Reserved < r.Required {
				return apperr.Insufficient(op, "product", p.ID, "reserved", r.Required, p.Reserved)
			}
		}
		for _, r := range reqs {
			if _, err := uc.ledger.Apply(ctx, tx, product.Change{
				ProductID:     r.ProductID,
				ReservedDelta: -r.Required,
				Movement:      model.MovementUnreserve,
				RefType:       refBOM,
				RefID:         b.ID,
				Notes:         fmt.Sprintf("released from %d x %s", qty, b.Code),
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	uc.logger.Info("BOM reservation cancelled", zap.Int64("bom_id", id), zap.Int64("qty", qty))
	uc.ledger.StockChanged(ctx)
	return nil
}

func (uc *bomUseCase) lockForBuild(ctx context.Context, tx sqlx.ExtContext, op string, id, qty int64) (*model.BOM, []bom.Requirement, map[int64]*model.Product, error) {
	b, err := uc.lockBOM(ctx, tx, op, id)
	if err != nil {
		return nil, nil, nil, err
	}
	reqs := bom.Requirements(b.Components, qty)
	if len(reqs) == 0 {
		return nil, nil, nil, apperr.Validation(op, "bom %s has no components", b.Code)
	}
	locked, err := uc.ledger.LockMany(ctx, tx, bom.RequirementIDs(reqs))
	if err != nil {
		return nil, nil, nil, err
	}
	return b, reqs, locked, nil
}

func (uc *bomUseCase) lockBOM(ctx context.Context, tx sqlx.ExtContext, op string, id int64) (*model.BOM, error) {
	b, err := uc.repo.LockByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, apperr.NotFound(op, "bom", id)
	}
	return b, nil
}

func (uc *bomUseCase) getBOM(ctx context.Context, op string, id int64) (*model.BOM, error) {
	b, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, apperr.NotFound(op, "bom", id)
	}
	return b, nil
}

// checkComponents rejects a BOM that consumes its own finished good and
// components that do not exist.
func (uc *bomUseCase) checkComponents(ctx context.Context, tx sqlx.ExtContext, op string, fgID int64, comps []model.BOMComponent) error {
	ids := make([]int64, 0, len(comps))
	for _, c := range comps {
		if fgID != 0 && c.ProductID == fgID {
			return apperr.Validation(op, "a bom cannot use its own finished good %d as a component", fgID)
		}
		ids = append(ids, c.ProductID)
	}
	if len(ids) == 0 {
		return nil
	}
	_, err := uc.ledger.LockMany(ctx, tx, ids)
	return err
}

func (uc *bomUseCase) invalidateBuildability(ctx context.Context) {
	if err := uc.cache.DeletePattern(ctx, product.BuildabilityCachePrefix+"*"); err != nil {
		uc.logger.Warn("Failed to invalidate buildability cache", zap.Error(err))
	}
}

func toComponents(op string, in []dto.ComponentInput) ([]model.BOMComponent, error) {
	out := make([]model.BOMComponent, 0, len(in))
	seen := make(map[int64]bool, len(in))
	for _, c := range in {
		if c.ProductID <= 0 {
			return nil, apperr.Validation(op, "component product id is required")
		}
		if seen[c.ProductID] {
			return nil, apperr.Validation(op, "component %d is listed more than once", c.ProductID)
		}
		seen[c.ProductID] = true
		if c.QuantityRequired <= 0 {
			return nil, apperr.Validation(op, "component %d quantity must be greater than zero", c.ProductID)
		}
		out = append(out, model.BOMComponent{ProductID: c.ProductID, QuantityRequired: c.QuantityRequired})
	}
	return out, nil
}
