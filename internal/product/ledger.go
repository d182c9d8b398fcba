package product

import (
	"context"
	"slices"
	"strconv"
	"time"

	"github.com/fekuna/omnipos-stockflow-service/internal/apperr"
	"github.com/fekuna/omnipos-stockflow-service/internal/auth"
	"github.com/fekuna/omnipos-stockflow-service/internal/model"
	"github.com/fekuna/omnipos-stockflow-service/internal/platform/cache"
	"github.com/fekuna/omnipos-stockflow-service/internal/platform/logger"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

const (
	DefaultUnit     = "pcs"
	DefaultLeadTime = 7
)

// Change is one mutation of a product's stock and reserved quantities.
type Change struct {
	ProductID     int64
	StockDelta    int64
	ReservedDelta int64
	Movement      model.MovementType
	RefType       string
	RefID         int64
	Notes         string
}

// Read caches derived from stock levels. StockChanged drops both.
const (
	LowStockCachePrefix     = "products:low-stock:"
	BuildabilityCachePrefix = "bom:buildability:"
)

// Ledger is the single mutation point for product quantities. Every call
// runs inside the caller's transaction and takes the product row lock.
type Ledger struct {
	repo   Repository
	now    func() time.Time
	cache  cache.Cache
	logger logger.Logger
}

func NewLedger(repo Repository) *Ledger {
	return &Ledger{repo: repo, now: time.Now, cache: cache.Noop{}, logger: logger.NewNop()}
}

// WithCache sets the cache StockChanged clears.
func (l *Ledger) WithCache(c cache.Cache, log logger.Logger) *Ledger {
	if c != nil {
		l.cache = c
	}
	if log != nil {
		l.logger = log
	}
	return l
}

// StockChanged drops cached views of stock levels. Callers run it after a
// committed transaction that went through Apply.
func (l *Ledger) StockChanged(ctx context.Context) {
	for _, prefix := range []string{LowStockCachePrefix, BuildabilityCachePrefix} {
		if err := l.cache.DeletePattern(ctx, prefix+"*"); err != nil {
			l.logger.Warn("Failed to invalidate stock cache", zap.String("prefix", prefix), zap.Error(err))
		}
	}
}

// Lock takes the row lock of an active product.
func (l *Ledger) Lock(ctx context.Context, q sqlx.ExtContext, id int64) (*model.Product, error) {
	p, err := l.repo.LockByID(ctx, q, id)
	if err != nil {
		return nil, err
	}
	if p == nil || p.State() == model.ProductDeleted {
		return nil, apperr.NotFound("lock product", "product", id)
	}
	return p, nil
}

// LockByCode locks the product with code in any state. It returns nil when
// no such product exists.
func (l *Ledger) LockByCode(ctx context.Context, q sqlx.ExtContext, code string) (*model.Product, error) {
	return l.repo.LockByCode(ctx, q, code)
}

// LockMany locks active products in ascending id order so concurrent
// callers never deadlock on each other.
func (l *Ledger) LockMany(ctx context.Context, q sqlx.ExtContext, ids []int64) (map[int64]*model.Product, error) {
	sorted := slices.Clone(ids)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	rows, err := l.repo.LockByIDs(ctx, q, sorted)
	if err != nil {
		return nil, err
	}
	out := make(map[int64]*model.Product, len(rows))
	for i := range rows {
		if rows[i].State() == model.ProductActive {
			out[rows[i].ID] = &rows[i]
		}
	}
	for _, id := range sorted {
		if _, ok := out[id]; !ok {
			return nil, apperr.NotFound("lock products", "product", id)
		}
	}
	return out, nil
}

// Apply adds the deltas of c and records a stock movement. It refuses any
// result with stock < 0, reserved < 0 or reserved > stock.
func (l *Ledger) Apply(ctx context.Context, q sqlx.ExtContext, c Change) (*model.Product, error) {
	const op = "apply stock change"

	cur, err := l.repo.LockByID(ctx, q, c.ProductID)
	if err != nil {
		return nil, err
	}
	if cur == nil {
		return nil, apperr.NotFound(op, "product", c.ProductID)
	}
	if c.StockDelta == 0 && c.ReservedDelta == 0 {
		return cur, nil
	}

	stock := cur.Stock + c.StockDelta
	reserved := cur.Reserved + c.ReservedDelta
	switch {
	case stock < 0:
		return nil, apperr.Insufficient(op, "product", cur.ID, "stock", -c.StockDelta, cur.Stock)
	case reserved < 0:
		return nil, apperr.Insufficient(op, "product", cur.ID, "reserved", -c.ReservedDelta, cur.Reserved)
	case reserved > stock:
		return nil, apperr.Insufficient(op, "product", cur.ID, "available", c.ReservedDelta-c.StockDelta, cur.Stock-cur.Reserved)
	}

	updated, err := l.repo.ApplyDelta(ctx, q, c.ProductID, c.StockDelta, c.ReservedDelta)
	if err != nil {
		return nil, err
	}

	m := &model.StockMovement{
		ID:             uuid.NewString(),
		ProductID:      c.ProductID,
		MovementType:   c.Movement,
		StockChange:    c.StockDelta,
		ReservedChange: c.ReservedDelta,
		StockAfter:     updated.Stock,
		ReservedAfter:  updated.Reserved,
		Notes:          c.Notes,
		CreatedBy:      auth.UserIDPtr(ctx),
		CreatedAt:      l.now(),
	}
	if c.RefType != "" {
		m.ReferenceType = &c.RefType
		ref := strconv.FormatInt(c.RefID, 10)
		m.ReferenceID = &ref
	}
	if err := l.repo.LogMovement(ctx, q, m); err != nil {
		return nil, err
	}
	return updated, nil
}

// EnsureFinishedGood resolves the product shadowing a BOM code. A missing
// product is created empty, a deleted one is restored, and the display name
// always follows the BOM name. The returned row is locked.
func (l *Ledger) EnsureFinishedGood(ctx context.Context, q sqlx.ExtContext, code, name string) (*model.Product, error) {
	p, err := l.repo.LockByCode(ctx, q, code)
	if err != nil {
		return nil, err
	}

	switch {
	case p == nil:
		p = &model.Product{
			Code:     code,
			Name:     name,
			Unit:     DefaultUnit,
			LeadTime: DefaultLeadTime,
		}
		if err := l.repo.Create(ctx, q, p); err != nil {
			return nil, err
		}
		return l.repo.LockByID(ctx, q, p.ID)
	case p.State() == model.ProductDeleted:
		if err := l.repo.Restore(ctx, q, p.ID, name); err != nil {
			return nil, err
		}
	case p.Name != name:
		if err := l.repo.Rename(ctx, q, p.ID, name); err != nil {
			return nil, err
		}
	default:
		return p, nil
	}
	return l.repo.LockByID(ctx, q, p.ID)
}
