package product_test

import (
	"context"
	"testing"
	"time"

	"github.com/fekuna/omnipos-stockflow-service/internal/apperr"
	"github.com/fekuna/omnipos-stockflow-service/internal/auth"
	"github.com/fekuna/omnipos-stockflow-service/internal/memstore"
	"github.com/fekuna/omnipos-stockflow-service/internal/model"
	"github.com/fekuna/omnipos-stockflow-service/internal/platform/cache/cachetest"
	"github.com/fekuna/omnipos-stockflow-service/internal/platform/logger"
	"github.com/fekuna/omnipos-stockflow-service/internal/product"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedgerApply(t *testing.T) {
	tests := []struct {
		name          string
		stock         int64
		reserved      int64
		change        product.Change
		wantErr       error
		wantStock     int64
		wantReserved  int64
		wantMovements int
	}{
		{
			name:  "reserve within available",
			stock: 100, reserved: 0,
			change:    product.Change{ReservedDelta: 30, Movement: model.MovementReserve},
			wantStock: 100, wantReserved: 30, wantMovements: 1,
		},
		{
			name:  "reserve beyond available",
			stock: 10, reserved: 8,
			change:    product.Change{ReservedDelta: 3, Movement: model.MovementReserve},
			wantErr:   apperr.ErrInsufficient,
			wantStock: 10, wantReserved: 8,
		},
		{
			name:  "unreserve more than reserved",
			stock: 10, reserved: 2,
			change:    product.Change{ReservedDelta: -3, Movement: model.MovementUnreserve},
			wantErr:   apperr.ErrInsufficient,
			wantStock: 10, wantReserved: 2,
		},
		{
			name:  "deliver consumes stock and reservation",
			stock: 10, reserved: 6,
			change:    product.Change{StockDelta: -6, ReservedDelta: -6, Movement: model.MovementDeliver},
			wantStock: 4, wantReserved: 0, wantMovements: 1,
		},
		{
			name:  "stock below reserved",
			stock: 10, reserved: 6,
			change:    product.Change{StockDelta: -5, Movement: model.MovementAdjust},
			wantErr:   apperr.ErrInsufficient,
			wantStock: 10, wantReserved: 6,
		},
		{
			name:  "negative stock",
			stock: 3, reserved: 0,
			change:    product.Change{StockDelta: -4, Movement: model.MovementAdjust},
			wantErr:   apperr.ErrInsufficient,
			wantStock: 3, wantReserved: 0,
		},
		{
			name:  "zero change writes nothing",
			stock: 5, reserved: 1,
			change:    product.Change{Movement: model.MovementAdjust},
			wantStock: 5, wantReserved: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := memstore.New()
			id := s.AddProduct(model.Product{Code: "P-1", Name: "Widget", Stock: tt.stock, Reserved: tt.reserved})
			ledger := product.NewLedger(s.Products())

			tt.change.ProductID = id
			_, err := ledger.Apply(context.Background(), nil, tt.change)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}

			p := s.Product(id)
			assert.Equal(t, tt.wantStock, p.Stock)
			assert.Equal(t, tt.wantReserved, p.Reserved)
			assert.Equal(t, tt.wantStock-tt.wantReserved, p.Available)
			assert.Len(t, s.Movements(id), tt.wantMovements)
		})
	}
}

func TestLedgerApplyRecordsMovement(t *testing.T) {
	s := memstore.New()
	id := s.AddProduct(model.Product{Code: "P-1", Name: "Widget", Stock: 20})
	ledger := product.NewLedger(s.Products())
	ctx := auth.WithUserID(context.Background(), "user-7")

	_, err := ledger.Apply(ctx, nil, product.Change{
		ProductID:     id,
		ReservedDelta: 5,
		Movement:      model.MovementReserve,
		RefType:       "sales_order",
		RefID:         42,
	})
	require.NoError(t, err)

	moves := s.Movements(id)
	require.Len(t, moves, 1)
	m := moves[0]
	assert.NotEmpty(t, m.ID)
	assert.Equal(t, model.MovementReserve, m.MovementType)
	assert.Equal(t, int64(5), m.ReservedChange)
	assert.Equal(t, int64(20), m.StockAfter)
	assert.Equal(t, int64(5), m.ReservedAfter)
	require.NotNil(t, m.ReferenceType)
	assert.Equal(t, "sales_order", *m.ReferenceType)
	require.NotNil(t, m.ReferenceID)
	assert.Equal(t, "42", *m.ReferenceID)
	require.NotNil(t, m.CreatedBy)
	assert.Equal(t, "user-7", *m.CreatedBy)
}

func TestLedgerLock(t *testing.T) {
	s := memstore.New()
	ledger := product.NewLedger(s.Products())
	ctx := context.Background()

	active := s.AddProduct(model.Product{Code: "P-1", Name: "Widget"})
	deleted := s.AddProduct(model.Product{Code: "P-2", Name: "Gadget"})
	s.DeleteProduct(deleted)

	p, err := ledger.Lock(ctx, nil, active)
	require.NoError(t, err)
	assert.Equal(t, "Widget", p.Name)

	_, err = ledger.Lock(ctx, nil, deleted)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = ledger.LockMany(ctx, nil, []int64{active, deleted})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	many, err := ledger.LockMany(ctx, nil, []int64{active, active})
	require.NoError(t, err)
	assert.Len(t, many, 1)
}

func TestEnsureFinishedGood(t *testing.T) {
	ctx := context.Background()

	t.Run("creates missing product", func(t *testing.T) {
		s := memstore.New()
		ledger := product.NewLedger(s.Products())

		p, err := ledger.EnsureFinishedGood(ctx, nil, "BOM-001", "Gift Set")
		require.NoError(t, err)
		assert.NotZero(t, p.ID)
		assert.Equal(t, "BOM-001", p.Code)
		assert.Equal(t, "Gift Set", p.Name)
		assert.Equal(t, product.DefaultUnit, p.Unit)
		assert.Zero(t, p.Stock)
	})

	t.Run("restores deleted product", func(t *testing.T) {
		s := memstore.New()
		id := s.AddProduct(model.Product{Code: "BOM-001", Name: "Old", Stock: 4})
		s.DeleteProduct(id)
		ledger := product.NewLedger(s.Products())

		p, err := ledger.EnsureFinishedGood(ctx, nil, "BOM-001", "Gift Set")
		require.NoError(t, err)
		assert.Equal(t, id, p.ID)
		assert.Equal(t, model.ProductActive, p.State())
		assert.Equal(t, "Gift Set", p.Name)
		assert.Equal(t, int64(4), p.Stock)
	})

	t.Run("follows renamed bom", func(t *testing.T) {
		s := memstore.New()
		id := s.AddProduct(model.Product{Code: "BOM-001", Name: "Old"})
		ledger := product.NewLedger(s.Products())

		p, err := ledger.EnsureFinishedGood(ctx, nil, "BOM-001", "New")
		require.NoError(t, err)
		assert.Equal(t, id, p.ID)
		assert.Equal(t, "New", s.Product(id).Name)
	})
}

func TestStockChangedDropsDerivedCaches(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	mem := cachetest.NewMemory()
	ledger := product.NewLedger(s.Products()).WithCache(mem, logger.NewNop())

	require.NoError(t, mem.SetJSON(ctx, product.LowStockCachePrefix+"abc", 1, time.Minute))
	require.NoError(t, mem.SetJSON(ctx, product.BuildabilityCachePrefix+"4", 2, time.Minute))
	require.NoError(t, mem.SetJSON(ctx, "sessions:9", 3, time.Minute))

	ledger.StockChanged(ctx)
	assert.Equal(t, 1, mem.Len())

	// Without a cache the call is a no-op.
	product.NewLedger(s.Products()).StockChanged(ctx)
}
