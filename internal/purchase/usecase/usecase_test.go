package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/fekuna/omnipos-stockflow-service/internal/apperr"
	"github.com/fekuna/omnipos-stockflow-service/internal/docnumber"
	"github.com/fekuna/omnipos-stockflow-service/internal/events"
	"github.com/fekuna/omnipos-stockflow-service/internal/events/eventstest"
	"github.com/fekuna/omnipos-stockflow-service/internal/memstore"
	"github.com/fekuna/omnipos-stockflow-service/internal/model"
	"github.com/fekuna/omnipos-stockflow-service/internal/platform/cache/cachetest"
	"github.com/fekuna/omnipos-stockflow-service/internal/platform/logger"
	"github.com/fekuna/omnipos-stockflow-service/internal/product"
	productdto "github.com/fekuna/omnipos-stockflow-service/internal/product/dto"
	productuc "github.com/fekuna/omnipos-stockflow-service/internal/product/usecase"
	"github.com/fekuna/omnipos-stockflow-service/internal/purchase"
	"github.com/fekuna/omnipos-stockflow-service/internal/purchase/dto"
	"github.com/fekuna/omnipos-stockflow-service/internal/purchase/usecase"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	store  *memstore.Store
	rec    *eventstest.Recorder
	cache  *cachetest.Memory
	ledger *product.Ledger
	uc     purchase.UseCase
	p      int64
}

// newFixture seeds one raw material below its reorder point.
func newFixture() *fixture {
	s := memstore.New()
	rec := &eventstest.Recorder{}
	mem := cachetest.NewMemory()
	log := logger.NewNop()
	ledger := product.NewLedger(s.Products()).WithCache(mem, log)
	allocator := docnumber.NewAllocator(s.DocNumbers(), docnumber.BuddhistCalendar{}).
		WithClock(func() time.Time { return time.Date(2026, 2, 10, 8, 0, 0, 0, time.UTC) })
	return &fixture{
		store:  s,
		rec:    rec,
		cache:  mem,
		ledger: ledger,
		uc:     usecase.NewPurchaseUseCase(s.Purchases(), ledger, allocator, s, events.NewEmitter(rec, log), log),
		p:      s.AddProduct(model.Product{Code: "RM-1", Name: "Resin", Stock: 5, ReorderPoint: 8}),
	}
}

func (f *fixture) draft(t *testing.T, qty int64) *model.PurchaseOrder {
	t.Helper()
	po, err := f.uc.Create(context.Background(), &dto.CreateInput{
		SupplierID: 3,
		Items:      []dto.ItemInput{{ProductID: f.p, QuantityOrdered: qty, UnitPrice: decimal.NewFromInt(12)}},
	})
	require.NoError(t, err)
	return po
}

func TestReceiveUntilCompleted(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	po := f.draft(t, 10)
	assert.Equal(t, model.PODraft, po.Status)
	assert.Nil(t, po.PONo)
	item := po.Items[0].ID

	approved, err := f.uc.Approve(ctx, po.ID)
	require.NoError(t, err)
	require.NotNil(t, approved.PONo)
	assert.Equal(t, "MPO69-001", *approved.PONo)
	assert.Equal(t, model.POApproved, approved.Status)

	first, err := f.uc.Receive(ctx, &dto.ReceiveInput{
		PurchaseOrderID: po.ID,
		Items: []dto.ReceiveLine{
			{PurchaseOrderItemID: item, QuantityReceived: 2},
			{PurchaseOrderItemID: item, QuantityReceived: 2},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "MGR69-001", first.GRNo)
	assert.Equal(t, string(model.POPartial), first.PurchaseOrderStatus)
	assert.Equal(t, 1, first.Lines)
	assert.Equal(t, int64(9), f.store.Product(f.p).Stock)
	assert.Equal(t, int64(4), f.store.PurchaseOrderItem(item).QuantityReceived)

	_, err = f.uc.Receive(ctx, &dto.ReceiveInput{
		PurchaseOrderID: po.ID,
		Items:           []dto.ReceiveLine{{PurchaseOrderItemID: item, QuantityReceived: 7}},
	})
	assert.ErrorIs(t, err, apperr.ErrInsufficient)
	assert.Equal(t, int64(9), f.store.Product(f.p).Stock)

	second, err := f.uc.Receive(ctx, &dto.ReceiveInput{
		PurchaseOrderID: po.ID,
		Items:           []dto.ReceiveLine{{PurchaseOrderItemID: item, QuantityReceived: 6}},
	})
	require.NoError(t, err)
	assert.Equal(t, "MGR69-002", second.GRNo)
	assert.Equal(t, string(model.POCompleted), second.PurchaseOrderStatus)
	assert.Equal(t, int64(15), f.store.Product(f.p).Stock)

	_, err = f.uc.Receive(ctx, &dto.ReceiveInput{
		PurchaseOrderID: po.ID,
		Items:           []dto.ReceiveLine{{PurchaseOrderItemID: item, QuantityReceived: 1}},
	})
	assert.ErrorIs(t, err, apperr.ErrConflict)

	var received int64
	for _, m := range f.store.Movements(f.p) {
		if m.MovementType == model.MovementReceive {
			received += m.StockChange
		}
	}
	assert.Equal(t, int64(10), received)
	assert.Equal(t, []string{events.GoodsReceived, events.GoodsReceived}, f.rec.Types())

	err = f.uc.Delete(ctx, po.ID)
	assert.ErrorIs(t, err, apperr.ErrConflict)
}

func TestReceiveRefreshesLowStockList(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	products := productuc.NewProductUseCase(f.store.Products(), f.ledger, f.store, f.cache, logger.NewNop())
	filters := &productdto.LowStockFilters{Page: 1, PageSize: 20}

	items, _, err := products.ListLowStock(ctx, filters)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, f.p, items[0].ID)
	assert.Equal(t, 1, f.cache.Len())

	po := f.draft(t, 10)
	_, err = f.uc.Approve(ctx, po.ID)
	require.NoError(t, err)
	_, err = f.uc.Receive(ctx, &dto.ReceiveInput{
		PurchaseOrderID: po.ID,
		Items:           []dto.ReceiveLine{{PurchaseOrderItemID: po.Items[0].ID, QuantityReceived: 10}},
	})
	require.NoError(t, err)
	assert.Zero(t, f.cache.Len())

	items, total, err := products.ListLowStock(ctx, filters)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, items)
}

func TestReceiveRequiresApproval(t *testing.T) {
	f := newFixture()
	po := f.draft(t, 3)

	_, err := f.uc.Receive(context.Background(), &dto.ReceiveInput{
		PurchaseOrderID: po.ID,
		Items:           []dto.ReceiveLine{{PurchaseOrderItemID: po.Items[0].ID, QuantityReceived: 1}},
	})
	assert.ErrorIs(t, err, apperr.ErrConflict)
	assert.Equal(t, int64(5), f.store.Product(f.p).Stock)
}

func TestReceiveUnknownItem(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	po := f.draft(t, 3)
	_, err := f.uc.Approve(ctx, po.ID)
	require.NoError(t, err)

	_, err = f.uc.Receive(ctx, &dto.ReceiveInput{
		PurchaseOrderID: po.ID,
		Items:           []dto.ReceiveLine{{PurchaseOrderItemID: 999, QuantityReceived: 1}},
	})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestDraftEditing(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	empty, err := f.uc.Create(ctx, &dto.CreateInput{SupplierID: 3})
	require.NoError(t, err)
	_, err = f.uc.Approve(ctx, empty.ID)
	assert.ErrorIs(t, err, apperr.ErrConflict)

	item, err := f.uc.AddItem(ctx, empty.ID, &dto.ItemInput{ProductID: f.p, QuantityOrdered: 2, UnitPrice: decimal.NewFromInt(5)})
	require.NoError(t, err)

	_, err = f.uc.AddItem(ctx, empty.ID, &dto.ItemInput{ProductID: 999, QuantityOrdered: 1})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	require.NoError(t, f.uc.RemoveItem(ctx, empty.ID, item.ID))
	err = f.uc.RemoveItem(ctx, empty.ID, item.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = f.uc.AddItem(ctx, empty.ID, &dto.ItemInput{ProductID: f.p, QuantityOrdered: 2})
	require.NoError(t, err)
	approved, err := f.uc.Approve(ctx, empty.ID)
	require.NoError(t, err)
	assert.Equal(t, "MPO69-001", *approved.PONo)

	_, err = f.uc.AddItem(ctx, empty.ID, &dto.ItemInput{ProductID: f.p, QuantityOrdered: 1})
	assert.ErrorIs(t, err, apperr.ErrConflict)
	_, err = f.uc.Approve(ctx, empty.ID)
	assert.ErrorIs(t, err, apperr.ErrConflict)

	got, err := f.uc.Get(ctx, empty.ID)
	require.NoError(t, err)
	assert.Len(t, got.Items, 1)
}

func TestDeleteDraft(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	po := f.draft(t, 3)

	require.NoError(t, f.uc.Delete(ctx, po.ID))
	_, err := f.uc.Get(ctx, po.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestCreateValidation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.uc.Create(ctx, &dto.CreateInput{})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = f.uc.Create(ctx, &dto.CreateInput{
		SupplierID: 3,
		Items:      []dto.ItemInput{{ProductID: f.p, QuantityOrdered: 0}},
	})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}
