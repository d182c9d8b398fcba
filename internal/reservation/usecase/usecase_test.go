package usecase_test

import (
	"context"
	"testing"

	"github.com/fekuna/omnipos-stockflow-service/internal/apperr"
	"github.com/fekuna/omnipos-stockflow-service/internal/events"
	"github.com/fekuna/omnipos-stockflow-service/internal/events/eventstest"
	"github.com/fekuna/omnipos-stockflow-service/internal/memstore"
	"github.com/fekuna/omnipos-stockflow-service/internal/model"
	"github.com/fekuna/omnipos-stockflow-service/internal/platform/logger"
	"github.com/fekuna/omnipos-stockflow-service/internal/product"
	"github.com/fekuna/omnipos-stockflow-service/internal/reservation"
	"github.com/fekuna/omnipos-stockflow-service/internal/reservation/dto"
	"github.com/fekuna/omnipos-stockflow-service/internal/reservation/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	store *memstore.Store
	rec   *eventstest.Recorder
	uc    reservation.UseCase
}

func newFixture() *fixture {
	s := memstore.New()
	rec := &eventstest.Recorder{}
	log := logger.NewNop()
	uc := usecase.NewReservationUseCase(
		s.Reservations(),
		product.NewLedger(s.Products()),
		s,
		events.NewEmitter(rec, log),
		log,
	)
	return &fixture{store: s, rec: rec, uc: uc}
}

func (f *fixture) product(stock int64) int64 {
	return f.store.AddProduct(model.Product{Code: "P", Name: "Widget", Stock: stock})
}

func (f *fixture) order(lines map[int64]int64) int64 {
	so := f.store.AddSalesOrder("SO-1", 1)
	for productID, qty := range lines {
		f.store.AddOrderItem(so, productID, qty)
	}
	return so
}

func TestReservationLifecycle(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	p := f.product(100)
	so := f.order(map[int64]int64{p: 100})

	res, err := f.uc.Reserve(ctx, &dto.ReserveInput{SalesOrderID: so, ProductID: p, Quantity: 30})
	require.NoError(t, err)
	assert.Equal(t, int64(30), f.store.Product(p).Reserved)
	assert.Equal(t, int64(70), f.store.Product(p).Available)
	assert.Equal(t, model.SOPartiallyReserved, f.store.SalesOrder(so).Status)

	_, err = f.uc.Reserve(ctx, &dto.ReserveInput{SalesOrderID: so, ProductID: p, Quantity: 5})
	assert.ErrorIs(t, err, apperr.ErrConflict)
	assert.Equal(t, int64(30), f.store.Product(p).Reserved)

	updated, err := f.uc.Update(ctx, &dto.UpdateInput{ReservationID: res.ID, Quantity: 50})
	require.NoError(t, err)
	assert.Equal(t, int64(50), updated.QuantityReserved)
	assert.Equal(t, int64(50), f.store.Product(p).Reserved)

	_, err = f.uc.Update(ctx, &dto.UpdateInput{ReservationID: res.ID, Quantity: 20})
	require.NoError(t, err)
	assert.Equal(t, int64(20), f.store.Product(p).Reserved)

	require.NoError(t, f.uc.Cancel(ctx, res.ID))
	assert.Equal(t, int64(0), f.store.Product(p).Reserved)
	assert.Equal(t, int64(100), f.store.Product(p).Stock)
	assert.Equal(t, model.SOAwaitingReservation, f.store.SalesOrder(so).Status)

	cancelled := f.store.Reservation(res.ID)
	assert.Equal(t, model.ReservationCancelled, cancelled.Status)
	assert.False(t, cancelled.Active())

	err = f.uc.Cancel(ctx, res.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	var reserveChanges, unreserveChanges int64
	for _, m := range f.store.Movements(p) {
		switch m.MovementType {
		case model.MovementReserve:
			reserveChanges += m.ReservedChange
		case model.MovementUnreserve:
			unreserveChanges += m.ReservedChange
		}
	}
	assert.Equal(t, int64(0), reserveChanges+unreserveChanges)

	assert.Equal(t, []string{
		events.ReservationChanged,
		events.ReservationChanged,
		events.ReservationChanged,
		events.ReservationChanged,
	}, f.rec.Types())
}

func TestReserveGuards(t *testing.T) {
	ctx := context.Background()

	t.Run("beyond remaining order quantity", func(t *testing.T) {
		f := newFixture()
		p := f.product(100)
		so := f.order(map[int64]int64{p: 10})

		_, err := f.uc.Reserve(ctx, &dto.ReserveInput{SalesOrderID: so, ProductID: p, Quantity: 11})
		assert.ErrorIs(t, err, apperr.ErrInsufficient)
	})

	t.Run("beyond available stock", func(t *testing.T) {
		f := newFixture()
		p := f.product(5)
		so := f.order(map[int64]int64{p: 10})

		_, err := f.uc.Reserve(ctx, &dto.ReserveInput{SalesOrderID: so, ProductID: p, Quantity: 6})
		assert.ErrorIs(t, err, apperr.ErrInsufficient)
		assert.Zero(t, f.store.Product(p).Reserved)
		assert.Empty(t, f.rec.Messages)
	})

	t.Run("update beyond available stock", func(t *testing.T) {
		f := newFixture()
		p := f.product(10)
		so := f.order(map[int64]int64{p: 20})

		res, err := f.uc.Reserve(ctx, &dto.ReserveInput{SalesOrderID: so, ProductID: p, Quantity: 8})
		require.NoError(t, err)
		_, err = f.uc.Update(ctx, &dto.UpdateInput{ReservationID: res.ID, Quantity: 11})
		assert.ErrorIs(t, err, apperr.ErrInsufficient)
		assert.Equal(t, int64(8), f.store.Product(p).Reserved)
	})

	t.Run("unknown sales order", func(t *testing.T) {
		f := newFixture()
		p := f.product(10)

		_, err := f.uc.Reserve(ctx, &dto.ReserveInput{SalesOrderID: 999, ProductID: p, Quantity: 1})
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})

	t.Run("zero quantity", func(t *testing.T) {
		f := newFixture()
		_, err := f.uc.Reserve(ctx, &dto.ReserveInput{SalesOrderID: 1, ProductID: 1, Quantity: 0})
		assert.ErrorIs(t, err, apperr.ErrValidation)
	})
}

func TestBulkReserveIsAllOrNothing(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	a := f.product(10)
	b := f.product(2)
	so := f.order(map[int64]int64{a: 5, b: 5})

	_, err := f.uc.BulkReserve(ctx, &dto.BulkReserveInput{
		SalesOrderID: so,
		Items:        []dto.BulkLine{{ProductID: a, Quantity: 5}, {ProductID: b, Quantity: 5}},
	})
	assert.ErrorIs(t, err, apperr.ErrInsufficient)
	assert.Zero(t, f.store.Product(a).Reserved)
	assert.Zero(t, f.store.Product(b).Reserved)
	assert.Empty(t, f.store.ReservationsOf(so))
	assert.Empty(t, f.store.Movements(a))

	out, err := f.uc.BulkReserve(ctx, &dto.BulkReserveInput{
		SalesOrderID: so,
		Items:        []dto.BulkLine{{ProductID: a, Quantity: 5}, {ProductID: b, Quantity: 2}},
	})
	require.NoError(t, err)
	assert.Len(t, out, 2)
	assert.Equal(t, model.SOPartiallyReserved, f.store.SalesOrder(so).Status)
	assert.Len(t, f.rec.Messages, 2)
}

func TestFullyReservedStatus(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	p := f.product(10)
	so := f.order(map[int64]int64{p: 4})

	_, err := f.uc.Reserve(ctx, &dto.ReserveInput{SalesOrderID: so, ProductID: p, Quantity: 4})
	require.NoError(t, err)
	assert.Equal(t, model.SOFullyReserved, f.store.SalesOrder(so).Status)

	for range 2 {
		status, err := f.uc.RecomputeStatus(ctx, so)
		require.NoError(t, err)
		assert.Equal(t, model.SOFullyReserved, status)
	}

	views, err := f.uc.ListBySalesOrder(ctx, so)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, int64(4), views[0].QuantityReserved)
}

func TestDeleteOrderItem(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	a := f.product(10)
	b := f.product(10)
	so := f.order(map[int64]int64{a: 3, b: 3})

	res, err := f.uc.Reserve(ctx, &dto.ReserveInput{SalesOrderID: so, ProductID: a, Quantity: 3})
	require.NoError(t, err)

	err = f.uc.DeleteOrderItem(ctx, so, a)
	assert.ErrorIs(t, err, apperr.ErrConflict)

	require.NoError(t, f.uc.DeleteOrderItem(ctx, so, b))
	assert.Equal(t, model.SOFullyReserved, f.store.SalesOrder(so).Status)

	err = f.uc.DeleteOrderItem(ctx, so, b)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	require.NoError(t, f.uc.Cancel(ctx, res.ID))
	require.NoError(t, f.uc.DeleteOrderItem(ctx, so, a))
	assert.Equal(t, model.SOAwaitingReservation, f.store.SalesOrder(so).Status)
}
