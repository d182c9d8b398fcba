package memstore_test

import (
	"context"
	"errors"
	"testing"

	"github.com/fekuna/omnipos-stockflow-service/internal/bom"
	"github.com/fekuna/omnipos-stockflow-service/internal/delivery"
	"github.com/fekuna/omnipos-stockflow-service/internal/docnumber"
	"github.com/fekuna/omnipos-stockflow-service/internal/memstore"
	"github.com/fekuna/omnipos-stockflow-service/internal/model"
	"github.com/fekuna/omnipos-stockflow-service/internal/platform/postgres"
	"github.com/fekuna/omnipos-stockflow-service/internal/product"
	"github.com/fekuna/omnipos-stockflow-service/internal/purchase"
	"github.com/fekuna/omnipos-stockflow-service/internal/quotation"
	"github.com/fekuna/omnipos-stockflow-service/internal/reservation"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ postgres.Transactor    = (*memstore.Store)(nil)
	_ product.Repository     = (*memstore.ProductRepo)(nil)
	_ reservation.Repository = (*memstore.ReservationRepo)(nil)
	_ bom.Repository         = (*memstore.BOMRepo)(nil)
	_ docnumber.Repository   = (*memstore.DocNumberRepo)(nil)
	_ delivery.Repository    = (*memstore.DeliveryRepo)(nil)
	_ purchase.Repository    = (*memstore.PurchaseRepo)(nil)
	_ quotation.Repository   = (*memstore.QuotationRepo)(nil)
)

func TestWithinTxRollsBackOnError(t *testing.T) {
	s := memstore.New()
	id := s.AddProduct(model.Product{Code: "P-1", Stock: 10})
	ctx := context.Background()

	boom := errors.New("boom")
	err := s.WithinTx(ctx, func(tx sqlx.ExtContext) error {
		_, err := s.Products().ApplyDelta(ctx, tx, id, -4, 0)
		require.NoError(t, err)
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, int64(10), s.Product(id).Stock)

	err = s.WithinTx(ctx, func(tx sqlx.ExtContext) error {
		_, err := s.Products().ApplyDelta(ctx, tx, id, -4, 2)
		return err
	})
	require.NoError(t, err)
	p := s.Product(id)
	assert.Equal(t, int64(6), p.Stock)
	assert.Equal(t, int64(4), p.Available)
}
