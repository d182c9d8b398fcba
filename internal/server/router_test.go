package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	bomH "github.com/fekuna/omnipos-stockflow-service/internal/bom/handler"
	bomUC "github.com/fekuna/omnipos-stockflow-service/internal/bom/usecase"
	deliveryH "github.com/fekuna/omnipos-stockflow-service/internal/delivery/handler"
	deliveryUC "github.com/fekuna/omnipos-stockflow-service/internal/delivery/usecase"
	docnumberH "github.com/fekuna/omnipos-stockflow-service/internal/docnumber/handler"
	docnumberUC "github.com/fekuna/omnipos-stockflow-service/internal/docnumber/usecase"
	productH "github.com/fekuna/omnipos-stockflow-service/internal/product/handler"
	productUC "github.com/fekuna/omnipos-stockflow-service/internal/product/usecase"
	purchaseH "github.com/fekuna/omnipos-stockflow-service/internal/purchase/handler"
	purchaseUC "github.com/fekuna/omnipos-stockflow-service/internal/purchase/usecase"
	quotationH "github.com/fekuna/omnipos-stockflow-service/internal/quotation/handler"
	quotationUC "github.com/fekuna/omnipos-stockflow-service/internal/quotation/usecase"
	reservationH "github.com/fekuna/omnipos-stockflow-service/internal/reservation/handler"
	reservationUC "github.com/fekuna/omnipos-stockflow-service/internal/reservation/usecase"

	"github.com/fekuna/omnipos-stockflow-service/internal/docnumber"
	"github.com/fekuna/omnipos-stockflow-service/internal/events"
	"github.com/fekuna/omnipos-stockflow-service/internal/httpx"
	"github.com/fekuna/omnipos-stockflow-service/internal/memstore"
	"github.com/fekuna/omnipos-stockflow-service/internal/model"
	"github.com/fekuna/omnipos-stockflow-service/internal/platform/logger"
	"github.com/fekuna/omnipos-stockflow-service/internal/product"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(s *memstore.Store, health func(*http.Request) error) http.Handler {
	log := logger.NewNop()
	emitter := events.NewEmitter(nil, log)
	ledger := product.NewLedger(s.Products())
	alloc := docnumber.NewAllocator(s.DocNumbers(), docnumber.BuddhistCalendar{})

	h := &Handlers{
		Product: productH.NewProductHandler(productUC.NewProductUseCase(s.Products(), ledger, s, nil, log), log),
		Reservation: reservationH.NewReservationHandler(
			reservationUC.NewReservationUseCase(s.Reservations(), ledger, s, emitter, log), log),
		BOM: bomH.NewBOMHandler(bomUC.NewBOMUseCase(s.BOMs(), ledger, s, nil, emitter, log), log),
		Delivery: deliveryH.NewDeliveryHandler(deliveryUC.NewDeliveryUseCase(
			s.Deliveries(), s.Reservations(), s.DocNumbers(), alloc, ledger, s, emitter, log), log),
		DocNumber: docnumberH.NewDocNumberHandler(docnumberUC.NewDocNumberUseCase(s, alloc, log), log),
		Purchase: purchaseH.NewPurchaseHandler(
			purchaseUC.NewPurchaseUseCase(s.Purchases(), ledger, alloc, s, emitter, log), log),
		Quotation: quotationH.NewQuotationHandler(quotationUC.NewQuotationUseCase(s.Quotations(), alloc, s, log), log),
	}
	return NewRouter(h, Options{AllowedOrigins: []string{"*"}, Health: health})
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "clerk-1")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	r := newTestRouter(memstore.New(), nil)
	rec := do(t, r, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	down := newTestRouter(memstore.New(), func(*http.Request) error { return errors.New("db down") })
	rec = do(t, down, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestReserveOverHTTP(t *testing.T) {
	s := memstore.New()
	pid := s.AddProduct(model.Product{Code: "P-1", Name: "Widget", Stock: 10})
	so := s.AddSalesOrder("SO-1", 1)
	s.AddOrderItem(so, pid, 8)
	r := newTestRouter(s, nil)

	rec := do(t, r, http.MethodPost, "/api/reservations", `{"sales_order_id":`+itoa(so)+`,"product_id":`+itoa(pid)+`,"quantity":6}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var res model.Reservation
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&res))
	assert.Equal(t, int64(6), res.QuantityReserved)

	rec = do(t, r, http.MethodGet, "/api/products/"+itoa(pid), "")
	require.Equal(t, http.StatusOK, rec.Code)
	var p model.Product
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&p))
	assert.Equal(t, int64(6), p.Reserved)
	assert.Equal(t, int64(4), p.Available)

	rec = do(t, r, http.MethodPut, "/api/reservations/"+itoa(res.ID), `{"quantity":20}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var body httpx.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "product", body.Entity)
	assert.Equal(t, pid, body.EntityID)

	rec = do(t, r, http.MethodDelete, "/api/reservations/"+itoa(res.ID), "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, int64(0), s.Product(pid).Reserved)
}

func TestBadRequests(t *testing.T) {
	r := newTestRouter(memstore.New(), nil)

	rec := do(t, r, http.MethodGet, "/api/products/abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, r, http.MethodPost, "/api/reservations", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, r, http.MethodGet, "/api/products/999", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAllocateDocumentNumber(t *testing.T) {
	r := newTestRouter(memstore.New(), nil)

	rec := do(t, r, http.MethodPost, "/api/document-numbers", `{"kind":"quotation"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var num docnumber.Number
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&num))
	assert.True(t, strings.HasPrefix(num.Value, "MQ"), num.Value)
	assert.Equal(t, int64(1), num.Sequence)

	rec = do(t, r, http.MethodPost, "/api/document-numbers", `{"kind":"bogus"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLowStockRouteIsNotAnID(t *testing.T) {
	s := memstore.New()
	s.AddProduct(model.Product{Code: "P-1", Name: "Low", Stock: 1, ReorderPoint: 5})
	r := newTestRouter(s, nil)

	rec := do(t, r, http.MethodGet, "/api/products/low-stock", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "P-1")
}

func itoa(id int64) string {
	b, _ := json.Marshal(id)
	return string(b)
}
