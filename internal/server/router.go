// Package server maps the HTTP surface onto the domain handlers.
package server

import (
	"net/http"

	bomH "github.com/fekuna/omnipos-stockflow-service/internal/bom/handler"
	deliveryH "github.com/fekuna/omnipos-stockflow-service/internal/delivery/handler"
	docnumberH "github.com/fekuna/omnipos-stockflow-service/internal/docnumber/handler"
	productH "github.com/fekuna/omnipos-stockflow-service/internal/product/handler"
	purchaseH "github.com/fekuna/omnipos-stockflow-service/internal/purchase/handler"
	quotationH "github.com/fekuna/omnipos-stockflow-service/internal/quotation/handler"
	reservationH "github.com/fekuna/omnipos-stockflow-service/internal/reservation/handler"

	"github.com/fekuna/omnipos-stockflow-service/internal/auth"
	"github.com/fekuna/omnipos-stockflow-service/internal/httpx"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type Handlers struct {
	Product     *productH.ProductHandler
	Reservation *reservationH.ReservationHandler
	BOM         *bomH.BOMHandler
	Delivery    *deliveryH.DeliveryHandler
	DocNumber   *docnumberH.DocNumberHandler
	Purchase    *purchaseH.PurchaseHandler
	Quotation   *quotationH.QuotationHandler
}

type Options struct {
	AllowedOrigins []string
	// Health reports readiness; nil means always healthy.
	Health func(r *http.Request) error
}

func NewRouter(h *Handlers, opts Options) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", auth.HeaderUserID},
		AllowCredentials: true,
	}))
	r.Use(auth.Middleware)

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		if opts.Health != nil {
			if err := opts.Health(req); err != nil {
				httpx.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Get("/low-stock", h.Product.ListLowStock)
			r.Get("/{id}", h.Product.GetProduct)
			r.Get("/{id}/movements", h.Product.ListMovements)
			r.Post("/{id}/adjust", h.Product.AdjustStock)
		})

		r.Route("/reservations", func(r chi.Router) {
			r.Post("/", h.Reservation.Reserve)
			r.Post("/bulk", h.Reservation.BulkReserve)
			r.Put("/{id}", h.Reservation.Update)
			r.Delete("/{id}", h.Reservation.Cancel)
		})

		r.Route("/sales-orders/{id}", func(r chi.Router) {
			r.Get("/reservations", h.Reservation.ListBySalesOrder)
			r.Post("/recompute-status", h.Reservation.RecomputeStatus)
			r.Delete("/items/{productId}", h.Reservation.DeleteOrderItem)
		})

		r.Route("/boms", func(r chi.Router) {
			r.Post("/", h.BOM.Create)
			r.Put("/{id}", h.BOM.Rename)
			r.Put("/{id}/components", h.BOM.ReplaceComponents)
			r.Delete("/{id}", h.BOM.Delete)
			r.Get("/{id}/buildability", h.BOM.Buildability)
			r.Get("/{id}/preview", h.BOM.Preview)
			r.Post("/{id}/reserve", h.BOM.Reserve)
			r.Post("/{id}/produce", h.BOM.Produce)
			r.Post("/{id}/cancel-reserve", h.BOM.CancelReserve)
		})

		r.Post("/deliveries", h.Delivery.SendDelivery)
		r.Post("/document-pairs/{id}/void", h.Delivery.VoidPair)
		r.Post("/document-pairs/{id}/reprint", h.Delivery.MarkReprint)

		r.Post("/document-numbers", h.DocNumber.Allocate)

		r.Route("/purchase-orders", func(r chi.Router) {
			r.Post("/", h.Purchase.Create)
			r.Get("/{id}", h.Purchase.Get)
			r.Delete("/{id}", h.Purchase.Delete)
			r.Post("/{id}/items", h.Purchase.AddItem)
			r.Delete("/{id}/items/{itemId}", h.Purchase.RemoveItem)
			r.Post("/{id}/approve", h.Purchase.Approve)
			r.Post("/{id}/receive", h.Purchase.Receive)
		})

		r.Route("/quotations", func(r chi.Router) {
			r.Post("/", h.Quotation.Create)
			r.Get("/{id}", h.Quotation.Get)
			r.Post("/{id}/approve", h.Quotation.Approve)
			r.Post("/{id}/void", h.Quotation.Void)
		})
	})

	return r
}
