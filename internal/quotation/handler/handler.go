package handler

import (
	"context"
	"net/http"

	"github.com/fekuna/omnipos-stockflow-service/internal/httpx"
	"github.com/fekuna/omnipos-stockflow-service/internal/model"
	"github.com/fekuna/omnipos-stockflow-service/internal/platform/logger"
	"github.com/fekuna/omnipos-stockflow-service/internal/quotation"
	"github.com/fekuna/omnipos-stockflow-service/internal/quotation/dto"
	"go.uber.org/zap"
)

type QuotationHandler struct {
	uc     quotation.UseCase
	logger logger.Logger
}

func NewQuotationHandler(uc quotation.UseCase, log logger.Logger) *QuotationHandler {
	return &QuotationHandler{uc: uc, logger: log}
}

func (h *QuotationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in dto.CreateInput
	if err := httpx.Decode(r, &in); err != nil {
		httpx.WriteBadRequest(w, "invalid request body", err)
		return
	}
	qt, err := h.uc.Create(r.Context(), &in)
	if err != nil {
		h.fail(w, "Create", err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, qt)
}

func (h *QuotationHandler) Get(w http.ResponseWriter, r *http.Request) {
	h.byID(w, r, "Get", h.uc.Get)
}

func (h *QuotationHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.byID(w, r, "Approve", h.uc.Approve)
}

func (h *QuotationHandler) Void(w http.ResponseWriter, r *http.Request) {
	h.byID(w, r, "Void", h.uc.Void)
}

func (h *QuotationHandler) byID(w http.ResponseWriter, r *http.Request, op string, fn func(ctx context.Context, id int64) (*model.Quotation, error)) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	qt, err := fn(r.Context(), id)
	if err != nil {
		h.fail(w, op, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, qt)
}

func (h *QuotationHandler) fail(w http.ResponseWriter, op string, err error) {
	if httpx.WriteError(w, err) >= http.StatusInternalServerError {
		h.logger.Error("Quotation request failed", zap.String("op", op), zap.Error(err))
	}
}
