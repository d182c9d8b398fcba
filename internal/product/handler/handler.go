package handler

import (
	"net/http"

	"github.com/fekuna/omnipos-stockflow-service/internal/httpx"
	"github.com/fekuna/omnipos-stockflow-service/internal/model"
	"github.com/fekuna/omnipos-stockflow-service/internal/platform/logger"
	"github.com/fekuna/omnipos-stockflow-service/internal/product"
	"github.com/fekuna/omnipos-stockflow-service/internal/product/dto"
	"go.uber.org/zap"
)

type ProductHandler struct {
	uc     product.UseCase
	logger logger.Logger
}

func NewProductHandler(uc product.UseCase, log logger.Logger) *ProductHandler {
	return &ProductHandler{uc: uc, logger: log}
}

func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	p, err := h.uc.GetProduct(r.Context(), id)
	if err != nil {
		h.fail(w, "GetProduct", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, p)
}

func (h *ProductHandler) ListLowStock(w http.ResponseWriter, r *http.Request) {
	page, err := httpx.QueryInt(r, "page", 1)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	pageSize, err := httpx.QueryInt(r, "page_size", 50)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	items, total, err := h.uc.ListLowStock(r.Context(), &dto.LowStockFilters{Page: page, PageSize: pageSize})
	if err != nil {
		h.fail(w, "ListLowStock", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, dto.ListResponse[model.Product]{Items: items, Total: total})
}

func (h *ProductHandler) ListMovements(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	page, _ := httpx.QueryInt(r, "page", 1)
	pageSize, _ := httpx.QueryInt(r, "page_size", 50)
	items, total, err := h.uc.ListMovements(r.Context(), &dto.MovementFilters{
		ProductID:    id,
		MovementType: model.MovementType(r.URL.Query().Get("type")),
		Page:         page,
		PageSize:     pageSize,
	})
	if err != nil {
		h.fail(w, "ListMovements", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, dto.ListResponse[model.StockMovement]{Items: items, Total: total})
}

func (h *ProductHandler) AdjustStock(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	var in dto.AdjustStockInput
	if err := httpx.Decode(r, &in); err != nil {
		httpx.WriteBadRequest(w, "invalid request body", err)
		return
	}
	in.ProductID = id
	p, err := h.uc.AdjustStock(r.Context(), &in)
	if err != nil {
		h.fail(w, "AdjustStock", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, p)
}

func (h *ProductHandler) fail(w http.ResponseWriter, op string, err error) {
	if httpx.WriteError(w, err) >= http.StatusInternalServerError {
		h.logger.Error("Product request failed", zap.String("op", op), zap.Error(err))
	}
}
