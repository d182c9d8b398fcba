package handler

import (
	"net/http"

	"github.com/fekuna/omnipos-stockflow-service/internal/bom"
	"github.com/fekuna/omnipos-stockflow-service/internal/bom/dto"
	"github.com/fekuna/omnipos-stockflow-service/internal/httpx"
	"github.com/fekuna/omnipos-stockflow-service/internal/platform/logger"
	"go.uber.org/zap"
)

type BOMHandler struct {
	uc     bom.UseCase
	logger logger.Logger
}

func NewBOMHandler(uc bom.UseCase, log logger.Logger) *BOMHandler {
	return &BOMHandler{uc: uc, logger: log}
}

func (h *BOMHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in dto.CreateInput
	if err := httpx.Decode(r, &in); err != nil {
		httpx.WriteBadRequest(w, "invalid request body", err)
		return
	}
	res, err := h.uc.Create(r.Context(), &in)
	if err != nil {
		h.fail(w, "Create", err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, res)
}

func (h *BOMHandler) Rename(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	var in dto.RenameInput
	if err := httpx.Decode(r, &in); err != nil {
		httpx.WriteBadRequest(w, "invalid request body", err)
		return
	}
	b, err := h.uc.Rename(r.Context(), id, in.Name)
	if err != nil {
		h.fail(w, "Rename", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, b)
}

func (h *BOMHandler) ReplaceComponents(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	var in dto.ReplaceComponentsInput
	if err := httpx.Decode(r, &in); err != nil {
		httpx.WriteBadRequest(w, "invalid request body", err)
		return
	}
	b, err := h.uc.ReplaceComponents(r.Context(), id, in.Components)
	if err != nil {
		h.fail(w, "ReplaceComponents", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, b)
}

func (h *BOMHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	if err := h.uc.Delete(r.Context(), id); err != nil {
		h.fail(w, "Delete", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *BOMHandler) Buildability(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	res, err := h.uc.Buildability(r.Context(), id)
	if err != nil {
		h.fail(w, "Buildability", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, res)
}

func (h *BOMHandler) Preview(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	qty, err := httpx.QueryInt(r, "qty", 1)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	res, err := h.uc.Preview(r.Context(), id, int64(qty))
	if err != nil {
		h.fail(w, "Preview", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, res)
}

func (h *BOMHandler) Reserve(w http.ResponseWriter, r *http.Request) {
	id, in, ok := h.quantity(w, r)
	if !ok {
		return
	}
	if err := h.uc.Reserve(r.Context(), id, in.Qty); err != nil {
		h.fail(w, "Reserve", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"bom_id": id, "qty": in.Qty})
}

func (h *BOMHandler) Produce(w http.ResponseWriter, r *http.Request) {
	id, in, ok := h.quantity(w, r)
	if !ok {
		return
	}
	res, err := h.uc.Produce(r.Context(), id, in.Qty)
	if err != nil {
		h.fail(w, "Produce", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, res)
}

func (h *BOMHandler) CancelReserve(w http.ResponseWriter, r *http.Request) {
	id, in, ok := h.quantity(w, r)
	if !ok {
		return
	}
	if err := h.uc.CancelReserve(r.Context(), id, in.Qty); err != nil {
		h.fail(w, "CancelReserve", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"bom_id": id, "qty": in.Qty})
}

func (h *BOMHandler) quantity(w http.ResponseWriter, r *http.Request) (int64, dto.QuantityInput, bool) {
	var in dto.QuantityInput
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.WriteError(w, err)
		return 0, in, false
	}
	if err := httpx.Decode(r, &in); err != nil {
		httpx.WriteBadRequest(w, "invalid request body", err)
		return 0, in, false
	}
	return id, in, true
}

func (h *BOMHandler) fail(w http.ResponseWriter, op string, err error) {
	if httpx.WriteError(w, err) >= http.StatusInternalServerError {
		h.logger.Error("BOM request failed", zap.String("op", op), zap.Error(err))
	}
}
