package handler

import (
	"net/http"

	"github.com/fekuna/omnipos-stockflow-service/internal/httpx"
	"github.com/fekuna/omnipos-stockflow-service/internal/platform/logger"
	"github.com/fekuna/omnipos-stockflow-service/internal/purchase"
	"github.com/fekuna/omnipos-stockflow-service/internal/purchase/dto"
	"go.uber.org/zap"
)

type PurchaseHandler struct {
	uc     purchase.UseCase
	logger logger.Logger
}

func NewPurchaseHandler(uc purchase.UseCase, log logger.Logger) *PurchaseHandler {
	return &PurchaseHandler{uc: uc, logger: log}
}

func (h *PurchaseHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in dto.CreateInput
	if err := httpx.Decode(r, &in); err != nil {
		httpx.WriteBadRequest(w, "invalid request body", err)
		return
	}
	po, err := h.uc.Create(r.Context(), &in)
	if err != nil {
		h.fail(w, "Create", err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, po)
}

func (h *PurchaseHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	po, err := h.uc.Get(r.Context(), id)
	if err != nil {
		h.fail(w, "Get", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, po)
}

func (h *PurchaseHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	var in dto.ItemInput
	if err := httpx.Decode(r, &in); err != nil {
		httpx.WriteBadRequest(w, "invalid request body", err)
		return
	}
	item, err := h.uc.AddItem(r.Context(), id, &in)
	if err != nil {
		h.fail(w, "AddItem", err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, item)
}

func (h *PurchaseHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	itemID, err := httpx.IDParam(r, "itemId")
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	if err := h.uc.RemoveItem(r.Context(), id, itemID); err != nil {
		h.fail(w, "RemoveItem", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *PurchaseHandler) Approve(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	po, err := h.uc.Approve(r.Context(), id)
	if err != nil {
		h.fail(w, "Approve", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, po)
}

func (h *PurchaseHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

func (h *PurchaseHandler) Receive(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	var in dto.ReceiveInput
	if err := httpx.Decode(r, &in); err != nil {
		httpx.WriteBadRequest(w, "invalid request body", err)
		return
	}
	in.PurchaseOrderID = id
	res, err := h.uc.Receive(r.Context(), &in)
	if err != nil {
		h.fail(w, "Receive", err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, res)
}

func (h *PurchaseHandler) fail(w http.ResponseWriter, op string, err error) {
	if httpx.WriteError(w, err) >= http.StatusInternalServerError {
		h.logger.Error("Purchase order request failed", zap.String("op", op), zap.Error(err))
	}
}
