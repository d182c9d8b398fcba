package handler

import (
	"net/http"

	"github.com/fekuna/omnipos-stockflow-service/internal/delivery"
	"github.com/fekuna/omnipos-stockflow-service/internal/delivery/dto"
	"github.com/fekuna/omnipos-stockflow-service/internal/httpx"
	"github.com/fekuna/omnipos-stockflow-service/internal/platform/logger"
	"go.uber.org/zap"
)

type DeliveryHandler struct {
	uc     delivery.UseCase
	logger logger.Logger
}

func NewDeliveryHandler(uc delivery.UseCase, log logger.Logger) *DeliveryHandler {
	return &DeliveryHandler{uc: uc, logger: log}
}

// SendDelivery handles POST /api/deliveries.
func (h *DeliveryHandler) SendDelivery(w http.ResponseWriter, r *http.Request) {
	var in dto.SendInput
	if err := httpx.Decode(r, &in); err != nil {
		httpx.WriteBadRequest(w, "invalid request body", err)
		return
	}
	res, err := h.uc.SendDelivery(r.Context(), &in)
	if err != nil {
		h.fail(w, "SendDelivery", err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, res)
}

func (h *DeliveryHandler) VoidPair(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	pair, err := h.uc.VoidPair(r.Context(), id)
	if err != nil {
		h.fail(w, "VoidPair", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, pair)
}

func (h *DeliveryHandler) MarkReprint(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	pair, err := h.uc.MarkReprint(r.Context(), id)
	if err != nil {
		h.fail(w, "MarkReprint", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, pair)
}

func (h *DeliveryHandler) fail(w http.ResponseWriter, op string, err error) {
	if httpx.WriteError(w, err) >= http.StatusInternalServerError {
		h.logger.Error("Delivery request failed", zap.String("op", op), zap.Error(err))
	}
}
