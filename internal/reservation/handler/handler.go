package handler

import (
	"net/http"

	"github.com/fekuna/omnipos-stockflow-service/internal/httpx"
	"github.com/fekuna/omnipos-stockflow-service/internal/platform/logger"
	"github.com/fekuna/omnipos-stockflow-service/internal/reservation"
	"github.com/fekuna/omnipos-stockflow-service/internal/reservation/dto"
	"go.uber.org/zap"
)

type ReservationHandler struct {
	uc     reservation.UseCase
	logger logger.Logger
}

func NewReservationHandler(uc reservation.UseCase, log logger.Logger) *ReservationHandler {
	return &ReservationHandler{uc: uc, logger: log}
}

func (h *ReservationHandler) Reserve(w http.ResponseWriter, r *http.Request) {
	var in dto.ReserveInput
	if err := httpx.Decode(r, &in); err != nil {
		httpx.WriteBadRequest(w, "invalid request body", err)
		return
	}
	res, err := h.uc.Reserve(r.Context(), &in)
	if err != nil {
		h.fail(w, "Reserve", err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, res)
}

func (h *ReservationHandler) BulkReserve(w http.ResponseWriter, r *http.Request) {
	var in dto.BulkReserveInput
	if err := httpx.Decode(r, &in); err != nil {
		httpx.WriteBadRequest(w, "invalid request body", err)
		return
	}
	out, err := h.uc.BulkReserve(r.Context(), &in)
	if err != nil {
		h.fail(w, "BulkReserve", err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, out)
}

func (h *ReservationHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	var in dto.UpdateInput
	if err := httpx.Decode(r, &in); err != nil {
		httpx.WriteBadRequest(w, "invalid request body", err)
		return
	}
	in.ReservationID = id
	res, err := h.uc.Update(r.Context(), &in)
	if err != nil {
		h.fail(w, "Update", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, res)
}

func (h *ReservationHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	if err := h.uc.Cancel(r.Context(), id); err != nil {
		h.fail(w, "Cancel", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ReservationHandler) ListBySalesOrder(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	items, err := h.uc.ListBySalesOrder(r.Context(), id)
	if err != nil {
		h.fail(w, "ListBySalesOrder", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, items)
}

func (h *ReservationHandler) RecomputeStatus(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	status, err := h.uc.RecomputeStatus(r.Context(), id)
	if err != nil {
		h.fail(w, "RecomputeStatus", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, dto.StatusResponse{SalesOrderID: id, Status: status})
}

func (h *ReservationHandler) DeleteOrderItem(w http.ResponseWriter, r *http.Request) {
	soID, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	productID, err := httpx.IDParam(r, "productId")
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	if err := h.uc.DeleteOrderItem(r.Context(), soID, productID); err != nil {
		h.fail(w, "DeleteOrderItem", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ReservationHandler) fail(w http.ResponseWriter, op string, err error) {
	if httpx.WriteError(w, err) >= http.StatusInternalServerError {
		h.logger.Error("Reservation request failed", zap.String("op", op), zap.Error(err))
	}
}
