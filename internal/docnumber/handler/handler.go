package handler

import (
	"net/http"

	"github.com/fekuna/omnipos-stockflow-service/internal/docnumber"
	"github.com/fekuna/omnipos-stockflow-service/internal/docnumber/dto"
	"github.com/fekuna/omnipos-stockflow-service/internal/httpx"
	"github.com/fekuna/omnipos-stockflow-service/internal/platform/logger"
	"go.uber.org/zap"
)

type DocNumberHandler struct {
	uc     docnumber.UseCase
	logger logger.Logger
}

func NewDocNumberHandler(uc docnumber.UseCase, log logger.Logger) *DocNumberHandler {
	return &DocNumberHandler{uc: uc, logger: log}
}

// Allocate handles POST /api/document-numbers.
func (h *DocNumberHandler) Allocate(w http.ResponseWriter, r *http.Request) {
	var in dto.AllocateInput
	if err := httpx.Decode(r, &in); err != nil {
		httpx.WriteBadRequest(w, "invalid request body", err)
		return
	}
	num, err := h.uc.Allocate(r.Context(), docnumber.Kind(in.Kind))
	if err != nil {
		if httpx.WriteError(w, err) >= http.StatusInternalServerError {
			h.logger.Error("Failed to allocate document number", zap.String("kind", in.Kind), zap.Error(err))
		}
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, num)
}
