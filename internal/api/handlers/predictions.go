package handlers

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"shipping-decision-service/internal/api/dto"
	"shipping-decision-service/internal/domain"
	"shipping-decision-service/internal/services"
)

type PredictionHandler struct {
	Engine   *services.Engine
	Validate *validator.Validate
	Logger   *zap.Logger
}

// Predict estimates how long a carrier takes on a route from recorded
// delivery history. The response is advisory and always succeeds.
func (h *PredictionHandler) Predict(w http.ResponseWriter, r *http.Request) {
	var req dto.PredictionRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(h.Logger, w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.Validate.Struct(req); err != nil {
		writeError(h.Logger, w, r, http.StatusBadRequest, validationMessage(err))
		return
	}

	route := domain.Route{
		Origin:      locationFromDTO(req.Origin),
		Destination: locationFromDTO(req.Destination),
	}
	prediction := h.Engine.PredictDeliveryTime(r.Context(), req.Carrier, route)

	writeJSON(h.Logger, w, r, http.StatusOK, dto.PredictionResponse{
		EstimatedDays: prediction.EstimatedDays,
		Confidence:    prediction.Confidence,
	})
}
