package handlers

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"shipping-decision-service/internal/api/dto"
	"shipping-decision-service/internal/domain"
	"shipping-decision-service/internal/services"
)

type RecommendationHandler struct {
	Engine   *services.Engine
	Validate *validator.Validate
	Logger   *zap.Logger
}

// Recommend quotes every configured carrier and returns the single best
// option for the shipment under the caller's priorities.
func (h *RecommendationHandler) Recommend(w http.ResponseWriter, r *http.Request) {
	var req dto.RecommendationRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(h.Logger, w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.Validate.Struct(req); err != nil {
		writeError(h.Logger, w, r, http.StatusBadRequest, validationMessage(err))
		return
	}

	priorities := domain.ShippingPriorities{
		Cost:        req.Priorities.Cost,
		Speed:       req.Priorities.Speed,
		Reliability: req.Priorities.Reliability,
	}

	rec, err := h.Engine.GetShippingRecommendation(
		r.Context(),
		locationFromDTO(req.Origin),
		locationFromDTO(req.Destination),
		packageFromDTO(req.Package),
		priorities,
	)
	if err != nil {
		h.Logger.Warn("recommendation failed", zap.Error(err))
		status, msg := statusForError(err)
		writeError(h.Logger, w, r, status, msg)
		return
	}

	writeJSON(h.Logger, w, r, http.StatusOK, dto.RecommendationResponse{
		Carrier:               rec.Carrier,
		Cost:                  rec.Cost,
		Currency:              rec.Currency,
		EstimatedDeliveryDays: rec.EstimatedDeliveryDays,
		Reliability:           rec.Reliability,
		Score:                 rec.Score,
	})
}
