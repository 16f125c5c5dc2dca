package handlers

import (
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"shipping-decision-service/internal/api/dto"
	"shipping-decision-service/internal/domain"
	"shipping-decision-service/internal/services"
)

type TrackingHandler struct {
	Engine   *services.Engine
	Validate *validator.Validate
	Logger   *zap.Logger
}

// Track returns the canonicalized tracking state for one shipment.
func (h *TrackingHandler) Track(w http.ResponseWriter, r *http.Request) {
	carrier := strings.TrimSpace(r.PathValue("carrier"))
	trackingNumber := strings.TrimSpace(r.PathValue("number"))
	if carrier == "" || trackingNumber == "" {
		writeError(h.Logger, w, r, http.StatusBadRequest, "carrier and tracking number are required")
		return
	}

	info, err := h.Engine.TrackShipment(r.Context(), trackingNumber, carrier)
	if err != nil {
		h.Logger.Warn("tracking failed",
			zap.String("carrier", carrier),
			zap.String("tracking_number", trackingNumber),
			zap.Error(err),
		)
		status, msg := statusForError(err)
		writeError(h.Logger, w, r, status, msg)
		return
	}

	writeJSON(h.Logger, w, r, http.StatusOK, trackingToDTO(info))
}

// TrackBatch resolves many shipments in one call. Failures are reported
// per item; the call itself always returns 200.
func (h *TrackingHandler) TrackBatch(w http.ResponseWriter, r *http.Request) {
	var req dto.TrackingBatchRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(h.Logger, w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.Validate.Struct(req); err != nil {
		writeError(h.Logger, w, r, http.StatusBadRequest, validationMessage(err))
		return
	}

	refs := make([]domain.TrackingRef, 0, len(req.Shipments))
	for _, s := range req.Shipments {
		refs = append(refs, domain.TrackingRef{
			Carrier:        s.Carrier,
			TrackingNumber: s.TrackingNumber,
		})
	}

	results := h.Engine.TrackShipments(r.Context(), refs)

	res := dto.TrackingBatchResponse{Results: make([]dto.TrackingBatchItemResponse, 0, len(results))}
	for _, item := range results {
		out := dto.TrackingBatchItemResponse{
			Carrier:        item.Ref.Carrier,
			TrackingNumber: item.Ref.TrackingNumber,
		}
		if item.Err != nil {
			out.Error = item.Err.Error()
		} else if item.Info != nil {
			tracked := trackingToDTO(*item.Info)
			out.Tracking = &tracked
		}
		res.Results = append(res.Results, out)
	}

	writeJSON(h.Logger, w, r, http.StatusOK, res)
}
