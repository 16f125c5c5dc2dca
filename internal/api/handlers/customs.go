package handlers

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"shipping-decision-service/internal/api/dto"
	"shipping-decision-service/internal/domain"
	"shipping-decision-service/internal/services"
)

type CustomsHandler struct {
	Engine   *services.Engine
	Validate *validator.Validate
	Logger   *zap.Logger
}

// Clearance resolves restrictions, duties and required documentation
// for a cross-border shipment. Restriction violations are reported in
// the body, not as an HTTP error.
func (h *CustomsHandler) Clearance(w http.ResponseWriter, r *http.Request) {
	var req dto.CustomsClearanceRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(h.Logger, w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.Validate.Struct(req); err != nil {
		writeError(h.Logger, w, r, http.StatusBadRequest, validationMessage(err))
		return
	}

	shipment := domain.InternationalShipment{
		Origin:         locationFromDTO(req.Origin),
		Destination:    locationFromDTO(req.Destination),
		PackageDetails: packageFromDTO(req.Package),
		DeclaredValue:  req.DeclaredValue,
	}

	doc, err := h.Engine.HandleInternationalShipment(r.Context(), shipment)
	if err != nil {
		h.Logger.Warn("customs clearance failed", zap.Error(err))
		status, msg := statusForError(err)
		writeError(h.Logger, w, r, status, msg)
		return
	}

	restrictions := make([]dto.RestrictionResponse, 0, len(doc.Restrictions))
	for _, violation := range doc.Restrictions {
		restrictions = append(restrictions, dto.RestrictionResponse{
			Code:   violation.Code,
			Reason: violation.Reason,
		})
	}

	writeJSON(h.Logger, w, r, http.StatusOK, dto.CustomsClearanceResponse{
		RequiredDocuments: doc.RequiredDocuments,
		DutyAmount:        doc.DutyAmount,
		Currency:          doc.Currency,
		Restrictions:      restrictions,
		Permitted:         doc.Permitted(),
	})
}
