package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"shipping-decision-service/internal/domain"
)

func writeJSON(logger *zap.Logger, w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("response encode failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	}
}

func writeError(logger *zap.Logger, w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(logger, w, r, status, map[string]string{"error": msg})
}

// decodeBody parses a single JSON object into dst, rejecting unknown
// fields and trailing content.
func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		return errors.New("invalid json body")
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return errors.New("body must contain only one JSON object")
	}
	return nil
}

// validationMessage renders the first violated rule of a failed
// struct validation.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return "invalid field " + verrs[0].Namespace() + ": fails rule " + verrs[0].Tag()
	}
	return "invalid request"
}

// statusForError maps engine errors onto HTTP statuses. Anything not
// in the taxonomy is reported as a generic 500 without leaking detail.
func statusForError(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrNoCarriersAvailable):
		return http.StatusServiceUnavailable, "no carriers available"
	case domain.IsTrackingNotFound(err):
		return http.StatusNotFound, "tracking number not found"
	case domain.IsAuthFailure(err):
		return http.StatusBadGateway, "carrier authentication failed"
	}
	return http.StatusInternalServerError, "internal server error"
}
