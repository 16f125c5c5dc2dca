package api

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"shipping-decision-service/internal/api/handlers"
	"shipping-decision-service/internal/services"
)

// NewRouter wires HTTP handlers with their dependencies and returns an
// http.Handler. This is the API composition root (handlers stay unaware
// of concrete adapters).
func NewRouter(engine *services.Engine, logger *zap.Logger) http.Handler {
	mux := http.NewServeMux()
	validate := validator.New()

	healthHandler := &handlers.HealthHandler{Logger: logger}
	recommendationHandler := &handlers.RecommendationHandler{Engine: engine, Validate: validate, Logger: logger}
	predictionHandler := &handlers.PredictionHandler{Engine: engine, Validate: validate, Logger: logger}
	customsHandler := &handlers.CustomsHandler{Engine: engine, Validate: validate, Logger: logger}
	trackingHandler := &handlers.TrackingHandler{Engine: engine, Validate: validate, Logger: logger}

	mux.HandleFunc("GET /health", healthHandler.Health)
	mux.HandleFunc("POST /recommendations", recommendationHandler.Recommend)
	mux.HandleFunc("POST /predictions", predictionHandler.Predict)
	mux.HandleFunc("POST /customs/clearance", customsHandler.Clearance)
	mux.HandleFunc("GET /tracking/{carrier}/{number}", trackingHandler.Track)
	mux.HandleFunc("POST /tracking/batch", trackingHandler.TrackBatch)

	return requestIDMiddleware(loggingMiddleware(logger, mux))
}
