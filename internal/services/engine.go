package services

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"shipping-decision-service/internal/domain"
	"shipping-decision-service/internal/platform/obs"
)

// Engine is the single entry point to the shipping decision engine.
// It composes quote aggregation, scoring, delivery prediction, customs
// resolution and tracking behind the four public operations consumed by
// the rest of the application. Construct it once at startup with
// injected adapters and pass it down explicitly.
type Engine struct {
	Aggregator *QuoteAggregator
	Predictor  *DeliveryPredictor
	Customs    *CustomsService
	Tracking   *TrackingService
	Logger     *zap.Logger
}

// GetShippingRecommendation picks the best carrier for a shipment given
// the shipper's priorities. It never returns a partial recommendation:
// either a full one or an error ("no carriers available" when every
// adapter failed). The selected quote's ETA is refined by the delivery
// predictor when exact-route history exists.
func (e *Engine) GetShippingRecommendation(
	ctx context.Context,
	origin, destination domain.Location,
	pkg domain.PackageInfo,
	priorities domain.ShippingPriorities,
) (_ domain.ShippingRecommendation, err error) {
	defer obs.Time(ctx, e.Logger, "engine.GetShippingRecommendation")(&err)

	if err := pkg.Validate(); err != nil {
		return domain.ShippingRecommendation{}, fmt.Errorf("get shipping recommendation: %w", err)
	}
	if err := priorities.Validate(); err != nil {
		return domain.ShippingRecommendation{}, fmt.Errorf("get shipping recommendation: %w", err)
	}

	quotes, err := e.Aggregator.GetAllQuotes(ctx, origin, destination, pkg)
	if err != nil {
		return domain.ShippingRecommendation{}, fmt.Errorf("get shipping recommendation: %w", err)
	}

	recommendation, err := SelectBest(quotes, priorities)
	if err != nil {
		return domain.ShippingRecommendation{}, fmt.Errorf("get shipping recommendation: %w", err)
	}

	route := domain.Route{Origin: origin, Destination: destination}
	prediction := e.Predictor.Predict(ctx, recommendation.Carrier, route, recommendation.EstimatedDeliveryDays)
	if prediction.Confidence > fallbackConfidence {
		recommendation.EstimatedDeliveryDays = prediction.EstimatedDays
	}

	return recommendation, nil
}

// PredictDeliveryTime estimates how long a carrier takes on a route.
// Advisory: always returns a value, never an error.
func (e *Engine) PredictDeliveryTime(ctx context.Context, carrier string, route domain.Route) domain.DeliveryPrediction {
	return e.Predictor.Predict(ctx, carrier, route, 0)
}

// HandleInternationalShipment resolves restrictions, duties and
// required documentation for a cross-border shipment. The three checks
// are independent and run concurrently. Restriction violations are
// returned as data; the caller decides whether to block the shipment.
func (e *Engine) HandleInternationalShipment(ctx context.Context, shipment domain.InternationalShipment) (_ domain.CustomsDocumentation, err error) {
	defer obs.Time(ctx, e.Logger, "engine.HandleInternationalShipment")(&err)

	if err := shipment.Validate(); err != nil {
		return domain.CustomsDocumentation{}, fmt.Errorf("handle international shipment: %w", err)
	}

	var (
		doc domain.CustomsDocumentation
		wg  sync.WaitGroup
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		doc.Restrictions = e.Customs.CheckRestrictions(shipment.Origin, shipment.Destination, shipment.PackageDetails)
	}()
	go func() {
		defer wg.Done()
		doc.DutyAmount, doc.Currency = e.Customs.CalculateDuties(shipment.Origin, shipment.Destination, shipment.DeclaredValue)
	}()
	go func() {
		defer wg.Done()
		doc.RequiredDocuments = e.Customs.GenerateDocumentation(
			shipment.Origin, shipment.Destination, shipment.PackageDetails, shipment.DeclaredValue,
		)
	}()
	wg.Wait()

	return doc, nil
}

// TrackShipment fetches canonicalized tracking state for one shipment.
func (e *Engine) TrackShipment(ctx context.Context, trackingNumber, carrier string) (domain.TrackingInfo, error) {
	return e.Tracking.Track(ctx, trackingNumber, carrier)
}

// TrackShipments resolves many shipments, failing per item.
func (e *Engine) TrackShipments(ctx context.Context, refs []domain.TrackingRef) []domain.TrackingResult {
	return e.Tracking.TrackBatch(ctx, refs)
}
