package carriers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"shipping-decision-service/internal/config"
	"shipping-decision-service/internal/domain"
)

var (
	quoteOrigin      = domain.Location{City: "Mumbai", CountryCode: "IN", PostalCode: "400001"}
	quoteDestination = domain.Location{City: "Delhi", CountryCode: "IN", PostalCode: "110001"}
	quotePackage     = domain.PackageInfo{WeightKG: 5, LengthCM: 30, WidthCM: 20, HeightCM: 15}
)

func dhlFixture(t *testing.T, handler http.Handler) *DHLAdapter {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	adapter, err := NewDHLAdapter(config.CarrierConfig{BaseURL: srv.URL, APIKey: "test-key"})
	if err != nil {
		t.Fatalf("new adapter: %v", err)
	}
	return adapter
}

func TestDHLGetQuotePicksCheapestProduct(t *testing.T) {
	adapter := dhlFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rates" {
			t.Fatalf("unexpected path %q", r.URL.Path)
		}
		if r.Header.Get("DHL-API-Key") != "test-key" {
			t.Fatalf("missing api key header")
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"products": [
				{
					"totalPrice": [{"price": 82.50, "priceCurrency": "USD"}],
					"deliveryCapabilities": {"totalTransitDays": 2, "onTimeReliability": 0.97}
				},
				{
					"totalPrice": [{"price": 50.00, "priceCurrency": "USD"}],
					"deliveryCapabilities": {"totalTransitDays": 3}
				}
			]
		}`))
	}))

	quote, err := adapter.GetQuote(context.Background(), quoteOrigin, quoteDestination, quotePackage)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if quote.Carrier != "DHL" {
		t.Fatalf("carrier = %q, want DHL", quote.Carrier)
	}
	if quote.Cost != 50 || quote.Currency != "USD" {
		t.Fatalf("cost = %v %s, want 50 USD (cheapest product)", quote.Cost, quote.Currency)
	}
	if quote.TransitDays != 3 {
		t.Fatalf("transit days = %d, want 3", quote.TransitDays)
	}
	// The cheaper product carries no reliability figure.
	if quote.Reliability != dhlDefaultReliability {
		t.Fatalf("reliability = %v, want default %v", quote.Reliability, dhlDefaultReliability)
	}
}

func TestDHLGetQuoteAuthFailure(t *testing.T) {
	adapter := dhlFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid api key", http.StatusUnauthorized)
	}))

	_, err := adapter.GetQuote(context.Background(), quoteOrigin, quoteDestination, quotePackage)
	if !domain.IsAuthFailure(err) {
		t.Fatalf("err = %v, want auth failure", err)
	}
}

func TestDHLGetQuoteNoUsableProducts(t *testing.T) {
	adapter := dhlFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"products": [{"totalPrice": [], "deliveryCapabilities": {"totalTransitDays": 0}}]}`))
	}))

	_, err := adapter.GetQuote(context.Background(), quoteOrigin, quoteDestination, quotePackage)
	if !domain.IsKind(err, domain.KindInvalidResponse) {
		t.Fatalf("err = %v, want invalid response", err)
	}
}

func TestDHLGetQuoteRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	adapter := dhlFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "upstream hiccup", http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{
			"products": [{
				"totalPrice": [{"price": 50.00, "priceCurrency": "USD"}],
				"deliveryCapabilities": {"totalTransitDays": 3}
			}]
		}`))
	}))

	quote, err := adapter.GetQuote(context.Background(), quoteOrigin, quoteDestination, quotePackage)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if quote.Cost != 50 {
		t.Fatalf("cost = %v, want 50 after retry", quote.Cost)
	}
	if got := calls.Load(); got != 2 {
		t.Fatalf("carrier called %d times, want 2", got)
	}
}

func TestDHLGetTracking(t *testing.T) {
	adapter := dhlFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/track/shipments" {
			t.Fatalf("unexpected path %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("trackingNumber"); got != "DHL123" {
			t.Fatalf("trackingNumber = %q, want DHL123", got)
		}

		_, _ = w.Write([]byte(`{
			"shipments": [{
				"status": {
					"timestamp": "2026-08-02T09:30:00",
					"statusCode": "transit",
					"description": "Shipment in transit",
					"location": {"address": {"addressLocality": "LEIPZIG"}}
				},
				"estimatedTimeOfDelivery": "2026-08-04",
				"events": [
					{
						"timestamp": "2026-08-02T09:30:00",
						"statusCode": "transit",
						"description": "Departed facility",
						"location": {"address": {"addressLocality": "LEIPZIG"}}
					},
					{
						"timestamp": "2026-08-01T18:00:00",
						"statusCode": "pre-transit",
						"description": "Shipment information received",
						"location": {"address": {"addressLocality": "MUMBAI"}}
					}
				]
			}]
		}`))
	}))

	info, err := adapter.GetTracking(context.Background(), "DHL123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if info.Status != domain.StatusInTransit {
		t.Fatalf("status = %q, want %q", info.Status, domain.StatusInTransit)
	}
	if info.CurrentLocation != "LEIPZIG" {
		t.Fatalf("location = %q, want LEIPZIG", info.CurrentLocation)
	}
	if info.EstimatedArrival == nil {
		t.Fatalf("expected an estimated arrival")
	}

	// Events come back newest first and must be canonicalized oldest first.
	if len(info.Events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(info.Events))
	}
	if info.Events[0].Status != domain.StatusPending || info.Events[1].Status != domain.StatusInTransit {
		t.Fatalf("events out of order: %+v", info.Events)
	}
}

func TestDHLGetTrackingNotFound(t *testing.T) {
	adapter := dhlFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"shipments": []}`))
	}))

	_, err := adapter.GetTracking(context.Background(), "NOPE")
	if !domain.IsTrackingNotFound(err) {
		t.Fatalf("err = %v, want tracking not found", err)
	}
}

func TestDHLGetTracking404(t *testing.T) {
	adapter := dhlFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))

	_, err := adapter.GetTracking(context.Background(), "NOPE")
	if !domain.IsTrackingNotFound(err) {
		t.Fatalf("err = %v, want tracking not found", err)
	}
}
