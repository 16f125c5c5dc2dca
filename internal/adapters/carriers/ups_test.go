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

func upsFixture(t *testing.T, tokenCalls *atomic.Int32, handler http.HandlerFunc) *UPSAdapter {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/security/v1/oauth/token", func(w http.ResponseWriter, r *http.Request) {
		if tokenCalls != nil {
			tokenCalls.Add(1)
		}
		if r.Header.Get("Authorization") == "" {
			http.Error(w, "missing basic auth", http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"access_token": "tok-1", "expires_in": "3600"}`))
	})
	mux.HandleFunc("/", handler)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	adapter, err := NewUPSAdapter(config.CarrierConfig{
		BaseURL:      srv.URL,
		ClientID:     "client",
		ClientSecret: "secret",
	})
	if err != nil {
		t.Fatalf("new adapter: %v", err)
	}
	return adapter
}

func TestUPSGetQuoteParsesStringNumerics(t *testing.T) {
	var tokenCalls atomic.Int32
	adapter := upsFixture(t, &tokenCalls, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/rating/v1/Rate" {
			t.Fatalf("unexpected path %q", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer tok-1" {
			t.Fatalf("missing bearer token, got %q", r.Header.Get("Authorization"))
		}

		_, _ = w.Write([]byte(`{
			"RateResponse": {
				"RatedShipment": [{
					"TotalCharges": {"CurrencyCode": "USD", "MonetaryValue": "45.30"},
					"GuaranteedDelivery": {"BusinessDaysInTransit": "5"}
				}]
			}
		}`))
	})

	quote, err := adapter.GetQuote(context.Background(), quoteOrigin, quoteDestination, quotePackage)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if quote.Cost != 45.30 || quote.Currency != "USD" {
		t.Fatalf("cost = %v %s, want 45.30 USD", quote.Cost, quote.Currency)
	}
	if quote.TransitDays != 5 {
		t.Fatalf("transit days = %d, want 5", quote.TransitDays)
	}
	if quote.Reliability != upsDefaultReliability {
		t.Fatalf("reliability = %v, want %v", quote.Reliability, upsDefaultReliability)
	}

	// A second call reuses the cached token.
	if _, err := adapter.GetQuote(context.Background(), quoteOrigin, quoteDestination, quotePackage); err != nil {
		t.Fatalf("second call: %v", err)
	}
	if got := tokenCalls.Load(); got != 1 {
		t.Fatalf("token endpoint called %d times, want 1", got)
	}
}

func TestUPSGetQuoteDefaultsTransitDays(t *testing.T) {
	adapter := upsFixture(t, nil, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"RateResponse": {
				"RatedShipment": [{
					"TotalCharges": {"CurrencyCode": "USD", "MonetaryValue": "45.30"},
					"GuaranteedDelivery": {"BusinessDaysInTransit": ""}
				}]
			}
		}`))
	})

	quote, err := adapter.GetQuote(context.Background(), quoteOrigin, quoteDestination, quotePackage)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if quote.TransitDays != upsDefaultTransitDays {
		t.Fatalf("transit days = %d, want default %d", quote.TransitDays, upsDefaultTransitDays)
	}
}

func TestUPSGetQuoteUnparseableCharges(t *testing.T) {
	adapter := upsFixture(t, nil, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"RateResponse": {
				"RatedShipment": [{"TotalCharges": {"CurrencyCode": "USD", "MonetaryValue": "n/a"}}]
			}
		}`))
	})

	_, err := adapter.GetQuote(context.Background(), quoteOrigin, quoteDestination, quotePackage)
	if !domain.IsKind(err, domain.KindInvalidResponse) {
		t.Fatalf("err = %v, want invalid response", err)
	}
}

func TestUPSTokenRejection(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/security/v1/oauth/token", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid client", http.StatusUnauthorized)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	adapter, err := NewUPSAdapter(config.CarrierConfig{BaseURL: srv.URL, ClientID: "client", ClientSecret: "bad"})
	if err != nil {
		t.Fatalf("new adapter: %v", err)
	}

	_, err = adapter.GetQuote(context.Background(), quoteOrigin, quoteDestination, quotePackage)
	if !domain.IsAuthFailure(err) {
		t.Fatalf("err = %v, want auth failure", err)
	}
}

func TestUPSGetTracking(t *testing.T) {
	adapter := upsFixture(t, nil, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/track/v1/details/1Z999" {
			t.Fatalf("unexpected path %q", r.URL.Path)
		}
		if r.Header.Get("transId") == "" {
			t.Fatalf("missing transId header")
		}

		_, _ = w.Write([]byte(`{
			"trackResponse": {
				"shipment": [{
					"package": [{
						"currentStatus": {"type": "O", "description": "Out For Delivery"},
						"deliveryDate": [{"type": "SDD", "date": "20260804"}],
						"activity": [
							{
								"location": {"address": {"city": "PHOENIX"}},
								"status": {"type": "O", "description": "Out For Delivery"},
								"gmtDate": "20260804",
								"gmtTime": "08:15:00"
							},
							{
								"location": {"address": {"city": "LOUISVILLE"}},
								"status": {"type": "I", "description": "Departed from facility"},
								"gmtDate": "20260803",
								"gmtTime": "21:40:00"
							}
						]
					}]
				}]
			}
		}`))
	})

	info, err := adapter.GetTracking(context.Background(), "1Z999")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if info.Status != domain.StatusOutForDelivery {
		t.Fatalf("status = %q, want %q", info.Status, domain.StatusOutForDelivery)
	}
	if info.EstimatedArrival == nil {
		t.Fatalf("expected an estimated arrival")
	}
	if len(info.Events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(info.Events))
	}
	// Oldest first; current location follows the latest activity.
	if info.Events[0].Location != "LOUISVILLE" {
		t.Fatalf("events out of order: %+v", info.Events)
	}
	if info.CurrentLocation != "PHOENIX" {
		t.Fatalf("location = %q, want PHOENIX", info.CurrentLocation)
	}
}

func TestUPSGetTrackingNotFound(t *testing.T) {
	adapter := upsFixture(t, nil, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "tracking information unavailable", http.StatusNotFound)
	})

	_, err := adapter.GetTracking(context.Background(), "NOPE")
	if !domain.IsTrackingNotFound(err) {
		t.Fatalf("err = %v, want tracking not found", err)
	}
}
