package carriers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"time"

	"shipping-decision-service/internal/config"
	"shipping-decision-service/internal/domain"
)

// Carrier-reported on-time rate used when the rate response does not
// carry one.
const dhlDefaultReliability = 0.95

// DHLAdapter implements the CarrierAdapter port against the DHL
// Express rating and unified tracking APIs. Authentication is a static
// API key header. Safe for concurrent use.
type DHLAdapter struct {
	session *http.Client
	baseURL string
	apiKey  string
}

func NewDHLAdapter(cfg config.CarrierConfig) (*DHLAdapter, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("new DHL adapter: api key is empty")
	}

	return &DHLAdapter{
		session: &http.Client{Timeout: 10 * time.Second},
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
	}, nil
}

func (a *DHLAdapter) Name() string { return "DHL" }

type dhlAddress struct {
	CityName    string `json:"cityName"`
	CountryCode string `json:"countryCode"`
	PostalCode  string `json:"postalCode"`
}

type dhlRateRequest struct {
	CustomerDetails struct {
		ShipperDetails  dhlAddress `json:"shipperDetails"`
		ReceiverDetails dhlAddress `json:"receiverDetails"`
	} `json:"customerDetails"`
	Packages []dhlPackage `json:"packages"`
}

type dhlPackage struct {
	Weight     float64 `json:"weight"`
	Dimensions struct {
		Length float64 `json:"length"`
		Width  float64 `json:"width"`
		Height float64 `json:"height"`
	} `json:"dimensions"`
}

type dhlRateResponse struct {
	Products []struct {
		TotalPrice []struct {
			Price    float64 `json:"price"`
			Currency string  `json:"priceCurrency"`
		} `json:"totalPrice"`
		DeliveryCapabilities struct {
			TotalTransitDays  int      `json:"totalTransitDays"`
			OnTimeReliability *float64 `json:"onTimeReliability"`
		} `json:"deliveryCapabilities"`
	} `json:"products"`
}

// GetQuote requests express product rates and maps the cheapest
// offered product to a generic quote.
func (a *DHLAdapter) GetQuote(ctx context.Context, origin, destination domain.Location, pkg domain.PackageInfo) (domain.CarrierQuote, error) {
	reqBody := dhlRateRequest{}
	reqBody.CustomerDetails.ShipperDetails = dhlAddress{
		CityName:    origin.City,
		CountryCode: origin.CountryCode,
		PostalCode:  origin.PostalCode,
	}
	reqBody.CustomerDetails.ReceiverDetails = dhlAddress{
		CityName:    destination.City,
		CountryCode: destination.CountryCode,
		PostalCode:  destination.PostalCode,
	}

	p := dhlPackage{Weight: pkg.WeightKG}
	p.Dimensions.Length = pkg.LengthCM
	p.Dimensions.Width = pkg.WidthCM
	p.Dimensions.Height = pkg.HeightCM
	reqBody.Packages = []dhlPackage{p}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return domain.CarrierQuote{}, &domain.CarrierError{Carrier: a.Name(), Kind: domain.KindInvalidResponse, Message: "marshal rate request: " + err.Error()}
	}

	resp, err := doWithRetry(ctx, a.session, a.Name(), false, func() (*http.Request, error) {
		return a.newRequest(ctx, http.MethodPost, a.baseURL+"/rates", bytes.NewReader(payload))
	})
	if err != nil {
		return domain.CarrierQuote{}, err
	}

	var decoded dhlRateResponse
	if err := decodeJSON(resp, a.Name(), &decoded); err != nil {
		return domain.CarrierQuote{}, err
	}

	return a.quoteFromProducts(decoded)
}

// quoteFromProducts validates the rate response at the adapter
// boundary and selects the cheapest product.
func (a *DHLAdapter) quoteFromProducts(decoded dhlRateResponse) (domain.CarrierQuote, error) {
	type offer struct {
		cost        float64
		currency    string
		transitDays int
		reliability float64
	}

	offers := make([]offer, 0, len(decoded.Products))
	for _, product := range decoded.Products {
		if len(product.TotalPrice) == 0 {
			continue
		}
		price := product.TotalPrice[0]
		if price.Price <= 0 || product.DeliveryCapabilities.TotalTransitDays <= 0 {
			continue
		}

		reliability := dhlDefaultReliability
		if r := product.DeliveryCapabilities.OnTimeReliability; r != nil && *r > 0 && *r <= 1 {
			reliability = *r
		}

		offers = append(offers, offer{
			cost:        price.Price,
			currency:    price.Currency,
			transitDays: product.DeliveryCapabilities.TotalTransitDays,
			reliability: reliability,
		})
	}

	if len(offers) == 0 {
		return domain.CarrierQuote{}, &domain.CarrierError{Carrier: a.Name(), Kind: domain.KindInvalidResponse, Message: "rate response contained no usable products"}
	}

	sort.Slice(offers, func(i, j int) bool { return offers[i].cost < offers[j].cost })
	best := offers[0]

	return domain.CarrierQuote{
		Carrier:     a.Name(),
		Cost:        best.cost,
		Currency:    best.currency,
		TransitDays: best.transitDays,
		Trackable:   true,
		Reliability: best.reliability,
	}, nil
}

type dhlTrackingResponse struct {
	Shipments []struct {
		Status struct {
			Timestamp   string `json:"timestamp"`
			StatusCode  string `json:"statusCode"`
			Description string `json:"description"`
			Location    struct {
				Address struct {
					AddressLocality string `json:"addressLocality"`
				} `json:"address"`
			} `json:"location"`
		} `json:"status"`
		EstimatedTimeOfDelivery string `json:"estimatedTimeOfDelivery"`
		Events                  []struct {
			Timestamp   string `json:"timestamp"`
			StatusCode  string `json:"statusCode"`
			Description string `json:"description"`
			Location    struct {
				Address struct {
					AddressLocality string `json:"addressLocality"`
				} `json:"address"`
			} `json:"location"`
		} `json:"events"`
	} `json:"shipments"`
}

// DHL unified tracking status vocabulary.
var dhlStatusMap = map[string]domain.TrackingStatus{
	"pre-transit": domain.StatusPending,
	"transit":     domain.StatusInTransit,
	"delivered":   domain.StatusDelivered,
	"failure":     domain.StatusException,
	"unknown":     domain.StatusUnknown,
}

// GetTracking fetches and canonicalizes shipment tracking state.
func (a *DHLAdapter) GetTracking(ctx context.Context, trackingNumber string) (domain.TrackingInfo, error) {
	resp, err := doWithRetry(ctx, a.session, a.Name(), true, func() (*http.Request, error) {
		req, err := a.newRequest(ctx, http.MethodGet, a.baseURL+"/track/shipments", nil)
		if err != nil {
			return nil, err
		}
		q := req.URL.Query()
		q.Set("trackingNumber", trackingNumber)
		req.URL.RawQuery = q.Encode()
		return req, nil
	})
	if err != nil {
		return domain.TrackingInfo{}, err
	}

	var decoded dhlTrackingResponse
	if err := decodeJSON(resp, a.Name(), &decoded); err != nil {
		return domain.TrackingInfo{}, err
	}

	if len(decoded.Shipments) == 0 {
		return domain.TrackingInfo{}, &domain.CarrierError{Carrier: a.Name(), Kind: domain.KindTrackingNotFound, Message: "no shipment for " + trackingNumber}
	}
	shipment := decoded.Shipments[0]

	info := domain.TrackingInfo{
		Carrier:         a.Name(),
		TrackingNumber:  trackingNumber,
		Status:          canonicalStatus(dhlStatusMap, shipment.Status.StatusCode),
		LastUpdated:     parseCarrierTime(shipment.Status.Timestamp),
		CurrentLocation: shipment.Status.Location.Address.AddressLocality,
	}

	if eta := parseCarrierTime(shipment.EstimatedTimeOfDelivery); !eta.IsZero() {
		info.EstimatedArrival = &eta
	}

	// DHL returns newest events first; canonical order is oldest first.
	for i := len(shipment.Events) - 1; i >= 0; i-- {
		ev := shipment.Events[i]
		info.Events = append(info.Events, domain.TrackingEvent{
			Timestamp:   parseCarrierTime(ev.Timestamp),
			Status:      canonicalStatus(dhlStatusMap, ev.StatusCode),
			Location:    ev.Location.Address.AddressLocality,
			Description: ev.Description,
		})
	}

	return info, nil
}

func (a *DHLAdapter) newRequest(ctx context.Context, method, url string, body *bytes.Reader) (*http.Request, error) {
	var req *http.Request
	var err error
	if body != nil {
		req, err = http.NewRequestWithContext(ctx, method, url, body)
	} else {
		req, err = http.NewRequestWithContext(ctx, method, url, nil)
	}
	if err != nil {
		return nil, &domain.CarrierError{Carrier: a.Name(), Kind: domain.KindInvalidResponse, Message: "create request: " + err.Error()}
	}

	req.Header.Set("DHL-API-Key", a.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}
