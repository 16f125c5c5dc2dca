package carriers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"shipping-decision-service/internal/config"
	"shipping-decision-service/internal/domain"
)

const shippoDefaultReliability = 0.88

// ShippoAdapter implements the CarrierAdapter port against the Shippo
// multi-carrier aggregator. A single shipment request yields rates
// from many underlying carriers; the adapter surfaces the cheapest as
// this carrier's quote. Authentication is a static token header.
type ShippoAdapter struct {
	session *http.Client
	baseURL string
	token   string
}

func NewShippoAdapter(cfg config.CarrierConfig) (*ShippoAdapter, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("new Shippo adapter: api token is empty")
	}

	return &ShippoAdapter{
		session: &http.Client{Timeout: 10 * time.Second},
		baseURL: cfg.BaseURL,
		token:   cfg.APIKey,
	}, nil
}

func (a *ShippoAdapter) Name() string { return "Shippo" }

type shippoAddress struct {
	City    string `json:"city"`
	Zip     string `json:"zip"`
	Country string `json:"country"`
}

type shippoParcel struct {
	Weight       string `json:"weight"`
	MassUnit     string `json:"mass_unit"`
	Length       string `json:"length"`
	Width        string `json:"width"`
	Height       string `json:"height"`
	DistanceUnit string `json:"distance_unit"`
}

type shippoShipmentRequest struct {
	AddressFrom shippoAddress  `json:"address_from"`
	AddressTo   shippoAddress  `json:"address_to"`
	Parcels     []shippoParcel `json:"parcels"`
	Async       bool           `json:"async"`
}

type shippoShipmentResponse struct {
	Rates []struct {
		Amount        string `json:"amount"`
		Currency      string `json:"currency"`
		EstimatedDays int    `json:"estimated_days"`
		Provider      string `json:"provider"`
	} `json:"rates"`
}

// GetQuote creates a synchronous shipment and picks the cheapest rate
// across all underlying providers.
func (a *ShippoAdapter) GetQuote(ctx context.Context, origin, destination domain.Location, pkg domain.PackageInfo) (domain.CarrierQuote, error) {
	reqBody := shippoShipmentRequest{
		AddressFrom: shippoAddress{City: origin.City, Zip: origin.PostalCode, Country: origin.CountryCode},
		AddressTo:   shippoAddress{City: destination.City, Zip: destination.PostalCode, Country: destination.CountryCode},
		Parcels: []shippoParcel{{
			Weight:       strconv.FormatFloat(pkg.WeightKG, 'f', 2, 64),
			MassUnit:     "kg",
			Length:       strconv.FormatFloat(pkg.LengthCM, 'f', 0, 64),
			Width:        strconv.FormatFloat(pkg.WidthCM, 'f', 0, 64),
			Height:       strconv.FormatFloat(pkg.HeightCM, 'f', 0, 64),
			DistanceUnit: "cm",
		}},
		Async: false,
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return domain.CarrierQuote{}, &domain.CarrierError{Carrier: a.Name(), Kind: domain.KindInvalidResponse, Message: "marshal shipment request: " + err.Error()}
	}

	resp, err := doWithRetry(ctx, a.session, a.Name(), false, func() (*http.Request, error) {
		return a.newRequest(ctx, http.MethodPost, a.baseURL+"/shipments/", bytes.NewReader(payload))
	})
	if err != nil {
		return domain.CarrierQuote{}, err
	}

	var decoded shippoShipmentResponse
	if err := decodeJSON(resp, a.Name(), &decoded); err != nil {
		return domain.CarrierQuote{}, err
	}

	best := domain.CarrierQuote{}
	for _, rate := range decoded.Rates {
		amount, err := strconv.ParseFloat(rate.Amount, 64)
		if err != nil || amount <= 0 || rate.EstimatedDays <= 0 {
			continue
		}
		if best.Cost == 0 || amount < best.Cost {
			best = domain.CarrierQuote{
				Carrier:     a.Name(),
				Cost:        amount,
				Currency:    rate.Currency,
				TransitDays: rate.EstimatedDays,
				Trackable:   true,
				Reliability: shippoDefaultReliability,
			}
		}
	}

	if best.Cost == 0 {
		return domain.CarrierQuote{}, &domain.CarrierError{Carrier: a.Name(), Kind: domain.KindInvalidResponse, Message: "shipment response contained no usable rates"}
	}
	return best, nil
}

type shippoTrackResponse struct {
	TrackingStatus struct {
		Status        string `json:"status"`
		StatusDetails string `json:"status_details"`
		StatusDate    string `json:"status_date"`
		Location      struct {
			City string `json:"city"`
		} `json:"location"`
	} `json:"tracking_status"`
	ETA             string `json:"eta"`
	TrackingHistory []struct {
		Status        string `json:"status"`
		StatusDetails string `json:"status_details"`
		StatusDate    string `json:"status_date"`
		Location      struct {
			City string `json:"city"`
		} `json:"location"`
	} `json:"tracking_history"`
}

// Shippo's cross-carrier status vocabulary.
var shippoStatusMap = map[string]domain.TrackingStatus{
	"pre_transit": domain.StatusPending,
	"transit":     domain.StatusInTransit,
	"delivered":   domain.StatusDelivered,
	"returned":    domain.StatusReturned,
	"failure":     domain.StatusException,
	"unknown":     domain.StatusUnknown,
}

// GetTracking fetches and canonicalizes shipment tracking state.
// History arrives oldest first, matching the canonical order.
func (a *ShippoAdapter) GetTracking(ctx context.Context, trackingNumber string) (domain.TrackingInfo, error) {
	resp, err := doWithRetry(ctx, a.session, a.Name(), true, func() (*http.Request, error) {
		return a.newRequest(ctx, http.MethodGet, a.baseURL+"/tracks/shippo/"+url.PathEscape(trackingNumber), nil)
	})
	if err != nil {
		return domain.TrackingInfo{}, err
	}

	var decoded shippoTrackResponse
	if err := decodeJSON(resp, a.Name(), &decoded); err != nil {
		return domain.TrackingInfo{}, err
	}

	if decoded.TrackingStatus.Status == "" {
		return domain.TrackingInfo{}, &domain.CarrierError{Carrier: a.Name(), Kind: domain.KindTrackingNotFound, Message: "no tracking status for " + trackingNumber}
	}

	info := domain.TrackingInfo{
		Carrier:         a.Name(),
		TrackingNumber:  trackingNumber,
		Status:          canonicalStatus(shippoStatusMap, decoded.TrackingStatus.Status),
		LastUpdated:     parseCarrierTime(decoded.TrackingStatus.StatusDate),
		CurrentLocation: decoded.TrackingStatus.Location.City,
	}

	if eta := parseCarrierTime(decoded.ETA); !eta.IsZero() {
		info.EstimatedArrival = &eta
	}

	for _, ev := range decoded.TrackingHistory {
		info.Events = append(info.Events, domain.TrackingEvent{
			Timestamp:   parseCarrierTime(ev.StatusDate),
			Status:      canonicalStatus(shippoStatusMap, ev.Status),
			Location:    ev.Location.City,
			Description: ev.StatusDetails,
		})
	}

	return info, nil
}

func (a *ShippoAdapter) newRequest(ctx context.Context, method, url string, body *bytes.Reader) (*http.Request, error) {
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

	req.Header.Set("Authorization", "ShippoToken "+a.token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}
