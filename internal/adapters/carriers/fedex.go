package carriers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"shipping-decision-service/internal/config"
	"shipping-decision-service/internal/domain"
)

const fedexDefaultReliability = 0.92

// Refresh the OAuth token this long before its reported expiry.
const fedexTokenSlack = 30 * time.Second

// FedExAdapter implements the CarrierAdapter port against the FedEx
// rate and track APIs. Authentication is an OAuth client-credentials
// token cached with its expiry; refresh runs under a mutex so a burst
// of requests hitting an expired token triggers exactly one refresh.
type FedExAdapter struct {
	session      *http.Client
	baseURL      string
	clientID     string
	clientSecret string

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

func NewFedExAdapter(cfg config.CarrierConfig) (*FedExAdapter, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, errors.New("new FedEx adapter: client credentials are empty")
	}

	return &FedExAdapter{
		session:      &http.Client{Timeout: 10 * time.Second},
		baseURL:      cfg.BaseURL,
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
	}, nil
}

func (a *FedExAdapter) Name() string { return "FedEx" }

type fedexTokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// token returns a valid bearer token, refreshing it when expired.
func (a *FedExAdapter) token(ctx context.Context) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.accessToken != "" && time.Now().Before(a.tokenExpiry.Add(-fedexTokenSlack)) {
		return a.accessToken, nil
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", a.clientID)
	form.Set("client_secret", a.clientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/oauth/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", &domain.CarrierError{Carrier: a.Name(), Kind: domain.KindInvalidResponse, Message: "create token request: " + err.Error()}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := doRequest(a.session, a.Name(), req, false)
	if err != nil {
		return "", err
	}

	var decoded fedexTokenResponse
	if err := decodeJSON(resp, a.Name(), &decoded); err != nil {
		return "", err
	}
	if decoded.AccessToken == "" {
		return "", &domain.CarrierError{Carrier: a.Name(), Kind: domain.KindAuthFailure, Message: "token response contained no access token"}
	}

	a.accessToken = decoded.AccessToken
	a.tokenExpiry = time.Now().Add(time.Duration(decoded.ExpiresIn) * time.Second)
	return a.accessToken, nil
}

type fedexRateRequest struct {
	RequestedShipment struct {
		Shipper   fedexParty `json:"shipper"`
		Recipient fedexParty `json:"recipient"`

		RequestedPackageLineItems []fedexLineItem `json:"requestedPackageLineItems"`
	} `json:"requestedShipment"`
}

type fedexParty struct {
	Address struct {
		PostalCode  string `json:"postalCode"`
		CountryCode string `json:"countryCode"`
	} `json:"address"`
}

type fedexLineItem struct {
	Weight struct {
		Units string  `json:"units"`
		Value float64 `json:"value"`
	} `json:"weight"`
	Dimensions struct {
		Length float64 `json:"length"`
		Width  float64 `json:"width"`
		Height float64 `json:"height"`
		Units  string  `json:"units"`
	} `json:"dimensions"`
}

type fedexRateResponse struct {
	Output struct {
		RateReplyDetails []struct {
			ServiceType          string `json:"serviceType"`
			RatedShipmentDetails []struct {
				TotalNetCharge float64 `json:"totalNetCharge"`
				Currency       string  `json:"currency"`
			} `json:"ratedShipmentDetails"`
			Commit struct {
				TransitDays struct {
					MinimumTransitTime int `json:"minimumTransitTime"`
				} `json:"transitDays"`
			} `json:"commit"`
		} `json:"rateReplyDetails"`
	} `json:"output"`
}

// GetQuote requests rates for the shipment and maps the cheapest reply
// to a generic quote.
func (a *FedExAdapter) GetQuote(ctx context.Context, origin, destination domain.Location, pkg domain.PackageInfo) (domain.CarrierQuote, error) {
	var reqBody fedexRateRequest
	reqBody.RequestedShipment.Shipper.Address.PostalCode = origin.PostalCode
	reqBody.RequestedShipment.Shipper.Address.CountryCode = origin.CountryCode
	reqBody.RequestedShipment.Recipient.Address.PostalCode = destination.PostalCode
	reqBody.RequestedShipment.Recipient.Address.CountryCode = destination.CountryCode

	var item fedexLineItem
	item.Weight.Units = "KG"
	item.Weight.Value = pkg.WeightKG
	item.Dimensions.Length = pkg.LengthCM
	item.Dimensions.Width = pkg.WidthCM
	item.Dimensions.Height = pkg.HeightCM
	item.Dimensions.Units = "CM"
	reqBody.RequestedShipment.RequestedPackageLineItems = []fedexLineItem{item}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return domain.CarrierQuote{}, &domain.CarrierError{Carrier: a.Name(), Kind: domain.KindInvalidResponse, Message: "marshal rate request: " + err.Error()}
	}

	resp, err := a.doAuthorized(ctx, false, func(token string) (*http.Request, error) {
		return a.newBearerRequest(ctx, http.MethodPost, a.baseURL+"/rate/v1/rates/quotes", bytes.NewReader(payload), token)
	})
	if err != nil {
		return domain.CarrierQuote{}, err
	}

	var decoded fedexRateResponse
	if err := decodeJSON(resp, a.Name(), &decoded); err != nil {
		return domain.CarrierQuote{}, err
	}

	best := domain.CarrierQuote{}
	for _, detail := range decoded.Output.RateReplyDetails {
		if len(detail.RatedShipmentDetails) == 0 {
			continue
		}
		rated := detail.RatedShipmentDetails[0]
		days := detail.Commit.TransitDays.MinimumTransitTime
		if rated.TotalNetCharge <= 0 || days <= 0 {
			continue
		}
		if best.Cost == 0 || rated.TotalNetCharge < best.Cost {
			best = domain.CarrierQuote{
				Carrier:     a.Name(),
				Cost:        rated.TotalNetCharge,
				Currency:    rated.Currency,
				TransitDays: days,
				Trackable:   true,
				Reliability: fedexDefaultReliability,
			}
		}
	}

	if best.Cost == 0 {
		return domain.CarrierQuote{}, &domain.CarrierError{Carrier: a.Name(), Kind: domain.KindInvalidResponse, Message: "rate response contained no usable replies"}
	}
	return best, nil
}

type fedexTrackingNumberInfo struct {
	TrackingNumberInfo struct {
		TrackingNumber string `json:"trackingNumber"`
	} `json:"trackingNumberInfo"`
}

type fedexTrackRequest struct {
	IncludeDetailedScans bool                      `json:"includeDetailedScans"`
	TrackingInfo         []fedexTrackingNumberInfo `json:"trackingInfo"`
}

type fedexTrackResponse struct {
	Output struct {
		CompleteTrackResults []struct {
			TrackResults []struct {
				LatestStatusDetail struct {
					DerivedCode  string `json:"derivedCode"`
					Description  string `json:"description"`
					ScanLocation struct {
						City string `json:"city"`
					} `json:"scanLocation"`
				} `json:"latestStatusDetail"`
				DateAndTimes []struct {
					Type     string `json:"type"`
					DateTime string `json:"dateTime"`
				} `json:"dateAndTimes"`
				ScanEvents []struct {
					Date              string `json:"date"`
					EventDescription  string `json:"eventDescription"`
					DerivedStatusCode string `json:"derivedStatusCode"`
					ScanLocation      struct {
						City string `json:"city"`
					} `json:"scanLocation"`
				} `json:"scanEvents"`
			} `json:"trackResults"`
		} `json:"completeTrackResults"`
	} `json:"output"`
}

// FedEx derived status codes.
var fedexStatusMap = map[string]domain.TrackingStatus{
	"in": domain.StatusPending,
	"pu": domain.StatusInTransit,
	"it": domain.StatusInTransit,
	"od": domain.StatusOutForDelivery,
	"dl": domain.StatusDelivered,
	"de": domain.StatusException,
	"rs": domain.StatusReturned,
}

// GetTracking fetches and canonicalizes shipment tracking state.
func (a *FedExAdapter) GetTracking(ctx context.Context, trackingNumber string) (domain.TrackingInfo, error) {
	var reqBody fedexTrackRequest
	reqBody.IncludeDetailedScans = true
	reqBody.TrackingInfo = make([]fedexTrackingNumberInfo, 1)
	reqBody.TrackingInfo[0].TrackingNumberInfo.TrackingNumber = trackingNumber

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return domain.TrackingInfo{}, &domain.CarrierError{Carrier: a.Name(), Kind: domain.KindInvalidResponse, Message: "marshal track request: " + err.Error()}
	}

	resp, err := a.doAuthorized(ctx, true, func(token string) (*http.Request, error) {
		return a.newBearerRequest(ctx, http.MethodPost, a.baseURL+"/track/v1/trackingnumbers", bytes.NewReader(payload), token)
	})
	if err != nil {
		return domain.TrackingInfo{}, err
	}

	var decoded fedexTrackResponse
	if err := decodeJSON(resp, a.Name(), &decoded); err != nil {
		return domain.TrackingInfo{}, err
	}

	if len(decoded.Output.CompleteTrackResults) == 0 || len(decoded.Output.CompleteTrackResults[0].TrackResults) == 0 {
		return domain.TrackingInfo{}, &domain.CarrierError{Carrier: a.Name(), Kind: domain.KindTrackingNotFound, Message: "no track results for " + trackingNumber}
	}
	result := decoded.Output.CompleteTrackResults[0].TrackResults[0]

	info := domain.TrackingInfo{
		Carrier:         a.Name(),
		TrackingNumber:  trackingNumber,
		Status:          canonicalStatus(fedexStatusMap, result.LatestStatusDetail.DerivedCode),
		CurrentLocation: result.LatestStatusDetail.ScanLocation.City,
	}

	for _, dt := range result.DateAndTimes {
		if dt.Type == "ESTIMATED_DELIVERY" {
			if eta := parseCarrierTime(dt.DateTime); !eta.IsZero() {
				info.EstimatedArrival = &eta
			}
		}
	}

	// FedEx returns newest scans first; canonical order is oldest first.
	for i := len(result.ScanEvents) - 1; i >= 0; i-- {
		ev := result.ScanEvents[i]
		info.Events = append(info.Events, domain.TrackingEvent{
			Timestamp:   parseCarrierTime(ev.Date),
			Status:      canonicalStatus(fedexStatusMap, ev.DerivedStatusCode),
			Location:    ev.ScanLocation.City,
			Description: ev.EventDescription,
		})
	}

	if n := len(info.Events); n > 0 {
		info.LastUpdated = info.Events[n-1].Timestamp
	}

	return info, nil
}

// doAuthorized runs an authenticated call with retry; the token is
// re-read per attempt so a refresh mid-retry is picked up.
func (a *FedExAdapter) doAuthorized(ctx context.Context, tracking bool, makeReq func(token string) (*http.Request, error)) (*http.Response, error) {
	return doWithRetry(ctx, a.session, a.Name(), tracking, func() (*http.Request, error) {
		token, err := a.token(ctx)
		if err != nil {
			return nil, err
		}
		return makeReq(token)
	})
}

func (a *FedExAdapter) newBearerRequest(ctx context.Context, method, url string, body *bytes.Reader, token string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, &domain.CarrierError{Carrier: a.Name(), Kind: domain.KindInvalidResponse, Message: "create request: " + err.Error()}
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return req, nil
}
