package carriers

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"shipping-decision-service/internal/config"
	"shipping-decision-service/internal/domain"
)

const (
	upsDefaultReliability = 0.90

	// Used when the rating response omits a guaranteed transit time.
	upsDefaultTransitDays = 4

	upsTokenSlack = 30 * time.Second
)

// UPSAdapter implements the CarrierAdapter port against the UPS rating
// and tracking APIs. Authentication is OAuth client-credentials with
// HTTP Basic on the token endpoint; the bearer token is cached and
// refreshed under a mutex. Every call carries a unique transaction id.
type UPSAdapter struct {
	session      *http.Client
	baseURL      string
	clientID     string
	clientSecret string

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

func NewUPSAdapter(cfg config.CarrierConfig) (*UPSAdapter, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, errors.New("new UPS adapter: client credentials are empty")
	}

	return &UPSAdapter{
		session:      &http.Client{Timeout: 10 * time.Second},
		baseURL:      cfg.BaseURL,
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
	}, nil
}

func (a *UPSAdapter) Name() string { return "UPS" }

// UPS reports expires_in as a string.
type upsTokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   string `json:"expires_in"`
}

func (a *UPSAdapter) token(ctx context.Context) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.accessToken != "" && time.Now().Before(a.tokenExpiry.Add(-upsTokenSlack)) {
		return a.accessToken, nil
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/security/v1/oauth/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", &domain.CarrierError{Carrier: a.Name(), Kind: domain.KindInvalidResponse, Message: "create token request: " + err.Error()}
	}
	basic := base64.StdEncoding.EncodeToString([]byte(a.clientID + ":" + a.clientSecret))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Basic "+basic)

	resp, err := doRequest(a.session, a.Name(), req, false)
	if err != nil {
		return "", err
	}

	var decoded upsTokenResponse
	if err := decodeJSON(resp, a.Name(), &decoded); err != nil {
		return "", err
	}
	if decoded.AccessToken == "" {
		return "", &domain.CarrierError{Carrier: a.Name(), Kind: domain.KindAuthFailure, Message: "token response contained no access token"}
	}

	expiresIn, err := strconv.Atoi(decoded.ExpiresIn)
	if err != nil || expiresIn <= 0 {
		expiresIn = 3600
	}

	a.accessToken = decoded.AccessToken
	a.tokenExpiry = time.Now().Add(time.Duration(expiresIn) * time.Second)
	return a.accessToken, nil
}

// UPS rating uses string-typed numerics throughout.
type upsRateRequest struct {
	RateRequest struct {
		Shipment struct {
			Shipper upsParty `json:"Shipper"`
			ShipTo  upsParty `json:"ShipTo"`
			Package struct {
				PackageWeight struct {
					UnitOfMeasurement struct {
						Code string `json:"Code"`
					} `json:"UnitOfMeasurement"`
					Weight string `json:"Weight"`
				} `json:"PackageWeight"`
				Dimensions struct {
					UnitOfMeasurement struct {
						Code string `json:"Code"`
					} `json:"UnitOfMeasurement"`
					Length string `json:"Length"`
					Width  string `json:"Width"`
					Height string `json:"Height"`
				} `json:"Dimensions"`
			} `json:"Package"`
		} `json:"Shipment"`
	} `json:"RateRequest"`
}

type upsParty struct {
	Address struct {
		City        string `json:"City"`
		PostalCode  string `json:"PostalCode"`
		CountryCode string `json:"CountryCode"`
	} `json:"Address"`
}

type upsRateResponse struct {
	RateResponse struct {
		RatedShipment []struct {
			TotalCharges struct {
				CurrencyCode  string `json:"CurrencyCode"`
				MonetaryValue string `json:"MonetaryValue"`
			} `json:"TotalCharges"`
			GuaranteedDelivery struct {
				BusinessDaysInTransit string `json:"BusinessDaysInTransit"`
			} `json:"GuaranteedDelivery"`
		} `json:"RatedShipment"`
	} `json:"RateResponse"`
}

// GetQuote requests a rate and maps it to a generic quote, parsing
// UPS's string-typed numerics at the boundary.
func (a *UPSAdapter) GetQuote(ctx context.Context, origin, destination domain.Location, pkg domain.PackageInfo) (domain.CarrierQuote, error) {
	var reqBody upsRateRequest
	shipment := &reqBody.RateRequest.Shipment
	shipment.Shipper.Address.City = origin.City
	shipment.Shipper.Address.PostalCode = origin.PostalCode
	shipment.Shipper.Address.CountryCode = origin.CountryCode
	shipment.ShipTo.Address.City = destination.City
	shipment.ShipTo.Address.PostalCode = destination.PostalCode
	shipment.ShipTo.Address.CountryCode = destination.CountryCode

	shipment.Package.PackageWeight.UnitOfMeasurement.Code = "KGS"
	shipment.Package.PackageWeight.Weight = strconv.FormatFloat(pkg.WeightKG, 'f', 2, 64)
	shipment.Package.Dimensions.UnitOfMeasurement.Code = "CM"
	shipment.Package.Dimensions.Length = strconv.FormatFloat(pkg.LengthCM, 'f', 0, 64)
	shipment.Package.Dimensions.Width = strconv.FormatFloat(pkg.WidthCM, 'f', 0, 64)
	shipment.Package.Dimensions.Height = strconv.FormatFloat(pkg.HeightCM, 'f', 0, 64)

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return domain.CarrierQuote{}, &domain.CarrierError{Carrier: a.Name(), Kind: domain.KindInvalidResponse, Message: "marshal rate request: " + err.Error()}
	}

	resp, err := a.doAuthorized(ctx, false, func(token string) (*http.Request, error) {
		return a.newBearerRequest(ctx, http.MethodPost, a.baseURL+"/api/rating/v1/Rate", bytes.NewReader(payload), token)
	})
	if err != nil {
		return domain.CarrierQuote{}, err
	}

	var decoded upsRateResponse
	if err := decodeJSON(resp, a.Name(), &decoded); err != nil {
		return domain.CarrierQuote{}, err
	}

	if len(decoded.RateResponse.RatedShipment) == 0 {
		return domain.CarrierQuote{}, &domain.CarrierError{Carrier: a.Name(), Kind: domain.KindInvalidResponse, Message: "rate response contained no rated shipments"}
	}
	rated := decoded.RateResponse.RatedShipment[0]

	cost, err := strconv.ParseFloat(rated.TotalCharges.MonetaryValue, 64)
	if err != nil || cost <= 0 {
		return domain.CarrierQuote{}, &domain.CarrierError{Carrier: a.Name(), Kind: domain.KindInvalidResponse, Message: "unparseable total charges " + strconv.Quote(rated.TotalCharges.MonetaryValue)}
	}

	days, err := strconv.Atoi(rated.GuaranteedDelivery.BusinessDaysInTransit)
	if err != nil || days <= 0 {
		days = upsDefaultTransitDays
	}

	return domain.CarrierQuote{
		Carrier:     a.Name(),
		Cost:        cost,
		Currency:    rated.TotalCharges.CurrencyCode,
		TransitDays: days,
		Trackable:   true,
		Reliability: upsDefaultReliability,
	}, nil
}

type upsTrackResponse struct {
	TrackResponse struct {
		Shipment []struct {
			Package []struct {
				CurrentStatus struct {
					Type        string `json:"type"`
					Description string `json:"description"`
				} `json:"currentStatus"`
				DeliveryDate []struct {
					Type string `json:"type"`
					Date string `json:"date"`
				} `json:"deliveryDate"`
				Activity []struct {
					Location struct {
						Address struct {
							City string `json:"city"`
						} `json:"address"`
					} `json:"location"`
					Status struct {
						Type        string `json:"type"`
						Description string `json:"description"`
					} `json:"status"`
					Date string `json:"gmtDate"`
					Time string `json:"gmtTime"`
				} `json:"activity"`
			} `json:"package"`
		} `json:"shipment"`
	} `json:"trackResponse"`
}

// UPS status type letters.
var upsStatusMap = map[string]domain.TrackingStatus{
	"m":  domain.StatusPending,
	"p":  domain.StatusInTransit,
	"i":  domain.StatusInTransit,
	"o":  domain.StatusOutForDelivery,
	"d":  domain.StatusDelivered,
	"x":  domain.StatusException,
	"rs": domain.StatusReturned,
}

// GetTracking fetches and canonicalizes shipment tracking state.
func (a *UPSAdapter) GetTracking(ctx context.Context, trackingNumber string) (domain.TrackingInfo, error) {
	resp, err := a.doAuthorized(ctx, true, func(token string) (*http.Request, error) {
		req, err := a.newBearerRequest(ctx, http.MethodGet, a.baseURL+"/api/track/v1/details/"+url.PathEscape(trackingNumber), nil, token)
		if err != nil {
			return nil, err
		}
		q := req.URL.Query()
		q.Set("locale", "en_US")
		q.Set("returnSignature", "false")
		req.URL.RawQuery = q.Encode()

		req.Header.Set("transId", uuid.New().String())
		req.Header.Set("transactionSrc", "shipping-decision-service")
		return req, nil
	})
	if err != nil {
		return domain.TrackingInfo{}, err
	}

	var decoded upsTrackResponse
	if err := decodeJSON(resp, a.Name(), &decoded); err != nil {
		return domain.TrackingInfo{}, err
	}

	if len(decoded.TrackResponse.Shipment) == 0 || len(decoded.TrackResponse.Shipment[0].Package) == 0 {
		return domain.TrackingInfo{}, &domain.CarrierError{Carrier: a.Name(), Kind: domain.KindTrackingNotFound, Message: "no shipment for " + trackingNumber}
	}
	upsPackage := decoded.TrackResponse.Shipment[0].Package[0]

	info := domain.TrackingInfo{
		Carrier:        a.Name(),
		TrackingNumber: trackingNumber,
		Status:         canonicalStatus(upsStatusMap, upsPackage.CurrentStatus.Type),
	}

	for _, dd := range upsPackage.DeliveryDate {
		if dd.Type == "DEL" || dd.Type == "SDD" {
			if eta := parseCarrierTime(formatUPSDate(dd.Date)); !eta.IsZero() {
				info.EstimatedArrival = &eta
			}
		}
	}

	// UPS returns newest activity first; canonical order is oldest first.
	for i := len(upsPackage.Activity) - 1; i >= 0; i-- {
		act := upsPackage.Activity[i]
		info.Events = append(info.Events, domain.TrackingEvent{
			Timestamp:   parseUPSActivityTime(act.Date, act.Time),
			Status:      canonicalStatus(upsStatusMap, act.Status.Type),
			Location:    act.Location.Address.City,
			Description: act.Status.Description,
		})
	}

	if n := len(info.Events); n > 0 {
		last := info.Events[n-1]
		info.LastUpdated = last.Timestamp
		info.CurrentLocation = last.Location
	}

	return info, nil
}

// formatUPSDate converts UPS's compact 20060102 date to ISO.
func formatUPSDate(d string) string {
	if len(d) != 8 {
		return d
	}
	return d[:4] + "-" + d[4:6] + "-" + d[6:]
}

func parseUPSActivityTime(date, clock string) time.Time {
	t, err := time.Parse("20060102 15:04:05", date+" "+clock)
	if err != nil {
		return parseCarrierTime(formatUPSDate(date))
	}
	return t
}

func (a *UPSAdapter) doAuthorized(ctx context.Context, tracking bool, makeReq func(token string) (*http.Request, error)) (*http.Response, error) {
	return doWithRetry(ctx, a.session, a.Name(), tracking, func() (*http.Request, error) {
		token, err := a.token(ctx)
		if err != nil {
			return nil, err
		}
		return makeReq(token)
	})
}

func (a *UPSAdapter) newBearerRequest(ctx context.Context, method, url string, body *bytes.Reader, token string) (*http.Request, error) {
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
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return req, nil
}
