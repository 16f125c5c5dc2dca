package dto

import "time"

type LocationRequest struct {
	Street      string `json:"street"`
	City        string `json:"city"`
	CountryCode string `json:"country_code" validate:"required,len=2,alpha"`
	PostalCode  string `json:"postal_code" validate:"required"`
}

type PackageRequest struct {
	WeightKG float64 `json:"weight_kg" validate:"required,gt=0"`
	LengthCM float64 `json:"length_cm" validate:"required,gt=0"`
	WidthCM  float64 `json:"width_cm" validate:"required,gt=0"`
	HeightCM float64 `json:"height_cm" validate:"required,gt=0"`
	Fragile  bool    `json:"fragile"`
}

type PrioritiesRequest struct {
	Cost        float64 `json:"cost" validate:"gte=0"`
	Speed       float64 `json:"speed" validate:"gte=0"`
	Reliability float64 `json:"reliability" validate:"gte=0"`
}

type RecommendationRequest struct {
	Origin      LocationRequest   `json:"origin" validate:"required"`
	Destination LocationRequest   `json:"destination" validate:"required"`
	Package     PackageRequest    `json:"package" validate:"required"`
	Priorities  PrioritiesRequest `json:"priorities"`
}

type RecommendationResponse struct {
	Carrier               string  `json:"carrier"`
	Cost                  float64 `json:"cost"`
	Currency              string  `json:"currency"`
	EstimatedDeliveryDays float64 `json:"estimated_delivery_days"`
	Reliability           float64 `json:"reliability"`
	Score                 float64 `json:"score"`
}

type PredictionRequest struct {
	Carrier     string          `json:"carrier" validate:"required"`
	Origin      LocationRequest `json:"origin" validate:"required"`
	Destination LocationRequest `json:"destination" validate:"required"`
}

type PredictionResponse struct {
	EstimatedDays float64 `json:"estimated_days"`
	Confidence    float64 `json:"confidence"`
}

type CustomsClearanceRequest struct {
	Origin        LocationRequest `json:"origin" validate:"required"`
	Destination   LocationRequest `json:"destination" validate:"required"`
	Package       PackageRequest  `json:"package" validate:"required"`
	DeclaredValue float64         `json:"declared_value" validate:"required,gt=0"`
}

type RestrictionResponse struct {
	Code   string `json:"code"`
	Reason string `json:"reason"`
}

type CustomsClearanceResponse struct {
	RequiredDocuments []string              `json:"required_documents"`
	DutyAmount        float64               `json:"duty_amount"`
	Currency          string                `json:"currency"`
	Restrictions      []RestrictionResponse `json:"restrictions"`
	Permitted         bool                  `json:"permitted"`
}

type TrackingEventResponse struct {
	Timestamp   time.Time `json:"timestamp"`
	Status      string    `json:"status"`
	Location    string    `json:"location"`
	Description string    `json:"description"`
}

type TrackingResponse struct {
	Carrier          string                  `json:"carrier"`
	TrackingNumber   string                  `json:"tracking_number"`
	Status           string                  `json:"status"`
	EstimatedArrival *time.Time              `json:"estimated_arrival,omitempty"`
	LastUpdated      *time.Time              `json:"last_updated,omitempty"`
	CurrentLocation  string                  `json:"current_location"`
	Events           []TrackingEventResponse `json:"events"`
}

type TrackingBatchRequest struct {
	Shipments []TrackingRefRequest `json:"shipments" validate:"required,min=1,max=50,dive"`
}

type TrackingRefRequest struct {
	Carrier        string `json:"carrier" validate:"required"`
	TrackingNumber string `json:"tracking_number" validate:"required"`
}

type TrackingBatchItemResponse struct {
	Carrier        string            `json:"carrier"`
	TrackingNumber string            `json:"tracking_number"`
	Tracking       *TrackingResponse `json:"tracking,omitempty"`
	Error          string            `json:"error,omitempty"`
}

type TrackingBatchResponse struct {
	Results []TrackingBatchItemResponse `json:"results"`
}
