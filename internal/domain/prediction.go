package domain

// A single historical delivery fact for a (carrier, route) pair.
// Supplied by an external append-only data store.
type DeliveryHistory struct {
	Carrier    string
	Route      Route
	ActualDays float64
}

// Estimated delivery duration with a confidence value in [0,1].
// Derived on demand, never stored.
type DeliveryPrediction struct {
	EstimatedDays float64
	Confidence    float64
}
