package models

import (
	"fmt"

	"tnstc-api/pkg/normalize"
)

// FallbackValue is substituted for required string fields whose source data
// is absent from both markup fragments.
const FallbackValue = "N/A"

// BusService is the canonical record for one bus service on a results page,
// regardless of which extraction strategy produced it.
type BusService struct {
	Operator       string   `json:"operator"`
	BusType        string   `json:"bus_type"`
	TripCode       string   `json:"trip_code"`
	RouteCode      string   `json:"route_code"`
	DepartureTime  string   `json:"departure_time"`
	ArrivalTime    string   `json:"arrival_time"`
	Duration       string   `json:"duration"`
	PriceInRs      int      `json:"price_in_rs"`
	SeatsAvailable int      `json:"seats_available"`
	ViaRoute       []string `json:"via_route,omitempty"`
	TotalKms       string   `json:"total_kms,omitempty"`
	ChildFare      string   `json:"child_fare"`
}

// Normalize validates the record in place and canonicalizes its fields:
// times must be 24-hour HH:MM, the duration is rewritten as decimal hours,
// price and seats must be non-negative, empty required strings fall back to
// FallbackValue and an absent child fare becomes "NA". A record failing any
// check must be dropped, never surfaced partially.
func (s *BusService) Normalize() error {
	if _, err := normalize.Time(s.DepartureTime); err != nil {
		return fmt.Errorf("departure_time: %w", err)
	}
	if _, err := normalize.Time(s.ArrivalTime); err != nil {
		return fmt.Errorf("arrival_time: %w", err)
	}

	duration, err := normalize.Duration(s.Duration)
	if err != nil {
		return fmt.Errorf("duration: %w", err)
	}
	s.Duration = duration

	if s.PriceInRs < 0 {
		return fmt.Errorf("price_in_rs must be non-negative, got %d", s.PriceInRs)
	}
	if s.SeatsAvailable < 0 {
		return fmt.Errorf("seats_available must be non-negative, got %d", s.SeatsAvailable)
	}

	s.Operator = orFallback(s.Operator)
	s.BusType = orFallback(s.BusType)
	s.TripCode = orFallback(s.TripCode)
	s.RouteCode = orFallback(s.RouteCode)

	if s.ChildFare == "" {
		s.ChildFare = "NA"
	}
	return nil
}

func orFallback(v string) string {
	if v == "" {
		return FallbackValue
	}
	return v
}
