package models

import (
	"fmt"
	"strings"
	"time"

	"tnstc-api/pkg/normalize"
)

// DatePlaceholder is the literal the upstream booking form expects for an
// omitted return date.
const DatePlaceholder = "DD/MM/YYYY"

// SearchRequest defines the parameters for a bus search, including the
// optional post-extraction filters.
type SearchRequest struct {
	FromPlaceName string `json:"from_place_name" validate:"required"`
	ToPlaceName   string `json:"to_place_name" validate:"required"`
	OnwardDate    string `json:"onward_date" validate:"required"`
	ReturnDate    string `json:"return_date,omitempty"`

	MinPriceInRs *int `json:"min_price_in_rs,omitempty" validate:"omitempty,gte=0"`
	MaxPriceInRs *int `json:"max_price_in_rs,omitempty" validate:"omitempty,gte=0"`

	MinDepartureTime string `json:"min_departure_time,omitempty"`
	MaxDepartureTime string `json:"max_departure_time,omitempty"`

	AllowedBusTypes []string `json:"allowed_bus_types,omitempty"`
}

// Validate checks the field formats the struct tags cannot express: travel
// dates as DD/MM/YYYY and departure bounds as 24-hour HH:MM.
func (r *SearchRequest) Validate() error {
	if strings.TrimSpace(r.FromPlaceName) == "" || strings.TrimSpace(r.ToPlaceName) == "" {
		return fmt.Errorf("place names must not be empty")
	}

	if err := validateDate(r.OnwardDate); err != nil {
		return fmt.Errorf("onward_date: %w", err)
	}
	if r.ReturnDate != "" && r.ReturnDate != DatePlaceholder {
		if err := validateDate(r.ReturnDate); err != nil {
			return fmt.Errorf("return_date: %w", err)
		}
	}

	if r.MinDepartureTime != "" {
		if _, err := normalize.Time(r.MinDepartureTime); err != nil {
			return fmt.Errorf("min_departure_time: %w", err)
		}
	}
	if r.MaxDepartureTime != "" {
		if _, err := normalize.Time(r.MaxDepartureTime); err != nil {
			return fmt.Errorf("max_departure_time: %w", err)
		}
	}
	return nil
}

// Filter derives the read-only filter spec from the request, applying the
// documented defaults for omitted bounds.
func (r *SearchRequest) Filter() *SearchFilter {
	f := &SearchFilter{
		MinPrice:     100,
		MaxPrice:     1000,
		MinDeparture: "00:00",
		MaxDeparture: "23:59",
	}

	if r.MinPriceInRs != nil {
		f.MinPrice = *r.MinPriceInRs
	}
	if r.MaxPriceInRs != nil {
		f.MaxPrice = *r.MaxPriceInRs
	}
	if r.MinDepartureTime != "" {
		f.MinDeparture = r.MinDepartureTime
	}
	if r.MaxDepartureTime != "" {
		f.MaxDeparture = r.MaxDepartureTime
	}

	if len(r.AllowedBusTypes) > 0 {
		f.AllowedTypes = make(map[string]struct{}, len(r.AllowedBusTypes))
		for _, t := range r.AllowedBusTypes {
			f.AllowedTypes[strings.ToLower(t)] = struct{}{}
		}
	}
	return f
}

func validateDate(raw string) error {
	if _, err := time.Parse("02/01/2006", raw); err != nil {
		return fmt.Errorf("date %q must be DD/MM/YYYY", raw)
	}
	return nil
}

// SearchFilter is the resolved, read-only filter spec applied to extracted
// records. AllowedTypes holds case-folded type names; nil means all types
// pass.
type SearchFilter struct {
	MinPrice     int
	MaxPrice     int
	MinDeparture string
	MaxDeparture string
	AllowedTypes map[string]struct{}
}
