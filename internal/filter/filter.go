// Package filter applies the post-extraction filter spec to service records.
// Filtering is pure: it never mutates records and never reorders survivors.
package filter

import (
	"strings"

	"tnstc-api/pkg/models"
	"tnstc-api/pkg/normalize"
)

// Apply returns the records that satisfy every predicate in the spec, in
// their original order. Records whose departure time does not parse are
// excluded, since no time bound can be proven for them.
func Apply(services []models.BusService, spec *models.SearchFilter) []models.BusService {
	if spec == nil {
		return services
	}

	kept := make([]models.BusService, 0, len(services))
	for _, svc := range services {
		if matches(&svc, spec) {
			kept = append(kept, svc)
		}
	}
	return kept
}

func matches(svc *models.BusService, spec *models.SearchFilter) bool {
	if svc.PriceInRs < spec.MinPrice || svc.PriceInRs > spec.MaxPrice {
		return false
	}

	departure := normalize.TimeToMinutes(svc.DepartureTime)
	if departure < 0 {
		return false
	}
	if departure < normalize.TimeToMinutes(spec.MinDeparture) ||
		departure > normalize.TimeToMinutes(spec.MaxDeparture) {
		return false
	}

	if spec.AllowedTypes != nil {
		if _, ok := spec.AllowedTypes[strings.ToLower(svc.BusType)]; !ok {
			return false
		}
	}
	return true
}
