package models

import (
	"fmt"
	"regexp"
)

var (
	placeIDPattern   = regexp.MustCompile(`^\d+$`)
	placeCodePattern = regexp.MustCompile(`^[A-Z]{3}$`)
)

// PlaceInfo holds the internal TNSTC identifiers resolved for a place name.
type PlaceInfo struct {
	ID   string `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}

// Validate checks the resolver invariants: a digits-only ID and a
// three-letter uppercase code.
func (p *PlaceInfo) Validate() error {
	if !placeIDPattern.MatchString(p.ID) {
		return fmt.Errorf("place id %q must only contain digits", p.ID)
	}
	if !placeCodePattern.MatchString(p.Code) {
		return fmt.Errorf("place code %q must be exactly three uppercase letters", p.Code)
	}
	return nil
}
