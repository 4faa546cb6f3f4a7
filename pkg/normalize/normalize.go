// Package normalize converts raw textual fields scraped from TNSTC markup
// into their canonical shape. All functions are pure.
package normalize

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	// ErrInvalidDuration indicates a duration that is unparsable or not
	// strictly positive.
	ErrInvalidDuration = errors.New("invalid duration")

	// ErrInvalidTimeFormat indicates a time that is not 24-hour HH:MM.
	ErrInvalidTimeFormat = errors.New("invalid time format")
)

var timePattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

// Duration converts a raw journey duration into decimal hours with two
// fractional digits. Accepted inputs are "H:MM" (converted via H + MM/60)
// or a plain decimal string.
func Duration(raw string) (string, error) {
	s := strings.TrimSpace(raw)

	if strings.Contains(s, ":") {
		parts := strings.SplitN(s, ":", 2)
		hours, herr := strconv.Atoi(strings.TrimSpace(parts[0]))
		minutes, merr := strconv.Atoi(strings.TrimSpace(parts[1]))
		if herr != nil || merr != nil || hours < 0 || minutes < 0 || minutes > 59 {
			return "", fmt.Errorf("%w: %q", ErrInvalidDuration, raw)
		}

		total := float64(hours) + float64(minutes)/60
		if total <= 0 {
			return "", fmt.Errorf("%w: %q is not positive", ErrInvalidDuration, raw)
		}
		return strconv.FormatFloat(total, 'f', 2, 64), nil
	}

	value, err := strconv.ParseFloat(s, 64)
	if err != nil || value <= 0 {
		return "", fmt.Errorf("%w: %q", ErrInvalidDuration, raw)
	}
	return strconv.FormatFloat(value, 'f', 2, 64), nil
}

// Time validates that raw is a 24-hour HH:MM time and returns it unchanged.
func Time(raw string) (string, error) {
	if !timePattern.MatchString(raw) {
		return "", fmt.Errorf("%w: %q", ErrInvalidTimeFormat, raw)
	}
	return raw, nil
}

// TimeToMinutes converts a validated HH:MM time into a comparable integer
// of the form HH*100+MM. Returns -1 when raw is not a valid time.
func TimeToMinutes(raw string) int {
	if !timePattern.MatchString(raw) {
		return -1
	}
	value, err := strconv.Atoi(strings.Replace(raw, ":", "", 1))
	if err != nil {
		return -1
	}
	return value
}

// Price scans tokens for the first purely numeric token and returns it as an
// integer. Absence of a price is tolerated and yields 0.
func Price(tokens []string) int {
	for _, token := range tokens {
		if token == "" {
			continue
		}
		if value, err := strconv.Atoi(token); err == nil && allDigits(token) {
			return value
		}
	}
	return 0
}

// ViaRoute splits a "Via-A, B" style string into its ordered stop names.
// Returns nil when no "Via-" marker is present or no stops remain after
// trimming.
func ViaRoute(text string) []string {
	idx := strings.Index(text, "Via-")
	if idx < 0 {
		return nil
	}

	var stops []string
	for _, part := range strings.Split(text[idx+len("Via-"):], ",") {
		if stop := strings.TrimSpace(part); stop != "" {
			stops = append(stops, stop)
		}
	}
	return stops
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
