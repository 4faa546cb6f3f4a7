package models

import "time"

// ResponseMetadata describes how a search response was produced.
type ResponseMetadata struct {
	SearchTimestamp                 time.Time `json:"search_timestamp"`
	ParserStrategy                  string    `json:"parser_strategy"`
	TotalServicesFoundBeforeFilters int       `json:"total_services_found_before_filtering"`
	LimitApplied                    int       `json:"limit_applied,omitempty"`
}

// BusSearchResponse is the final payload for a bus search.
type BusSearchResponse struct {
	Metadata  ResponseMetadata `json:"metadata"`
	FromPlace *PlaceInfo       `json:"from_place"`
	ToPlace   *PlaceInfo       `json:"to_place"`
	Services  []BusService     `json:"services"`
}

// ErrorResponse is the uniform error payload returned by the API.
type ErrorResponse struct {
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	RequestID string    `json:"request_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// HealthResponse is the health check payload.
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Version   string            `json:"version"`
	Uptime    time.Duration     `json:"uptime"`
	Checks    map[string]string `json:"checks,omitempty"`
}
