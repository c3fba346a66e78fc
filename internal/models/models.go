// Package models defines the data structures used throughout the application.
// It includes the marketplace records (items, users, swap requests), their enumerations,
// and the request and response payloads of the HTTP API.
package models

// ErrorResponse represents a structured error response payload.
// Errors carries the human-readable message, Kind the error category and Code the HTTP status.
type ErrorResponse struct {
	Errors string `json:"errors"`
	Kind   string `json:"kind,omitempty"`
	Code   int    `json:"code,omitempty"`
}
