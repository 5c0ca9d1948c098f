// Package dto defines the JSON shapes the dashboard consumes and the mapping
// from error kinds to HTTP status codes.
package dto

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
	// Kind names the taxonomy entry, so the dashboard can branch without
	// parsing the message.
	Kind string `json:"kind,omitempty"`
}

// OKResponse acknowledges a mutation.
type OKResponse struct {
	OK            bool   `json:"ok"`
	FulfillmentID string `json:"fulfillment_id,omitempty"`
}

// NewErrorResponse creates an error response body.
func NewErrorResponse(kind, message string) ErrorResponse {
	return ErrorResponse{Error: message, Kind: kind}
}
