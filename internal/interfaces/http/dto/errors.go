package dto

import "net/http"

// Error kind names, matching the closed taxonomy the domain reports.
const (
	KindConfigMissing       = "config_missing"
	KindBadCredentials      = "bad_credentials"
	KindTransportFailed     = "transport_failed"
	KindPlatformUnavailable = "platform_unavailable"
	KindRateLimited         = "rate_limited"
	KindOrderNotFound       = "order_not_found"
	KindAlreadyFulfilled    = "already_fulfilled"
	KindNothingToDo         = "nothing_to_do"
	KindValidationFailed    = "validation_failed"
	KindInternal            = "internal"
)

// kindHTTPStatus maps error kinds to HTTP status codes.
var kindHTTPStatus = map[string]int{
	KindConfigMissing:       http.StatusInternalServerError,
	KindBadCredentials:      http.StatusInternalServerError,
	KindTransportFailed:     http.StatusBadGateway,
	KindPlatformUnavailable: http.StatusBadGateway,
	KindRateLimited:         http.StatusServiceUnavailable,
	KindOrderNotFound:       http.StatusNotFound,
	KindAlreadyFulfilled:    http.StatusConflict,
	KindNothingToDo:         http.StatusConflict,
	KindValidationFailed:    http.StatusBadRequest,
	KindInternal:            http.StatusInternalServerError,
}

// HTTPStatus returns the status code for an error kind, defaulting to 500
// for unknown kinds.
func HTTPStatus(kind string) int {
	if status, ok := kindHTTPStatus[kind]; ok {
		return status
	}
	return http.StatusInternalServerError
}
