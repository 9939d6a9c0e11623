package dto

import (
	"net/http"
	"strings"
)

// Error codes produced by the HTTP layer itself. Domain errors keep the code
// they were created with.

// General error codes
const (
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "INTERNAL_ERROR"
)

// Input error codes
const (
	// ErrCodeValidation is used when a request body or query fails binding rules
	ErrCodeValidation = "VALIDATION_ERROR"
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "BAD_REQUEST"
	// ErrCodeInvalidInput is used for invalid input data
	ErrCodeInvalidInput = "INVALID_INPUT"
	// ErrCodeInvalidJSON is used when JSON parsing fails
	ErrCodeInvalidJSON = "INVALID_JSON"
	// ErrCodeRequestTooLarge is used when the body exceeds the configured limit
	ErrCodeRequestTooLarge = "REQUEST_TOO_LARGE"
)

// Resource error codes
const (
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeAlreadyExists = "ALREADY_EXISTS"
	ErrCodeInvalidState  = "INVALID_STATE"
	ErrCodeForbidden     = "FORBIDDEN"
)

// Invoice error codes
const (
	ErrCodeClientRequired    = "CLIENT_REQUIRED"
	ErrCodeCompanyIncomplete = "COMPANY_INCOMPLETE"
	ErrCodeItemsRequired     = "ITEMS_REQUIRED"
	ErrCodeInvalidTemplate   = "INVALID_TEMPLATE"
)

// Export and sharing error codes
const (
	// ErrCodeExportBusy is used when another export of the same invoice holds the lock too long
	ErrCodeExportBusy = "EXPORT_BUSY"
	// ErrCodeExportFailed is used for every render, capture or assembly failure
	ErrCodeExportFailed = "EXPORT_FAILED"
	// ErrCodeUnsupportedApp is used for share links to an unknown payment app
	ErrCodeUnsupportedApp = "UNSUPPORTED_APP"
	// ErrCodeRateLimited is used when an owner exceeds the export rate
	ErrCodeRateLimited = "RATE_LIMITED"
)

// StatusClientClosedRequest is logged when the client went away before the
// response was written
const StatusClientClosedRequest = 499

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal: http.StatusInternalServerError,

	// Input errors -> 400 Bad Request
	ErrCodeValidation:      http.StatusBadRequest,
	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeInvalidInput:    http.StatusBadRequest,
	ErrCodeInvalidJSON:     http.StatusBadRequest,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,

	// Resource errors
	ErrCodeNotFound:      http.StatusNotFound,
	ErrCodeAlreadyExists: http.StatusConflict,
	ErrCodeInvalidState:  http.StatusUnprocessableEntity,

	// Invoice rules -> 400 Bad Request
	ErrCodeClientRequired:    http.StatusBadRequest,
	ErrCodeCompanyIncomplete: http.StatusBadRequest,
	ErrCodeItemsRequired:     http.StatusBadRequest,
	ErrCodeInvalidTemplate:   http.StatusBadRequest,

	ErrCodeExportBusy:     http.StatusConflict,
	ErrCodeExportFailed:   http.StatusInternalServerError,
	ErrCodeUnsupportedApp: http.StatusBadRequest,
	ErrCodeRateLimited:    http.StatusTooManyRequests,
}

// UserMessages replaces the domain message for codes whose details must not
// reach the client
var UserMessages = map[string]string{
	ErrCodeExportFailed: "failed to generate PDF, try again",
	ErrCodeInternal:     "An unexpected error occurred",
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Field rule codes (INVALID_*) are client errors; anything else unknown is a 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	if strings.HasPrefix(code, "INVALID_") {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// UserMessage returns the message shown to the client for code
func UserMessage(code, message string) string {
	if msg, ok := UserMessages[code]; ok {
		return msg
	}
	return message
}
