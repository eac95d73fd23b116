package dto

import (
	"net/http"
	"strings"
)

// Error codes produced by the HTTP layer itself. Domain errors keep their
// own codes, e.g. INVALID_PROJECT_CODE.
const (
	ErrCodeInternal           = "ERR_INTERNAL"
	ErrCodeValidation         = "ERR_VALIDATION"
	ErrCodeUnauthorized       = "ERR_UNAUTHORIZED"
	ErrCodeForbidden          = "ERR_FORBIDDEN"
	ErrCodeTokenExpired       = "ERR_TOKEN_EXPIRED"
	ErrCodeTokenInvalid       = "ERR_TOKEN_INVALID"
	ErrCodeNotFound           = "ERR_NOT_FOUND"
	ErrCodeConflict           = "ERR_CONFLICT"
	ErrCodeBadRequest         = "ERR_BAD_REQUEST"
	ErrCodeInvalidJSON        = "ERR_INVALID_JSON"
	ErrCodeTooLarge           = "ERR_REQUEST_TOO_LARGE"
	ErrCodeRateLimited        = "ERR_RATE_LIMITED"
	ErrCodeServiceUnavailable = "ERR_SERVICE_UNAVAILABLE"
)

// statusByCode lists the codes whose status cannot be read off their name
var statusByCode = map[string]int{
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeValidation:         http.StatusBadRequest,
	ErrCodeUnauthorized:       http.StatusUnauthorized,
	ErrCodeForbidden:          http.StatusForbidden,
	ErrCodeTokenExpired:       http.StatusUnauthorized,
	ErrCodeTokenInvalid:       http.StatusUnauthorized,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeConflict:           http.StatusConflict,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeInvalidJSON:        http.StatusBadRequest,
	ErrCodeTooLarge:           http.StatusRequestEntityTooLarge,
	ErrCodeRateLimited:        http.StatusTooManyRequests,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,

	// shared sentinels
	"NOT_FOUND":            http.StatusNotFound,
	"ALREADY_EXISTS":       http.StatusConflict,
	"INVALID_INPUT":        http.StatusBadRequest,
	"INVALID_STATE":        http.StatusUnprocessableEntity,
	"UNAUTHORIZED":         http.StatusUnauthorized,
	"FORBIDDEN":            http.StatusForbidden,
	"CONCURRENCY_CONFLICT": http.StatusConflict,
	"INTERNAL_ERROR":       http.StatusInternalServerError,
	"FAILED":               http.StatusInternalServerError,

	// identity
	"INVALID_CREDENTIALS":   http.StatusUnauthorized,
	"INVALID_TOKEN":         http.StatusUnauthorized,
	"INVALID_REFRESH_TOKEN": http.StatusUnauthorized,
	"INVALID_ACTION_TOKEN":  http.StatusUnauthorized,
	"TOKEN_EXPIRED":         http.StatusUnauthorized,
	"ACCOUNT_DEACTIVATED":   http.StatusForbidden,
	"ACCOUNT_PENDING":       http.StatusForbidden,
	"ACCESS_DENIED":         http.StatusForbidden,

	"UNKNOWN_MEASUREMENT":         http.StatusNotFound,
	"UNKNOWN_OFFER":               http.StatusNotFound,
	"UNKNOWN_ORGANISATION_ROR_ID": http.StatusNotFound,
	"UNKNOWN_BATCH":               http.StatusNotFound,
	"UNKNOWN_REQUEST":             http.StatusNotFound,
	"UNKNOWN_REQUEST_ID":          http.StatusNotFound,
	"ALREADY_PROCESSED":           http.StatusConflict,
	"INVALID_MEASUREMENT_SHEET":   http.StatusBadRequest,
}

// HTTPStatus maps an error code to its response status. Codes without an
// entry follow their name: *_NOT_FOUND is 404, *_EXISTS and *_IN_USE are
// 409, INVALID_* is 400, *_FAILED is 500 and anything else breaks a domain
// rule (422).
func HTTPStatus(code string) int {
	if status, ok := statusByCode[code]; ok {
		return status
	}
	switch {
	case strings.HasSuffix(code, "NOT_FOUND"):
		return http.StatusNotFound
	case strings.HasSuffix(code, "_EXISTS"), strings.HasSuffix(code, "_IN_USE"):
		return http.StatusConflict
	case strings.HasPrefix(code, "INVALID_"):
		return http.StatusBadRequest
	case strings.HasSuffix(code, "_FAILED"), strings.HasPrefix(code, "ERR_"):
		return http.StatusInternalServerError
	}
	return http.StatusUnprocessableEntity
}
