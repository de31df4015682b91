// Package errors provides structured error handling with i18n support.
package errors

import "net/http"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Synthesis errors
	CodeMissingRequiredField   Code = "MISSING_REQUIRED_FIELD"
	CodeInvalidTierData        Code = "INVALID_TIER_DATA"
	CodeValidationFailed       Code = "VALIDATION_FAILED"
	CodeIncompleteLocationData Code = "INCOMPLETE_LOCATION_DATA"
	CodeInvalidDateRange       Code = "INVALID_DATE_RANGE"
	CodeUnknownEnumValue       Code = "UNKNOWN_ENUM_VALUE"

	// The event switched structured data off. Not a defect.
	CodeStructuredDataDisabled Code = "STRUCTURED_DATA_DISABLED"

	// Cache errors. Never surfaced to callers.
	CodeCacheMiss Code = "CACHE_MISS"

	// Source errors
	CodeEventNotFound     Code = "EVENT_NOT_FOUND"
	CodeSourceUnavailable Code = "SOURCE_UNAVAILABLE"

	// Request errors
	CodeInvalidLocale Code = "INVALID_LOCALE"
)

// HTTPStatus maps domain codes to HTTP status codes.
func (c Code) HTTPStatus() int {
	switch c {
	// Unprocessable - the event data cannot yield a valid document
	case CodeMissingRequiredField,
		CodeInvalidTierData,
		CodeValidationFailed,
		CodeIncompleteLocationData,
		CodeInvalidDateRange,
		CodeUnknownEnumValue:
		return http.StatusUnprocessableEntity

	// BadRequest - caller input
	case CodeInvalidLocale:
		return http.StatusBadRequest

	// NotFound - event doesn't exist
	case CodeEventNotFound,
		CodeStructuredDataDisabled,
		CodeCacheMiss:
		return http.StatusNotFound

	case CodeSourceUnavailable:
		return http.StatusServiceUnavailable

	default:
		return http.StatusInternalServerError
	}
}

// Aborts reports whether the code marks a defect that stops document synthesis.
func (c Code) Aborts() bool {
	switch c {
	case CodeMissingRequiredField,
		CodeValidationFailed,
		CodeIncompleteLocationData,
		CodeInvalidDateRange,
		CodeUnknownEnumValue:
		return true
	default:
		return false
	}
}
