// Package validate gates every value before it reaches a document.
//
// Validators reject; they never sanitize. Each returns the canonical value or
// an *Error naming the field and reason.
package validate

import (
	"fmt"
	"math"
	"strconv"
	"net/url"
	"strings"
	"time"

	apperrors "github.com/louisbranch/eventld/internal/platform/errors"
)

// Reason classifies a validation failure.
type Reason string

const (
	InvalidScheme       Reason = "InvalidScheme"
	MalformedDate       Reason = "MalformedDate"
	UnknownEnumValue    Reason = "UnknownEnumValue"
	EmptyRequiredText   Reason = "EmptyRequiredText"
	NegativeAmount      Reason = "NegativeAmount"
	UnsupportedCurrency Reason = "UnsupportedCurrency"
	MalformedAmount     Reason = "MalformedAmount"
	InvalidCoordinate   Reason = "InvalidCoordinate"
)

// Error is a rejected value.
type Error struct {
	Field  string
	Reason Reason
	Value  string
	Detail string
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("validate %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("validate %s: %s: %s", e.Field, e.Reason, e.Detail)
}

// Code maps the reason onto the platform error taxonomy.
func (e *Error) Code() apperrors.Code {
	if e.Reason == UnknownEnumValue {
		return apperrors.CodeUnknownEnumValue
	}
	return apperrors.CodeValidationFailed
}

// AsDomain wraps e into a platform error carrying Field, Reason and Value metadata.
func (e *Error) AsDomain() *apperrors.Error {
	return apperrors.WrapWithMetadata(e.Code(), "invalid "+e.Field, map[string]string{
		"Field":  e.Field,
		"Reason": string(e.Reason),
		"Value":  e.Value,
	}, e)
}

func fail(field string, reason Reason, value string, detail string) *Error {
	return &Error{Field: field, Reason: reason, Value: value, Detail: detail}
}

// URL accepts absolute http(s) URLs with a host and no user info.
func URL(field, raw string) (string, error) {
	value := strings.TrimSpace(raw)
	lower := strings.ToLower(value)
	if strings.HasPrefix(lower, "javascript:") || strings.HasPrefix(lower, "data:") {
		return "", fail(field, InvalidScheme, raw, "forbidden scheme")
	}
	parsed, err := url.Parse(value)
	if err != nil {
		return "", fail(field, InvalidScheme, raw, err.Error())
	}
	if !parsed.IsAbs() {
		return "", fail(field, InvalidScheme, raw, "url is not absolute")
	}
	switch strings.ToLower(parsed.Scheme) {
	case "http", "https":
	default:
		return "", fail(field, InvalidScheme, raw, "scheme "+parsed.Scheme+" is not http or https")
	}
	if parsed.Hostname() == "" {
		return "", fail(field, InvalidScheme, raw, "url has no host")
	}
	if parsed.User != nil {
		return "", fail(field, InvalidScheme, raw, "url carries credentials")
	}
	parsed.Scheme = strings.ToLower(parsed.Scheme)
	return parsed.String(), nil
}

var zonedLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04Z07:00",
}

var localLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02",
}

// Date parses an ISO 8601 date or date-time. An explicit offset is kept.
// Values without one inherit loc; with a nil loc they are rejected.
func Date(field, raw string, loc *time.Location) (time.Time, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return time.Time{}, fail(field, MalformedDate, raw, "empty date")
	}
	for _, layout := range zonedLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed, nil
		}
	}
	for _, layout := range localLayouts {
		if _, err := time.Parse(layout, value); err != nil {
			continue
		}
		if loc == nil {
			return time.Time{}, fail(field, MalformedDate, raw, "date has no timezone")
		}
		parsed, err := time.ParseInLocation(layout, value, loc)
		if err != nil {
			break
		}
		return parsed, nil
	}
	return time.Time{}, fail(field, MalformedDate, raw, "not an ISO 8601 date")
}

// DateRange rejects an end before start.
func DateRange(start, end time.Time) error {
	if end.Before(start) {
		return apperrors.WithMetadata(
			apperrors.CodeInvalidDateRange,
			fmt.Sprintf("end %s is before start %s", end.Format(time.RFC3339), start.Format(time.RFC3339)),
			map[string]string{
				"Start": start.Format(time.RFC3339),
				"End":   end.Format(time.RFC3339),
			},
		)
	}
	return nil
}

// Enum parses raw with parse, rejecting values it does not know.
func Enum[T ~string](field, raw string, parse func(string) (T, bool)) (T, error) {
	value, ok := parse(raw)
	if !ok {
		var zero T
		return zero, fail(field, UnknownEnumValue, raw, "")
	}
	return value, nil
}

// Text trims raw and rejects blank required text.
func Text(field, raw string, required bool) (string, error) {
	value := strings.TrimSpace(raw)
	if required && value == "" {
		return "", fail(field, EmptyRequiredText, raw, "")
	}
	return value, nil
}

// Location loads an IANA zone. An empty name means UTC.
func Location(field, name string) (*time.Location, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(trimmed)
	if err != nil {
		return nil, fail(field, MalformedDate, name, err.Error())
	}
	return loc, nil
}

// Geo accepts finite WGS84 coordinates: latitude in [-90, 90], longitude in
// [-180, 180].
func Geo(field string, latitude, longitude float64) error {
	value := strconv.FormatFloat(latitude, 'g', -1, 64) + "," + strconv.FormatFloat(longitude, 'g', -1, 64)
	switch {
	case math.IsNaN(latitude) || math.IsInf(latitude, 0) || math.IsNaN(longitude) || math.IsInf(longitude, 0):
		return fail(field, InvalidCoordinate, value, "coordinate is not finite")
	case latitude < -90 || latitude > 90:
		return fail(field, InvalidCoordinate, value, "latitude out of range")
	case longitude < -180 || longitude > 180:
		return fail(field, InvalidCoordinate, value, "longitude out of range")
	}
	return nil
}
