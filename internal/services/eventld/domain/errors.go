package domain

import (
	"fmt"

	apperrors "github.com/louisbranch/eventld/internal/platform/errors"
)

// Warning records an optional element dropped during synthesis.
type Warning struct {
	Field  string         `json:"field"`
	Code   apperrors.Code `json:"code"`
	Reason string         `json:"reason,omitempty"`
	Value  string         `json:"value,omitempty"`
}

// String formats the warning as a log fragment.
func (w Warning) String() string {
	if w.Reason == "" {
		return fmt.Sprintf("field=%s code=%s", w.Field, w.Code)
	}
	return fmt.Sprintf("field=%s code=%s reason=%s", w.Field, w.Code, w.Reason)
}

// MissingRequiredField reports that field resolved to nothing.
func MissingRequiredField(field Field) error {
	return apperrors.WithMetadata(
		apperrors.CodeMissingRequiredField,
		fmt.Sprintf("missing required field %s", field),
		map[string]string{"Field": string(field)},
	)
}

// IncompleteLocationData reports an event with neither venue nor online URL.
func IncompleteLocationData(eventID string) error {
	return apperrors.WithMetadata(
		apperrors.CodeIncompleteLocationData,
		"event has neither a venue nor an online url",
		map[string]string{"EventID": eventID},
	)
}

// EventNotFound reports an unknown event id.
func EventNotFound(eventID string) error {
	return apperrors.WithMetadata(
		apperrors.CodeEventNotFound,
		fmt.Sprintf("event %s not found", eventID),
		map[string]string{"EventID": eventID},
	)
}

// StructuredDataDisabled reports an event whose structured data is switched off.
func StructuredDataDisabled(eventID string) error {
	return apperrors.WithMetadata(
		apperrors.CodeStructuredDataDisabled,
		fmt.Sprintf("structured data disabled for event %s", eventID),
		map[string]string{"EventID": eventID},
	)
}

// SourceUnavailable wraps an event source failure.
func SourceUnavailable(cause error) error {
	return apperrors.Wrap(apperrors.CodeSourceUnavailable, "event source unavailable", cause)
}

// InvalidLocale reports an unparseable locale tag.
func InvalidLocale(locale string, cause error) error {
	return apperrors.WrapWithMetadata(
		apperrors.CodeInvalidLocale,
		fmt.Sprintf("invalid locale %q", locale),
		map[string]string{"Locale": locale},
		cause,
	)
}
