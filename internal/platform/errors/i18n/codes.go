package i18n

// Error codes must match the codes defined in internal/platform/errors/codes.go.
// These are duplicated as strings to avoid an import cycle.
const (
	CodeUnknown                = "UNKNOWN"
	CodeMissingRequiredField   = "MISSING_REQUIRED_FIELD"
	CodeInvalidTierData        = "INVALID_TIER_DATA"
	CodeValidationFailed       = "VALIDATION_FAILED"
	CodeIncompleteLocationData = "INCOMPLETE_LOCATION_DATA"
	CodeInvalidDateRange       = "INVALID_DATE_RANGE"
	CodeUnknownEnumValue       = "UNKNOWN_ENUM_VALUE"
	CodeStructuredDataDisabled = "STRUCTURED_DATA_DISABLED"
	CodeEventNotFound          = "EVENT_NOT_FOUND"
	CodeSourceUnavailable      = "SOURCE_UNAVAILABLE"
	CodeInvalidLocale          = "INVALID_LOCALE"
)

// PublicCodes lists every code that can reach a caller and so needs a message.
var PublicCodes = []Code{
	CodeUnknown,
	CodeMissingRequiredField,
	CodeInvalidTierData,
	CodeValidationFailed,
	CodeIncompleteLocationData,
	CodeInvalidDateRange,
	CodeUnknownEnumValue,
	CodeStructuredDataDisabled,
	CodeEventNotFound,
	CodeSourceUnavailable,
	CodeInvalidLocale,
}
