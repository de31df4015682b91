package errors

import (
	"github.com/louisbranch/eventld/internal/platform/errors/i18n"
)

// LocalizedMessage renders the user-facing message for err in locale.
// Errors outside the domain taxonomy render as CodeUnknown.
func LocalizedMessage(err error, locale string) string {
	code := CodeOf(err)
	if code == "" {
		return ""
	}
	if code == CodeCacheMiss {
		code = CodeUnknown
	}
	return i18n.GetCatalog(locale).Format(string(code), MetadataOf(err))
}
