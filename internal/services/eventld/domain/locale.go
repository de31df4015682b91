package domain

import (
	"strings"

	"golang.org/x/text/language"
)

// CanonicalLocale returns the canonical BCP 47 form of locale, or the
// trimmed input when it does not parse.
func CanonicalLocale(locale string) string {
	trimmed := strings.TrimSpace(locale)
	if trimmed == "" {
		return ""
	}
	tag, err := language.Parse(trimmed)
	if err != nil {
		return trimmed
	}
	return tag.String()
}

// BaseLanguage returns the ISO 639 language of locale, or "" when unknown.
func BaseLanguage(locale string) string {
	tag, err := language.Parse(strings.TrimSpace(locale))
	if err != nil {
		return ""
	}
	base, confidence := tag.Base()
	if confidence == language.No {
		return ""
	}
	return base.String()
}

// ParseLocale canonicalizes a caller-supplied locale tag.
func ParseLocale(locale string) (string, error) {
	tag, err := language.Parse(strings.TrimSpace(locale))
	if err != nil {
		return "", err
	}
	return tag.String(), nil
}
