package resolve

import (
	"strings"

	"github.com/louisbranch/eventld/internal/services/eventld/domain"
)

// Step answers one level of the fallback chain for (field, locale).
type Step func(field domain.Field, locale string) (string, bool)

// Chain is an ordered list of steps; the first answer wins.
type Chain []Step

// First returns the first non-blank answer for (field, locale).
func (c Chain) First(field domain.Field, locale string) (string, bool) {
	for _, step := range c {
		if value, ok := step(field, locale); ok && strings.TrimSpace(value) != "" {
			return value, true
		}
	}
	return "", false
}

// NewChain builds the standard resolution order:
// override (field, locale), override (field, unscoped), record locale value,
// record default-locale value. Synthesized defaults are applied by the caller.
func NewChain(record domain.EventRecord, overrides domain.Overrides) Chain {
	return Chain{
		OverrideStep(overrides),
		UnscopedOverrideStep(overrides),
		RecordStep(record),
		DefaultLocaleStep(record),
	}
}

// OverrideStep reads locale-scoped overrides.
func OverrideStep(overrides domain.Overrides) Step {
	return func(field domain.Field, locale string) (string, bool) {
		if strings.TrimSpace(locale) == "" {
			return "", false
		}
		return overrides.Lookup(field, locale)
	}
}

// UnscopedOverrideStep reads overrides that apply to every locale.
func UnscopedOverrideStep(overrides domain.Overrides) Step {
	return func(field domain.Field, _ string) (string, bool) {
		return overrides.Lookup(field, "")
	}
}

// RecordStep reads the record value for locale.
func RecordStep(record domain.EventRecord) Step {
	return func(field domain.Field, locale string) (string, bool) {
		accessor, ok := recordFields[field]
		if !ok {
			return "", false
		}
		return accessor(record, locale)
	}
}

// DefaultLocaleStep reads the record value for the event's default locale.
func DefaultLocaleStep(record domain.EventRecord) Step {
	step := RecordStep(record)
	return func(field domain.Field, _ string) (string, bool) {
		if strings.TrimSpace(record.DefaultLocale) == "" {
			return "", false
		}
		return step(field, record.DefaultLocale)
	}
}

type recordAccessor func(record domain.EventRecord, locale string) (string, bool)

var recordFields = map[domain.Field]recordAccessor{
	domain.FieldName: func(r domain.EventRecord, locale string) (string, bool) {
		return r.Name.Lookup(locale)
	},
	domain.FieldDescription: func(r domain.EventRecord, locale string) (string, bool) {
		return r.Description.Lookup(locale)
	},
	domain.FieldImage: func(r domain.EventRecord, _ string) (string, bool) {
		return present(strings.Join(r.Images, "\n"))
	},
	domain.FieldURL:            plain(func(r domain.EventRecord) string { return r.URL }),
	domain.FieldStartDate:      plain(func(r domain.EventRecord) string { return r.Start }),
	domain.FieldEndDate:        plain(func(r domain.EventRecord) string { return r.End }),
	domain.FieldEventStatus:    plain(func(r domain.EventRecord) string { return string(r.Status) }),
	domain.FieldAttendanceMode: plain(func(r domain.EventRecord) string { return string(r.AttendanceMode) }),
	domain.FieldLocationName: func(r domain.EventRecord, locale string) (string, bool) {
		if r.Venue == nil {
			return "", false
		}
		return r.Venue.Name.Lookup(locale)
	},
	domain.FieldLocationStreet:     venue(func(a domain.PostalAddress) string { return a.Street }),
	domain.FieldLocationLocality:   venue(func(a domain.PostalAddress) string { return a.Locality }),
	domain.FieldLocationRegion:     venue(func(a domain.PostalAddress) string { return a.Region }),
	domain.FieldLocationPostalCode: venue(func(a domain.PostalAddress) string { return a.PostalCode }),
	domain.FieldLocationCountry:    venue(func(a domain.PostalAddress) string { return a.Country }),
	domain.FieldLocationOnlineURL:  plain(func(r domain.EventRecord) string { return r.OnlineURL }),
	domain.FieldOrganizerName: plain(func(r domain.EventRecord) string {
		if r.Organizer == nil {
			return ""
		}
		return r.Organizer.Name
	}),
	domain.FieldOrganizerURL: plain(func(r domain.EventRecord) string {
		if r.Organizer == nil {
			return ""
		}
		return r.Organizer.URL
	}),
}

func plain(get func(domain.EventRecord) string) recordAccessor {
	return func(r domain.EventRecord, _ string) (string, bool) {
		return present(get(r))
	}
}

func venue(get func(domain.PostalAddress) string) recordAccessor {
	return func(r domain.EventRecord, _ string) (string, bool) {
		if r.Venue == nil {
			return "", false
		}
		return present(get(r.Venue.Address))
	}
}

func present(value string) (string, bool) {
	if strings.TrimSpace(value) == "" {
		return "", false
	}
	return value, true
}
