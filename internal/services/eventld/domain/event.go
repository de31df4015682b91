package domain

import (
	"sort"
	"strings"
)

// EventRecord is the host platform's view of one event.
//
// Start and End are ISO 8601 strings as stored upstream. Values without an
// offset inherit Timezone. Disabled switches structured data off for the
// event; the zero value leaves it on.
type EventRecord struct {
	ID             string
	DefaultLocale  string
	Name           LocalizedText
	Description    LocalizedText
	Start          string
	End            string
	Timezone       string
	ShowTimes      bool
	AttendanceMode AttendanceMode
	Venue          *Venue
	OnlineURL      string
	Organizer      *Organizer
	Performers     []Performer
	Images         []string
	URL            string
	Status         Status
	Version        string
	SubEvents      []SubEvent
	Disabled       bool
}

// Venue is the physical place an event happens at.
type Venue struct {
	Name    LocalizedText
	Address PostalAddress
	Geo     *Geo
}

// PostalAddress holds address components. Street may span several lines.
type PostalAddress struct {
	Street     string
	Locality   string
	Region     string
	PostalCode string
	Country    string
}

// IsZero reports whether no component is set.
func (a PostalAddress) IsZero() bool {
	return strings.TrimSpace(a.Street) == "" &&
		strings.TrimSpace(a.Locality) == "" &&
		strings.TrimSpace(a.Region) == "" &&
		strings.TrimSpace(a.PostalCode) == "" &&
		strings.TrimSpace(a.Country) == ""
}

// Geo is a WGS84 coordinate pair.
type Geo struct {
	Latitude  float64
	Longitude float64
}

// Organizer names the organization running the event.
type Organizer struct {
	Name string
	URL  string
}

// PerformerKind selects the schema.org performer type.
type PerformerKind string

const (
	PerformerPerson PerformerKind = "person"
	PerformerGroup  PerformerKind = "group"
)

// Performer is one entry of the ordered performer list.
type Performer struct {
	Name string
	URL  string
	Kind PerformerKind
}

// SubEvent is a dated child of a series event.
type SubEvent struct {
	ID           string
	Name         LocalizedText
	Start        string
	End          string
	LocationName string
}

// TicketTier is one price tier of an event. Price is in the currency's minor unit.
type TicketTier struct {
	ID           string
	Name         LocalizedText
	Description  LocalizedText
	Price        int64
	Currency     string
	Availability Availability
	ValidFrom    string
	ValidThrough string
	Ignore       bool
}

// LocalizedText maps locale tags to text.
type LocalizedText map[string]string

// Lookup returns the non-blank text for locale.
//
// Keys are compared exactly, then by canonical tag, then by base language
// so "de-AT" can read a "de" entry. Only the requested language matches.
func (t LocalizedText) Lookup(locale string) (string, bool) {
	if len(t) == 0 {
		return "", false
	}
	locale = strings.TrimSpace(locale)
	if locale == "" {
		return "", false
	}
	if value, ok := nonBlank(t[locale]); ok {
		return value, true
	}

	canonical := CanonicalLocale(locale)
	base := BaseLanguage(locale)
	keys := make([]string, 0, len(t))
	for key := range t {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if CanonicalLocale(key) == canonical {
			if value, ok := nonBlank(t[key]); ok {
				return value, true
			}
		}
	}
	if base == "" {
		return "", false
	}
	for _, key := range keys {
		if BaseLanguage(key) == base {
			if value, ok := nonBlank(t[key]); ok {
				return value, true
			}
		}
	}
	return "", false
}

// Clone returns an independent copy.
func (t LocalizedText) Clone() LocalizedText {
	if t == nil {
		return nil
	}
	out := make(LocalizedText, len(t))
	for key, value := range t {
		out[key] = value
	}
	return out
}

func nonBlank(value string) (string, bool) {
	if strings.TrimSpace(value) == "" {
		return "", false
	}
	return value, true
}
