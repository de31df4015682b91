package domain

import (
	"sort"
	"strings"
)

// Field names an overridable document field.
type Field string

const (
	FieldName               Field = "name"
	FieldDescription        Field = "description"
	FieldImage              Field = "image"
	FieldURL                Field = "url"
	FieldStartDate          Field = "startDate"
	FieldEndDate            Field = "endDate"
	FieldEventStatus        Field = "eventStatus"
	FieldAttendanceMode     Field = "eventAttendanceMode"
	FieldLocationName       Field = "location.name"
	FieldLocationStreet     Field = "location.streetAddress"
	FieldLocationLocality   Field = "location.addressLocality"
	FieldLocationRegion     Field = "location.addressRegion"
	FieldLocationPostalCode Field = "location.postalCode"
	FieldLocationCountry    Field = "location.addressCountry"
	FieldLocationOnlineURL  Field = "location.onlineUrl"
	FieldOrganizerName      Field = "organizer.name"
	FieldOrganizerURL       Field = "organizer.url"
	FieldPerformerName      Field = "performer.name"
	FieldOfferPrice         Field = "offers.price"
	FieldOfferCurrency      Field = "offers.priceCurrency"
	FieldOfferAvailability  Field = "offers.availability"
	FieldOfferURL           Field = "offers.url"
	FieldOfferValidFrom     Field = "offers.validFrom"
)

var knownFields = map[Field]struct{}{
	FieldName: {}, FieldDescription: {}, FieldImage: {}, FieldURL: {},
	FieldStartDate: {}, FieldEndDate: {}, FieldEventStatus: {}, FieldAttendanceMode: {},
	FieldLocationName: {}, FieldLocationStreet: {}, FieldLocationLocality: {},
	FieldLocationRegion: {}, FieldLocationPostalCode: {}, FieldLocationCountry: {},
	FieldLocationOnlineURL: {}, FieldOrganizerName: {}, FieldOrganizerURL: {},
	FieldPerformerName: {}, FieldOfferPrice: {}, FieldOfferCurrency: {},
	FieldOfferAvailability: {}, FieldOfferURL: {}, FieldOfferValidFrom: {},
}

// Known reports whether f is an overridable field.
func (f Field) Known() bool {
	_, ok := knownFields[f]
	return ok
}

// OverrideKey addresses one override. An empty Locale applies to every locale
// that has no scoped entry of its own.
type OverrideKey struct {
	Field  Field
	Locale string
}

// TierOverride replaces tier values. Blank strings leave the tier value in place.
type TierOverride struct {
	Price        string
	Currency     string
	Availability string
	URL          string
	Name         string
	Description  string
	Ignore       bool
}

// Overrides is the per-event override configuration.
type Overrides struct {
	Fields map[OverrideKey]string
	Tiers  map[string]TierOverride
}

// Set stores a field override, canonicalizing the locale.
func (o *Overrides) Set(field Field, locale string, value string) {
	if o.Fields == nil {
		o.Fields = map[OverrideKey]string{}
	}
	o.Fields[OverrideKey{Field: field, Locale: CanonicalLocale(locale)}] = value
}

// SetTier stores a tier override.
func (o *Overrides) SetTier(tierID string, override TierOverride) {
	if o.Tiers == nil {
		o.Tiers = map[string]TierOverride{}
	}
	o.Tiers[tierID] = override
}

// Lookup returns the non-blank override for (field, locale).
//
// Scoped entries match the way LocalizedText does: canonical tag first, then
// any entry of the same base language, in sorted order. An empty locale reads
// only the unscoped entry, and unscoped entries never answer a scoped lookup.
func (o Overrides) Lookup(field Field, locale string) (string, bool) {
	if len(o.Fields) == 0 {
		return "", false
	}
	canonical := CanonicalLocale(locale)
	if value, ok := o.Fields[OverrideKey{Field: field, Locale: canonical}]; ok && strings.TrimSpace(value) != "" {
		return value, true
	}
	base := BaseLanguage(canonical)
	if canonical == "" || base == "" {
		return "", false
	}

	var scoped []string
	for key := range o.Fields {
		if key.Field == field && key.Locale != "" && BaseLanguage(key.Locale) == base {
			scoped = append(scoped, key.Locale)
		}
	}
	sort.Strings(scoped)
	for _, candidate := range scoped {
		if value := o.Fields[OverrideKey{Field: field, Locale: candidate}]; strings.TrimSpace(value) != "" {
			return value, true
		}
	}
	return "", false
}

// Tier returns the override for tierID.
func (o Overrides) Tier(tierID string) (TierOverride, bool) {
	override, ok := o.Tiers[tierID]
	return override, ok
}

// HasOfferDefaults reports whether any event-wide offer override is set.
func (o Overrides) HasOfferDefaults() bool {
	for _, field := range []Field{FieldOfferPrice, FieldOfferCurrency, FieldOfferAvailability, FieldOfferURL, FieldOfferValidFrom} {
		if _, ok := o.Lookup(field, ""); ok {
			return true
		}
	}
	return false
}
