// Package offer maps ticket tiers onto schema.org Offer entries.
package offer

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/currency"

	apperrors "github.com/louisbranch/eventld/internal/platform/errors"
	"github.com/louisbranch/eventld/internal/services/eventld/domain"
	"github.com/louisbranch/eventld/internal/services/eventld/validate"
)

// GlobalTierID labels warnings about the event-wide fallback offer.
const GlobalTierID = "*"

// Offer is one validated offer. Price is already formatted with the currency scale.
type Offer struct {
	TierID       string
	Name         string
	Description  string
	Price        string
	Currency     string
	Availability domain.Availability
	URL          string
	ValidFrom    time.Time
	ValidThrough time.Time
}

// Input carries the event context offers inherit from.
type Input struct {
	Locale        string
	DefaultLocale string
	EventURL      string
	Zone          *time.Location
}

// Map converts tiers in order. Ignored tiers are skipped silently; invalid
// tiers are skipped with an INVALID_TIER_DATA warning. Sold-out tiers are kept.
func Map(tiers []domain.TicketTier, overrides domain.Overrides, in Input) ([]Offer, []domain.Warning) {
	m := mapper{overrides: overrides, in: in}
	var offers []Offer
	for _, tier := range tiers {
		tierOverride, _ := overrides.Tier(tier.ID)
		if tier.Ignore || tierOverride.Ignore {
			continue
		}
		offer, ok := m.mapTier(tier, tierOverride)
		if ok {
			offers = append(offers, offer)
		}
	}
	if len(offers) == 0 && overrides.HasOfferDefaults() {
		if offer, ok := m.global(); ok {
			offers = append(offers, offer)
		}
	}
	return offers, m.warnings
}

type mapper struct {
	overrides domain.Overrides
	in        Input
	warnings  []domain.Warning
}

func (m *mapper) mapTier(tier domain.TicketTier, tierOverride domain.TierOverride) (Offer, bool) {
	offer := Offer{TierID: tier.ID}

	rawCurrency := firstNonBlank(tierOverride.Currency, m.lookup(domain.FieldOfferCurrency), tier.Currency)
	if rawCurrency == "" {
		m.reject(tier.ID, "currency", "", "tier has no currency")
		return Offer{}, false
	}
	unit, err := validate.Currency(tierField(tier.ID, "currency"), rawCurrency)
	if err != nil {
		m.rejectErr(tier.ID, err)
		return Offer{}, false
	}
	offer.Currency = unit.String()

	price, ok := m.price(tier, tierOverride, unit)
	if !ok {
		return Offer{}, false
	}
	offer.Price = price

	availability, ok := m.availability(tier, tierOverride)
	if !ok {
		return Offer{}, false
	}
	offer.Availability = availability

	offer.URL = m.url(tier.ID, tierOverride.URL)
	offer.Name = firstNonBlank(tierOverride.Name, lookup(tier.Name, m.in.Locale, m.in.DefaultLocale))
	offer.Description = firstNonBlank(tierOverride.Description, lookup(tier.Description, m.in.Locale, m.in.DefaultLocale))
	offer.ValidFrom = m.window(
		tierField(tier.ID, "validFrom"), tier.ValidFrom,
		string(domain.FieldOfferValidFrom), m.lookup(domain.FieldOfferValidFrom),
	)
	offer.ValidThrough = m.window(tierField(tier.ID, "validThrough"), tier.ValidThrough, "", "")
	return offer, true
}

func (m *mapper) price(tier domain.TicketTier, tierOverride domain.TierOverride, unit currency.Unit) (string, bool) {
	field := tierField(tier.ID, "price")
	if raw := firstNonBlank(tierOverride.Price, m.lookup(domain.FieldOfferPrice)); raw != "" {
		minor, err := validate.ParseAmount(field, raw, unit)
		if err != nil {
			m.rejectErr(tier.ID, err)
			return "", false
		}
		return validate.FormatAmount(minor, unit), true
	}
	minor, err := validate.Amount(field, tier.Price)
	if err != nil {
		m.rejectErr(tier.ID, err)
		return "", false
	}
	return validate.FormatAmount(minor, unit), true
}

func (m *mapper) availability(tier domain.TicketTier, tierOverride domain.TierOverride) (domain.Availability, bool) {
	raw := firstNonBlank(tierOverride.Availability, m.lookup(domain.FieldOfferAvailability), string(tier.Availability))
	if raw == "" {
		return domain.AvailabilityInStock, true
	}
	availability, err := validate.Enum(tierField(tier.ID, "availability"), raw, domain.ParseAvailability)
	if err != nil {
		m.rejectErr(tier.ID, err)
		return "", false
	}
	return availability, true
}

// url walks tier override, event-wide override, event url. Invalid overrides
// are dropped with a warning and the walk continues.
func (m *mapper) url(tierID string, tierURL string) string {
	candidates := []struct {
		field string
		raw   string
	}{
		{field: tierField(tierID, "url"), raw: tierURL},
		{field: string(domain.FieldOfferURL), raw: m.lookup(domain.FieldOfferURL)},
	}
	for _, candidate := range candidates {
		if strings.TrimSpace(candidate.raw) == "" {
			continue
		}
		value, err := validate.URL(candidate.field, candidate.raw)
		if err != nil {
			m.warn(err)
			continue
		}
		return value
	}
	return m.in.EventURL
}

func (m *mapper) window(field, raw, fallbackField, fallback string) time.Time {
	if strings.TrimSpace(raw) == "" {
		field, raw = fallbackField, fallback
	}
	if strings.TrimSpace(raw) == "" {
		return time.Time{}
	}
	value, err := validate.Date(field, raw, m.in.Zone)
	if err != nil {
		m.warn(err)
		return time.Time{}
	}
	return value
}

// global builds the single fallback offer from event-wide overrides.
// It needs an explicit price; a tier-less event never defaults to free.
func (m *mapper) global() (Offer, bool) {
	if m.lookup(domain.FieldOfferPrice) == "" {
		m.reject(GlobalTierID, "price", "", "no event-wide price")
		return Offer{}, false
	}
	return m.mapTier(domain.TicketTier{ID: GlobalTierID}, domain.TierOverride{})
}

func (m *mapper) lookup(field domain.Field) string {
	value, _ := m.overrides.Lookup(field, "")
	return value
}

func (m *mapper) reject(tierID, field, value, detail string) {
	m.warnings = append(m.warnings, domain.Warning{
		Field:  tierField(tierID, field),
		Code:   apperrors.CodeInvalidTierData,
		Reason: detail,
		Value:  value,
	})
}

func (m *mapper) rejectErr(tierID string, err error) {
	var verr *validate.Error
	if !errors.As(err, &verr) {
		m.reject(tierID, "", "", err.Error())
		return
	}
	m.warnings = append(m.warnings, domain.Warning{
		Field:  verr.Field,
		Code:   apperrors.CodeInvalidTierData,
		Reason: string(verr.Reason),
		Value:  verr.Value,
	})
}

func (m *mapper) warn(err error) {
	var verr *validate.Error
	if !errors.As(err, &verr) {
		return
	}
	m.warnings = append(m.warnings, domain.Warning{
		Field:  verr.Field,
		Code:   verr.Code(),
		Reason: string(verr.Reason),
		Value:  verr.Value,
	})
}

func tierField(tierID, name string) string {
	if name == "" {
		return fmt.Sprintf("offers[%s]", tierID)
	}
	return fmt.Sprintf("offers[%s].%s", tierID, name)
}

func lookup(text domain.LocalizedText, locale, defaultLocale string) string {
	if value, ok := text.Lookup(locale); ok {
		return strings.TrimSpace(value)
	}
	value, _ := text.Lookup(defaultLocale)
	return strings.TrimSpace(value)
}

func firstNonBlank(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
