package synthesis

import (
	"github.com/louisbranch/eventld/internal/services/eventld/assemble"
	"github.com/louisbranch/eventld/internal/services/eventld/domain"
	"github.com/louisbranch/eventld/internal/services/eventld/offer"
	"github.com/louisbranch/eventld/internal/services/eventld/resolve"
)

// Build produces the document for one locale without touching any cache.
// Warnings are returned on both the success and the abort path.
func Build(
	resolver resolve.Resolver,
	record domain.EventRecord,
	tiers []domain.TicketTier,
	overrides domain.Overrides,
	locale string,
) (domain.Document, []domain.Warning, error) {
	fields, err := resolver.Resolve(record, overrides, locale)
	warnings := append([]domain.Warning(nil), fields.Warnings...)
	if err != nil {
		return domain.Document{}, warnings, err
	}

	offers, offerWarnings := offer.Map(tiers, overrides, offer.Input{
		Locale:        locale,
		DefaultLocale: record.DefaultLocale,
		EventURL:      fields.URL,
		Zone:          fields.Zone,
	})
	warnings = append(warnings, offerWarnings...)

	event, err := assemble.Assemble(fields, offers)
	if err != nil {
		return domain.Document{}, warnings, err
	}
	body, err := assemble.Encode(event)
	if err != nil {
		return domain.Document{}, warnings, err
	}
	return domain.NewDocument(record.ID, locale, record.Version, body), warnings, nil
}
