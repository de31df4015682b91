// Package resolve turns an event record plus overrides into the validated
// field set for one locale.
package resolve

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	apperrors "github.com/louisbranch/eventld/internal/platform/errors"
	"github.com/louisbranch/eventld/internal/services/eventld/domain"
	"github.com/louisbranch/eventld/internal/services/eventld/validate"
)

// DefaultEventDuration is added to startDate when no endDate resolves.
const DefaultEventDuration = 2 * time.Hour

// Fields is the resolved, validated field set of one document.
type Fields struct {
	EventID     string
	Locale      string
	Name        string
	Description string
	Images      []string
	URL         string
	Start       time.Time
	End         time.Time
	Zone        *time.Location
	ShowTimes   bool
	Status      domain.Status
	Mode        domain.AttendanceMode
	Venue       *Venue
	OnlineURL   string
	Organizer   *domain.Organizer
	Performers  []domain.Performer
	SubEvents   []SubEvent
	Warnings    []domain.Warning
}

// Venue is the resolved physical location.
type Venue struct {
	Name    string
	Address domain.PostalAddress
	Geo     *domain.Geo
}

// SubEvent is a resolved child event. End is zero when unknown.
type SubEvent struct {
	ID           string
	Name         string
	Start        time.Time
	End          time.Time
	LocationName string
}

// Resolver applies the fallback chain to every document field.
type Resolver struct {
	defaultDuration time.Duration
}

// New returns a resolver using defaultDuration for synthesized end dates.
// Non-positive durations fall back to DefaultEventDuration.
func New(defaultDuration time.Duration) Resolver {
	if defaultDuration <= 0 {
		defaultDuration = DefaultEventDuration
	}
	return Resolver{defaultDuration: defaultDuration}
}

// DefaultDuration returns the configured endDate fallback.
func (r Resolver) DefaultDuration() time.Duration {
	if r.defaultDuration <= 0 {
		return DefaultEventDuration
	}
	return r.defaultDuration
}

// Resolve produces the field set for locale. Defects in required fields
// abort with a platform error; defects in optional fields are dropped and
// recorded in Fields.Warnings, which is populated on both paths.
func (r Resolver) Resolve(record domain.EventRecord, overrides domain.Overrides, locale string) (Fields, error) {
	chain := NewChain(record, overrides)
	fields := Fields{
		EventID:   record.ID,
		Locale:    locale,
		ShowTimes: record.ShowTimes,
	}

	zone, err := validate.Location("timezone", record.Timezone)
	if err != nil {
		return fields, domainError(err)
	}
	fields.Zone = zone

	if err := r.resolveName(&fields, chain, locale); err != nil {
		return fields, err
	}
	if err := r.resolveDates(&fields, chain, locale); err != nil {
		return fields, err
	}
	if err := resolveEnums(&fields, chain, locale); err != nil {
		return fields, err
	}
	if err := resolveLocation(&fields, chain, record, locale); err != nil {
		return fields, err
	}

	resolveDescription(&fields, chain, locale)
	resolveImages(&fields, chain, locale)
	fields.URL = optionalURL(&fields, chain, domain.FieldURL, locale)
	resolveOrganizer(&fields, chain, locale)
	resolvePerformers(&fields, chain, record, locale)
	r.resolveSubEvents(&fields, record, locale)
	return fields, nil
}

func (r Resolver) resolveName(fields *Fields, chain Chain, locale string) error {
	raw, _ := chain.First(domain.FieldName, locale)
	name, err := validate.Text(string(domain.FieldName), raw, true)
	if err != nil {
		return domain.MissingRequiredField(domain.FieldName)
	}
	fields.Name = name
	return nil
}

func (r Resolver) resolveDates(fields *Fields, chain Chain, locale string) error {
	rawStart, ok := chain.First(domain.FieldStartDate, locale)
	if !ok {
		return domain.MissingRequiredField(domain.FieldStartDate)
	}
	start, err := validate.Date(string(domain.FieldStartDate), rawStart, fields.Zone)
	if err != nil {
		return domainError(err)
	}
	fields.Start = start

	rawEnd, ok := chain.First(domain.FieldEndDate, locale)
	if !ok {
		fields.End = start.Add(r.DefaultDuration())
		return nil
	}
	end, err := validate.Date(string(domain.FieldEndDate), rawEnd, fields.Zone)
	if err != nil {
		return domainError(err)
	}
	if err := validate.DateRange(start, end); err != nil {
		return err
	}
	fields.End = end
	return nil
}

func resolveEnums(fields *Fields, chain Chain, locale string) error {
	fields.Status = domain.StatusScheduled
	if raw, ok := chain.First(domain.FieldEventStatus, locale); ok {
		status, err := validate.Enum(string(domain.FieldEventStatus), raw, domain.ParseStatus)
		if err != nil {
			return domainError(err)
		}
		fields.Status = status
	}
	if raw, ok := chain.First(domain.FieldAttendanceMode, locale); ok {
		mode, err := validate.Enum(string(domain.FieldAttendanceMode), raw, domain.ParseAttendanceMode)
		if err != nil {
			return domainError(err)
		}
		fields.Mode = mode
	}
	return nil
}

// resolveLocation narrows inputs by the attendance hint; the assembler picks
// the shape from what remains.
func resolveLocation(fields *Fields, chain Chain, record domain.EventRecord, locale string) error {
	if fields.Mode != domain.AttendanceOnline {
		fields.Venue = resolveVenue(fields, chain, record, locale)
	}
	if fields.Mode == domain.AttendancePhysical {
		return nil
	}
	raw, ok := chain.First(domain.FieldLocationOnlineURL, locale)
	if !ok {
		return nil
	}
	onlineURL, err := validate.URL(string(domain.FieldLocationOnlineURL), raw)
	if err != nil {
		return domainError(err)
	}
	fields.OnlineURL = onlineURL
	return nil
}

func resolveVenue(fields *Fields, chain Chain, record domain.EventRecord, locale string) *Venue {
	text := func(field domain.Field) string {
		value, _ := chain.First(field, locale)
		return strings.TrimSpace(value)
	}
	address := mergeAddress(domain.PostalAddress{
		Street:     text(domain.FieldLocationStreet),
		Locality:   text(domain.FieldLocationLocality),
		Region:     text(domain.FieldLocationRegion),
		PostalCode: text(domain.FieldLocationPostalCode),
		Country:    text(domain.FieldLocationCountry),
	})
	venue := &Venue{
		Name:    text(domain.FieldLocationName),
		Address: address,
	}
	if record.Venue != nil && record.Venue.Geo != nil {
		geo := *record.Venue.Geo
		if err := validate.Geo("location.geo", geo.Latitude, geo.Longitude); err != nil {
			fields.warn(err)
		} else {
			venue.Geo = &geo
		}
	}
	if venue.Name == "" && venue.Address.IsZero() && venue.Geo == nil {
		return nil
	}
	return venue
}

func resolveDescription(fields *Fields, chain Chain, locale string) {
	raw, ok := chain.First(domain.FieldDescription, locale)
	if !ok {
		return
	}
	fields.Description = PlainText(raw)
}

func resolveImages(fields *Fields, chain Chain, locale string) {
	raw, ok := chain.First(domain.FieldImage, locale)
	if !ok {
		return
	}
	for idx, candidate := range strings.Fields(raw) {
		image, err := validate.URL(fmt.Sprintf("image[%d]", idx), candidate)
		if err != nil {
			fields.warn(err)
			continue
		}
		fields.Images = append(fields.Images, image)
	}
}

func optionalURL(fields *Fields, chain Chain, field domain.Field, locale string) string {
	raw, ok := chain.First(field, locale)
	if !ok {
		return ""
	}
	value, err := validate.URL(string(field), raw)
	if err != nil {
		fields.warn(err)
		return ""
	}
	return value
}

func resolveOrganizer(fields *Fields, chain Chain, locale string) {
	raw, ok := chain.First(domain.FieldOrganizerName, locale)
	if !ok {
		return
	}
	fields.Organizer = &domain.Organizer{
		Name: strings.TrimSpace(raw),
		URL:  optionalURL(fields, chain, domain.FieldOrganizerURL, locale),
	}
}

func resolvePerformers(fields *Fields, chain Chain, record domain.EventRecord, locale string) {
	// An override replaces the whole list with a single group.
	if raw, ok := chain.First(domain.FieldPerformerName, locale); ok {
		fields.Performers = []domain.Performer{{Name: strings.TrimSpace(raw), Kind: domain.PerformerGroup}}
		return
	}
	for idx, performer := range record.Performers {
		prefix := fmt.Sprintf("performer[%d]", idx)
		name, err := validate.Text(prefix+".name", performer.Name, true)
		if err != nil {
			fields.warn(err)
			continue
		}
		resolved := domain.Performer{Name: name, Kind: performer.Kind}
		if resolved.Kind != domain.PerformerPerson {
			resolved.Kind = domain.PerformerGroup
		}
		if strings.TrimSpace(performer.URL) != "" {
			performerURL, err := validate.URL(prefix+".url", performer.URL)
			if err != nil {
				fields.warn(err)
			} else {
				resolved.URL = performerURL
			}
		}
		fields.Performers = append(fields.Performers, resolved)
	}
}

func (r Resolver) resolveSubEvents(fields *Fields, record domain.EventRecord, locale string) {
	venueName := ""
	if fields.Venue != nil {
		venueName = fields.Venue.Name
	}
	for idx, sub := range record.SubEvents {
		prefix := fmt.Sprintf("subEvent[%d]", idx)
		name, ok := sub.Name.Lookup(locale)
		if !ok {
			name, ok = sub.Name.Lookup(record.DefaultLocale)
		}
		if !ok {
			name = fields.Name
		}
		start, err := validate.Date(prefix+".startDate", sub.Start, fields.Zone)
		if err != nil {
			fields.warn(err)
			continue
		}
		resolved := SubEvent{
			ID:           strings.TrimSpace(sub.ID),
			Name:         strings.TrimSpace(name),
			Start:        start,
			LocationName: strings.TrimSpace(sub.LocationName),
		}
		if resolved.LocationName == "" {
			resolved.LocationName = venueName
		}
		if strings.TrimSpace(sub.End) != "" {
			end, err := validate.Date(prefix+".endDate", sub.End, fields.Zone)
			if err != nil {
				fields.warn(err)
				continue
			}
			if end.Before(start) {
				fields.Warnings = append(fields.Warnings, domain.Warning{
					Field: prefix + ".endDate",
					Code:  apperrors.CodeInvalidDateRange,
					Value: sub.End,
				})
				continue
			}
			resolved.End = end
		}
		fields.SubEvents = append(fields.SubEvents, resolved)
	}
	sort.SliceStable(fields.SubEvents, func(i, j int) bool {
		a, b := fields.SubEvents[i], fields.SubEvents[j]
		if !a.Start.Equal(b.Start) {
			return a.Start.Before(b.Start)
		}
		return a.ID < b.ID
	})
}

func (f *Fields) warn(err error) {
	var verr *validate.Error
	if !errors.As(err, &verr) {
		return
	}
	f.Warnings = append(f.Warnings, Warning(verr))
}

// Warning converts a validation failure into a document warning.
func Warning(verr *validate.Error) domain.Warning {
	return domain.Warning{
		Field:  verr.Field,
		Code:   verr.Code(),
		Reason: string(verr.Reason),
		Value:  verr.Value,
	}
}

func domainError(err error) error {
	var verr *validate.Error
	if errors.As(err, &verr) {
		return verr.AsDomain()
	}
	return err
}
