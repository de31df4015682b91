// Package assemble composes resolved fields and offers into the JSON-LD graph.
package assemble

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/louisbranch/eventld/internal/services/eventld/domain"
	"github.com/louisbranch/eventld/internal/services/eventld/offer"
	"github.com/louisbranch/eventld/internal/services/eventld/resolve"
	"github.com/louisbranch/eventld/internal/services/eventld/validate"
)

const dateOnlyLayout = "2006-01-02"

// Assemble builds the Event graph. The location shape is chosen here, once,
// from the venue and online URL left after resolution.
func Assemble(fields resolve.Fields, offers []offer.Offer) (Event, error) {
	if fields.Name == "" {
		return Event{}, domain.MissingRequiredField(domain.FieldName)
	}
	if fields.Start.IsZero() {
		return Event{}, domain.MissingRequiredField(domain.FieldStartDate)
	}

	location, err := buildLocation(fields)
	if err != nil {
		return Event{}, err
	}
	status := domain.StatusScheduled
	if fields.Status != "" {
		status, err = validate.Enum(string(domain.FieldEventStatus), string(fields.Status), domain.ParseStatus)
		if err != nil {
			var verr *validate.Error
			if errors.As(err, &verr) {
				return Event{}, verr.AsDomain()
			}
			return Event{}, err
		}
	}

	event := Event{
		Context:             schemaContext,
		Type:                "Event",
		Name:                fields.Name,
		Description:         fields.Description,
		Image:               fields.Images,
		URL:                 fields.URL,
		StartDate:           formatDate(fields.Start, fields),
		EventStatus:         status.SchemaURL(),
		EventAttendanceMode: attendanceMode(location.Shape).SchemaURL(),
		Location:            &location,
		Organizer:           buildOrganizer(fields.Organizer),
		Performer:           buildPerformers(fields.Performers),
		Offers:              buildOffers(offers),
		SubEvent:            buildSubEvents(fields, location.Shape),
	}
	if !fields.End.IsZero() {
		event.EndDate = formatDate(fields.End, fields)
	}
	return event, nil
}

// Encode serializes the graph. Identical graphs encode to identical bytes.
func Encode(event Event) ([]byte, error) {
	body, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("encode json-ld: %w", err)
	}
	return body, nil
}

func buildLocation(fields resolve.Fields) (Location, error) {
	shape, ok := SelectShape(fields.Venue != nil, fields.OnlineURL != "")
	if !ok {
		return Location{}, domain.IncompleteLocationData(fields.EventID)
	}
	location := Location{Shape: shape}
	if fields.Venue != nil {
		location.Place = buildPlace(*fields.Venue)
	}
	if fields.OnlineURL != "" {
		location.Virtual = &VirtualLocation{Type: "VirtualLocation", URL: fields.OnlineURL}
	}
	return location, nil
}

func buildPlace(venue resolve.Venue) *Place {
	place := &Place{Type: "Place", Name: venue.Name}
	if !venue.Address.IsZero() {
		place.Address = &PostalAddress{
			Type:            "PostalAddress",
			StreetAddress:   venue.Address.Street,
			AddressLocality: venue.Address.Locality,
			AddressRegion:   venue.Address.Region,
			PostalCode:      venue.Address.PostalCode,
			AddressCountry:  venue.Address.Country,
		}
	}
	if venue.Geo != nil {
		place.Geo = &GeoCoordinates{
			Type:      "GeoCoordinates",
			Latitude:  venue.Geo.Latitude,
			Longitude: venue.Geo.Longitude,
		}
	}
	return place
}

func attendanceMode(shape Shape) domain.AttendanceMode {
	switch shape {
	case ShapeOnline:
		return domain.AttendanceOnline
	case ShapeMixed:
		return domain.AttendanceMixed
	default:
		return domain.AttendancePhysical
	}
}

func buildOrganizer(organizer *domain.Organizer) *Organization {
	if organizer == nil || organizer.Name == "" {
		return nil
	}
	return &Organization{Type: "Organization", Name: organizer.Name, URL: organizer.URL}
}

func buildPerformers(performers []domain.Performer) []Performer {
	if len(performers) == 0 {
		return nil
	}
	out := make([]Performer, 0, len(performers))
	for _, performer := range performers {
		kind := "PerformingGroup"
		if performer.Kind == domain.PerformerPerson {
			kind = "Person"
		}
		out = append(out, Performer{Type: kind, Name: performer.Name, URL: performer.URL})
	}
	return out
}

func buildOffers(offers []offer.Offer) []Offer {
	if len(offers) == 0 {
		return nil
	}
	out := make([]Offer, 0, len(offers))
	for _, o := range offers {
		entry := Offer{
			Type:          "Offer",
			Name:          o.Name,
			Description:   o.Description,
			URL:           o.URL,
			Price:         o.Price,
			PriceCurrency: o.Currency,
			Availability:  o.Availability.SchemaURL(),
		}
		if !o.ValidFrom.IsZero() {
			entry.ValidFrom = o.ValidFrom.Format(time.RFC3339)
		}
		if !o.ValidThrough.IsZero() {
			entry.ValidThrough = o.ValidThrough.Format(time.RFC3339)
		}
		out = append(out, entry)
	}
	return out
}

// buildSubEvents gives each child a location derived from the parent shape:
// a named place unless the parent is online-only, and the parent's virtual
// location unless it is physical-only.
func buildSubEvents(fields resolve.Fields, parent Shape) []Event {
	if len(fields.SubEvents) == 0 {
		return nil
	}
	out := make([]Event, 0, len(fields.SubEvents))
	for _, sub := range fields.SubEvents {
		entry := Event{
			Type:      "Event",
			Name:      sub.Name,
			StartDate: formatDate(sub.Start, fields),
		}
		if !sub.End.IsZero() {
			entry.EndDate = formatDate(sub.End, fields)
		}
		hasPlace := sub.LocationName != "" && parent != ShapeOnline
		hasOnline := fields.OnlineURL != "" && parent != ShapePhysical
		if shape, ok := SelectShape(hasPlace, hasOnline); ok {
			location := Location{Shape: shape}
			if hasPlace {
				location.Place = &Place{Type: "Place", Name: sub.LocationName}
			}
			if hasOnline {
				location.Virtual = &VirtualLocation{Type: "VirtualLocation", URL: fields.OnlineURL}
			}
			entry.Location = &location
		}
		out = append(out, entry)
	}
	return out
}

func formatDate(value time.Time, fields resolve.Fields) string {
	if fields.ShowTimes {
		return value.Format(time.RFC3339)
	}
	zone := fields.Zone
	if zone == nil {
		zone = time.UTC
	}
	return value.In(zone).Format(dateOnlyLayout)
}
