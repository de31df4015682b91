package assemble

import (
	"encoding/json"
	"fmt"
)

const schemaContext = "https://schema.org"

// Event is a schema.org Event node. Field order is the output key order.
type Event struct {
	Context             string        `json:"@context,omitempty"`
	Type                string        `json:"@type"`
	Name                string        `json:"name"`
	Description         string        `json:"description,omitempty"`
	Image               []string      `json:"image,omitempty"`
	URL                 string        `json:"url,omitempty"`
	StartDate           string        `json:"startDate"`
	EndDate             string        `json:"endDate,omitempty"`
	EventStatus         string        `json:"eventStatus,omitempty"`
	EventAttendanceMode string        `json:"eventAttendanceMode,omitempty"`
	Location            *Location     `json:"location,omitempty"`
	Organizer           *Organization `json:"organizer,omitempty"`
	Performer           []Performer   `json:"performer,omitempty"`
	Offers              []Offer       `json:"offers,omitempty"`
	SubEvent            []Event       `json:"subEvent,omitempty"`
}

// Place is a schema.org Place.
type Place struct {
	Type    string          `json:"@type"`
	Name    string          `json:"name,omitempty"`
	Address *PostalAddress  `json:"address,omitempty"`
	Geo     *GeoCoordinates `json:"geo,omitempty"`
}

// PostalAddress is a schema.org PostalAddress.
type PostalAddress struct {
	Type            string `json:"@type"`
	StreetAddress   string `json:"streetAddress,omitempty"`
	AddressLocality string `json:"addressLocality,omitempty"`
	AddressRegion   string `json:"addressRegion,omitempty"`
	PostalCode      string `json:"postalCode,omitempty"`
	AddressCountry  string `json:"addressCountry,omitempty"`
}

// GeoCoordinates is a schema.org GeoCoordinates.
type GeoCoordinates struct {
	Type      string  `json:"@type"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// VirtualLocation is a schema.org VirtualLocation.
type VirtualLocation struct {
	Type string `json:"@type"`
	URL  string `json:"url"`
}

// Organization is a schema.org Organization.
type Organization struct {
	Type string `json:"@type"`
	Name string `json:"name"`
	URL  string `json:"url,omitempty"`
}

// Performer is a schema.org Person or PerformingGroup.
type Performer struct {
	Type string `json:"@type"`
	Name string `json:"name"`
	URL  string `json:"url,omitempty"`
}

// Offer is a schema.org Offer.
type Offer struct {
	Type          string `json:"@type"`
	Name          string `json:"name,omitempty"`
	Description   string `json:"description,omitempty"`
	URL           string `json:"url,omitempty"`
	Price         string `json:"price"`
	PriceCurrency string `json:"priceCurrency"`
	Availability  string `json:"availability"`
	ValidFrom     string `json:"validFrom,omitempty"`
	ValidThrough  string `json:"validThrough,omitempty"`
}

// Shape tags the location variant of an event.
type Shape int

const (
	ShapePhysical Shape = iota + 1
	ShapeOnline
	ShapeMixed
)

// String returns the shape name used in logs.
func (s Shape) String() string {
	switch s {
	case ShapePhysical:
		return "physical"
	case ShapeOnline:
		return "online"
	case ShapeMixed:
		return "mixed"
	default:
		return "unknown"
	}
}

// SelectShape picks the variant from which location inputs are present.
func SelectShape(hasPlace, hasOnline bool) (Shape, bool) {
	switch {
	case hasPlace && hasOnline:
		return ShapeMixed, true
	case hasPlace:
		return ShapePhysical, true
	case hasOnline:
		return ShapeOnline, true
	default:
		return 0, false
	}
}

// Location is the tagged union of Place, VirtualLocation and both.
type Location struct {
	Shape   Shape
	Place   *Place
	Virtual *VirtualLocation
}

// MarshalJSON emits a Place, a VirtualLocation, or [Place, VirtualLocation].
func (l Location) MarshalJSON() ([]byte, error) {
	switch l.Shape {
	case ShapePhysical:
		if l.Place == nil {
			return nil, fmt.Errorf("physical location without place")
		}
		return json.Marshal(l.Place)
	case ShapeOnline:
		if l.Virtual == nil {
			return nil, fmt.Errorf("online location without virtual location")
		}
		return json.Marshal(l.Virtual)
	case ShapeMixed:
		if l.Place == nil || l.Virtual == nil {
			return nil, fmt.Errorf("mixed location needs place and virtual location")
		}
		return json.Marshal([]any{l.Place, l.Virtual})
	default:
		return nil, fmt.Errorf("unknown location shape %d", l.Shape)
	}
}
