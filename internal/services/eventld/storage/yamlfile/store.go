// Package yamlfile serves event source data from a read-only YAML fixture.
//
// Events without an explicit version get a content hash, so editing the file
// and restarting changes the version of exactly the events that changed.
package yamlfile

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/louisbranch/eventld/internal/services/eventld/domain"
	"github.com/louisbranch/eventld/internal/services/eventld/storage"
)

type fileDoc struct {
	Events []eventDoc `yaml:"events"`
}

type eventDoc struct {
	ID             string            `yaml:"id"`
	DefaultLocale  string            `yaml:"defaultLocale"`
	Version        string            `yaml:"version,omitempty"`
	Enabled        *bool             `yaml:"enabled,omitempty"`
	Name           map[string]string `yaml:"name,omitempty"`
	Description    map[string]string `yaml:"description,omitempty"`
	Start          string            `yaml:"start,omitempty"`
	End            string            `yaml:"end,omitempty"`
	Timezone       string            `yaml:"timezone,omitempty"`
	ShowTimes      *bool             `yaml:"showTimes,omitempty"`
	AttendanceMode string            `yaml:"attendanceMode,omitempty"`
	Venue          *venueDoc         `yaml:"venue,omitempty"`
	OnlineURL      string            `yaml:"onlineUrl,omitempty"`
	Organizer      *organizerDoc     `yaml:"organizer,omitempty"`
	Performers     []performerDoc    `yaml:"performers,omitempty"`
	Images         []string          `yaml:"images,omitempty"`
	URL            string            `yaml:"url,omitempty"`
	Status         string            `yaml:"status,omitempty"`
	SubEvents      []subEventDoc     `yaml:"subEvents,omitempty"`
	Tiers          []tierDoc         `yaml:"tiers,omitempty"`
	Overrides      overridesDoc      `yaml:"overrides,omitempty"`
}

type venueDoc struct {
	Name       map[string]string `yaml:"name,omitempty"`
	Street     string            `yaml:"street,omitempty"`
	Locality   string            `yaml:"locality,omitempty"`
	Region     string            `yaml:"region,omitempty"`
	PostalCode string            `yaml:"postalCode,omitempty"`
	Country    string            `yaml:"country,omitempty"`
	Geo        *geoDoc           `yaml:"geo,omitempty"`
}

type geoDoc struct {
	Latitude  float64 `yaml:"latitude"`
	Longitude float64 `yaml:"longitude"`
}

type organizerDoc struct {
	Name string `yaml:"name,omitempty"`
	URL  string `yaml:"url,omitempty"`
}

type performerDoc struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url,omitempty"`
	Kind string `yaml:"kind,omitempty"`
}

type subEventDoc struct {
	ID           string            `yaml:"id,omitempty"`
	Name         map[string]string `yaml:"name,omitempty"`
	Start        string            `yaml:"start,omitempty"`
	End          string            `yaml:"end,omitempty"`
	LocationName string            `yaml:"locationName,omitempty"`
}

type tierDoc struct {
	ID           string            `yaml:"id"`
	Name         map[string]string `yaml:"name,omitempty"`
	Description  map[string]string `yaml:"description,omitempty"`
	Price        int64             `yaml:"price"`
	Currency     string            `yaml:"currency,omitempty"`
	Availability string            `yaml:"availability,omitempty"`
	ValidFrom    string            `yaml:"validFrom,omitempty"`
	ValidThrough string            `yaml:"validThrough,omitempty"`
	Ignore       bool              `yaml:"ignore,omitempty"`
}

type overridesDoc struct {
	Fields []fieldOverrideDoc         `yaml:"fields,omitempty"`
	Tiers  map[string]tierOverrideDoc `yaml:"tiers,omitempty"`
}

type fieldOverrideDoc struct {
	Field  string `yaml:"field"`
	Locale string `yaml:"locale,omitempty"`
	Value  string `yaml:"value"`
}

type tierOverrideDoc struct {
	Price        string `yaml:"price,omitempty"`
	Currency     string `yaml:"currency,omitempty"`
	Availability string `yaml:"availability,omitempty"`
	URL          string `yaml:"url,omitempty"`
	Name         string `yaml:"name,omitempty"`
	Description  string `yaml:"description,omitempty"`
	Ignore       bool   `yaml:"ignore,omitempty"`
}

type entry struct {
	record    domain.EventRecord
	tiers     []domain.TicketTier
	overrides domain.Overrides
}

// Store is an immutable in-memory view of a fixture file.
type Store struct {
	events map[string]entry
}

// Open reads and validates the fixture at path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("events file path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read events file: %w", err)
	}
	store, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse events file %s: %w", path, err)
	}
	return store, nil
}

// Parse builds a store from fixture bytes. Unknown keys are rejected.
func Parse(data []byte) (*Store, error) {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	var doc fileDoc
	if err := decoder.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}

	store := &Store{events: make(map[string]entry, len(doc.Events))}
	for idx, event := range doc.Events {
		id := strings.TrimSpace(event.ID)
		if id == "" {
			return nil, fmt.Errorf("event %d: id is required", idx)
		}
		if _, exists := store.events[id]; exists {
			return nil, fmt.Errorf("event %s: duplicate id", id)
		}
		if strings.TrimSpace(event.DefaultLocale) == "" {
			return nil, fmt.Errorf("event %s: defaultLocale is required", id)
		}
		built, err := event.toEntry()
		if err != nil {
			return nil, fmt.Errorf("event %s: %w", id, err)
		}
		if built.record.Version == "" {
			version, err := contentVersion(event)
			if err != nil {
				return nil, fmt.Errorf("event %s: %w", id, err)
			}
			built.record.Version = version
		}
		store.events[id] = built
	}
	return store, nil
}

// LoadEvent returns the record for eventID.
func (s *Store) LoadEvent(ctx context.Context, eventID string) (domain.EventRecord, error) {
	found, err := s.lookup(ctx, eventID)
	if err != nil {
		return domain.EventRecord{}, err
	}
	return found.record, nil
}

// ListTicketTiers returns the tiers of eventID in file order.
func (s *Store) ListTicketTiers(ctx context.Context, eventID string) ([]domain.TicketTier, error) {
	found, err := s.lookup(ctx, eventID)
	if err != nil {
		return nil, err
	}
	return append([]domain.TicketTier(nil), found.tiers...), nil
}

// LoadOverrides returns the overrides of eventID.
func (s *Store) LoadOverrides(ctx context.Context, eventID string) (domain.Overrides, error) {
	found, err := s.lookup(ctx, eventID)
	if err != nil {
		return domain.Overrides{}, err
	}
	return found.overrides, nil
}

// EventIDs lists the events in the fixture, sorted.
func (s *Store) EventIDs() []string {
	ids := make([]string, 0, len(s.events))
	for id := range s.events {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (s *Store) lookup(ctx context.Context, eventID string) (entry, error) {
	if err := ctx.Err(); err != nil {
		return entry{}, err
	}
	eventID = strings.TrimSpace(eventID)
	found, ok := s.events[eventID]
	if !ok {
		return entry{}, domain.EventNotFound(eventID)
	}
	return found, nil
}

func (e eventDoc) toEntry() (entry, error) {
	showTimes := true
	if e.ShowTimes != nil {
		showTimes = *e.ShowTimes
	}
	record := domain.EventRecord{
		ID:             strings.TrimSpace(e.ID),
		DefaultLocale:  e.DefaultLocale,
		Name:           text(e.Name),
		Description:    text(e.Description),
		Start:          e.Start,
		End:            e.End,
		Timezone:       e.Timezone,
		ShowTimes:      showTimes,
		AttendanceMode: domain.AttendanceMode(e.AttendanceMode),
		OnlineURL:      e.OnlineURL,
		Images:         append([]string(nil), e.Images...),
		URL:            e.URL,
		Status:         domain.Status(e.Status),
		Version:        strings.TrimSpace(e.Version),
		Disabled:       e.Enabled != nil && !*e.Enabled,
	}
	if e.Venue != nil {
		record.Venue = &domain.Venue{
			Name: text(e.Venue.Name),
			Address: domain.PostalAddress{
				Street:     e.Venue.Street,
				Locality:   e.Venue.Locality,
				Region:     e.Venue.Region,
				PostalCode: e.Venue.PostalCode,
				Country:    e.Venue.Country,
			},
		}
		if e.Venue.Geo != nil {
			record.Venue.Geo = &domain.Geo{Latitude: e.Venue.Geo.Latitude, Longitude: e.Venue.Geo.Longitude}
		}
	}
	if e.Organizer != nil {
		record.Organizer = &domain.Organizer{Name: e.Organizer.Name, URL: e.Organizer.URL}
	}
	for _, performer := range e.Performers {
		record.Performers = append(record.Performers, domain.Performer{
			Name: performer.Name,
			URL:  performer.URL,
			Kind: domain.PerformerKind(performer.Kind),
		})
	}
	for _, sub := range e.SubEvents {
		record.SubEvents = append(record.SubEvents, domain.SubEvent{
			ID:           sub.ID,
			Name:         text(sub.Name),
			Start:        sub.Start,
			End:          sub.End,
			LocationName: sub.LocationName,
		})
	}

	seenTiers := make(map[string]struct{}, len(e.Tiers))
	tiers := make([]domain.TicketTier, 0, len(e.Tiers))
	for idx, tier := range e.Tiers {
		id := strings.TrimSpace(tier.ID)
		if id == "" {
			return entry{}, fmt.Errorf("tier %d: id is required", idx)
		}
		if _, dup := seenTiers[id]; dup {
			return entry{}, fmt.Errorf("tier %s: duplicate id", id)
		}
		seenTiers[id] = struct{}{}
		tiers = append(tiers, domain.TicketTier{
			ID:           id,
			Name:         text(tier.Name),
			Description:  text(tier.Description),
			Price:        tier.Price,
			Currency:     tier.Currency,
			Availability: domain.Availability(tier.Availability),
			ValidFrom:    tier.ValidFrom,
			ValidThrough: tier.ValidThrough,
			Ignore:       tier.Ignore,
		})
	}

	var overrides domain.Overrides
	for _, field := range e.Overrides.Fields {
		name := domain.Field(strings.TrimSpace(field.Field))
		if !name.Known() {
			return entry{}, fmt.Errorf("unknown override field %q", field.Field)
		}
		overrides.Set(name, field.Locale, field.Value)
	}
	for tierID, override := range e.Overrides.Tiers {
		overrides.SetTier(tierID, domain.TierOverride{
			Price:        override.Price,
			Currency:     override.Currency,
			Availability: override.Availability,
			URL:          override.URL,
			Name:         override.Name,
			Description:  override.Description,
			Ignore:       override.Ignore,
		})
	}
	return entry{record: record, tiers: tiers, overrides: overrides}, nil
}

// contentVersion hashes the canonical YAML encoding of one event.
func contentVersion(event eventDoc) (string, error) {
	canonical, err := yaml.Marshal(event)
	if err != nil {
		return "", fmt.Errorf("hash event: %w", err)
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:8]), nil
}

func text(values map[string]string) domain.LocalizedText {
	if len(values) == 0 {
		return nil
	}
	out := make(domain.LocalizedText, len(values))
	for locale, value := range values {
		out[locale] = value
	}
	return out
}

var _ storage.EventReader = (*Store)(nil)
