package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	apperrors "github.com/louisbranch/eventld/internal/platform/errors"
	"github.com/louisbranch/eventld/internal/services/eventld/domain"
	"github.com/louisbranch/eventld/internal/services/eventld/storage"
)

func TestOpenRequiresPath(t *testing.T) {
	t.Parallel()

	if _, err := Open(context.Background(), ""); err == nil {
		t.Fatal("expected empty path error")
	}
}

func TestOpenTwiceReappliesNothing(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "events.db")
	first, err := Open(context.Background(), path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	second, err := Open(context.Background(), path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if err := second.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestPutLoadEventRoundTrip(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	input := domain.EventRecord{
		ID:             "evt-1",
		DefaultLocale:  "en",
		Name:           domain.LocalizedText{"en": "Jazz Night", "de": "Jazzabend"},
		Description:    domain.LocalizedText{"en": "<p>Live</p>"},
		Start:          "2026-06-01T19:30:00+02:00",
		End:            "2026-06-01T23:00:00+02:00",
		Timezone:       "UTC",
		ShowTimes:      true,
		AttendanceMode: domain.AttendanceMixed,
		Venue: &domain.Venue{
			Name:    domain.LocalizedText{"en": "Blue Room"},
			Address: domain.PostalAddress{Street: "Main St 1", Locality: "Berlin", PostalCode: "10115", Country: "DE"},
			Geo:     &domain.Geo{Latitude: 52.52, Longitude: 13.405},
		},
		OnlineURL:  "https://stream.example.com/jazz",
		Organizer:  &domain.Organizer{Name: "Blue Room GmbH", URL: "https://blueroom.example.com"},
		Performers: []domain.Performer{{Name: "Trio", Kind: domain.PerformerGroup}, {Name: "Ana", Kind: domain.PerformerPerson}},
		Images:     []string{"https://img.example.com/a.png"},
		URL:        "https://tickets.example.com/jazz",
		Status:     domain.StatusScheduled,
		SubEvents: []domain.SubEvent{
			{ID: "day-1", Name: domain.LocalizedText{"en": "Day 1"}, Start: "2026-06-01T19:30:00Z"},
		},
	}

	version, err := store.PutEvent(context.Background(), input)
	if err != nil {
		t.Fatalf("put event: %v", err)
	}
	if version == "" {
		t.Fatal("expected generated version")
	}

	got, err := store.LoadEvent(context.Background(), "evt-1")
	if err != nil {
		t.Fatalf("load event: %v", err)
	}
	if got.Version != version {
		t.Fatalf("version = %q, want %q", got.Version, version)
	}
	if got.Name["de"] != "Jazzabend" || got.Description["en"] != "<p>Live</p>" {
		t.Fatalf("localized text = %v / %v", got.Name, got.Description)
	}
	if got.Venue == nil || got.Venue.Address.PostalCode != "10115" || got.Venue.Geo == nil || got.Venue.Geo.Latitude != 52.52 {
		t.Fatalf("venue = %+v", got.Venue)
	}
	if got.Organizer == nil || got.Organizer.Name != "Blue Room GmbH" {
		t.Fatalf("organizer = %+v", got.Organizer)
	}
	if len(got.Performers) != 2 || got.Performers[1].Name != "Ana" || got.Performers[1].Kind != domain.PerformerPerson {
		t.Fatalf("performers = %+v", got.Performers)
	}
	if len(got.SubEvents) != 1 || got.SubEvents[0].ID != "day-1" || got.SubEvents[0].Name["en"] != "Day 1" {
		t.Fatalf("sub-events = %+v", got.SubEvents)
	}
	if !got.ShowTimes || got.AttendanceMode != domain.AttendanceMixed || got.OnlineURL != input.OnlineURL {
		t.Fatalf("record = %+v", got)
	}
	if len(got.Images) != 1 || got.Images[0] != input.Images[0] {
		t.Fatalf("images = %v", got.Images)
	}
}

func TestPutEventKeepsExplicitVersionAndReplacesChildren(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	record := minimalRecord()
	record.Version = "v1"
	record.Performers = []domain.Performer{{Name: "A"}, {Name: "B"}}
	if version, err := store.PutEvent(context.Background(), record); err != nil || version != "v1" {
		t.Fatalf("put = %q, %v", version, err)
	}

	record.Version = "v2"
	record.Performers = []domain.Performer{{Name: "C"}}
	record.Venue = nil
	if _, err := store.PutEvent(context.Background(), record); err != nil {
		t.Fatalf("put again: %v", err)
	}
	got, err := store.LoadEvent(context.Background(), record.ID)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Version != "v2" || len(got.Performers) != 1 || got.Performers[0].Name != "C" {
		t.Fatalf("record = %+v", got)
	}
	if got.Disabled {
		t.Fatal("structured data should default to enabled")
	}
	if got.Venue != nil || got.Organizer != nil {
		t.Fatalf("venue = %+v organizer = %+v, want nil", got.Venue, got.Organizer)
	}
}

func TestPutEventPersistsEnabledSwitch(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	record := minimalRecord()
	record.Disabled = true
	if _, err := store.PutEvent(context.Background(), record); err != nil {
		t.Fatalf("put disabled: %v", err)
	}
	got, err := store.LoadEvent(context.Background(), record.ID)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !got.Disabled {
		t.Fatal("expected disabled event")
	}

	record.Disabled = false
	if _, err := store.PutEvent(context.Background(), record); err != nil {
		t.Fatalf("put enabled: %v", err)
	}
	if got, err = store.LoadEvent(context.Background(), record.ID); err != nil || got.Disabled {
		t.Fatalf("reenabled = %+v, %v", got, err)
	}
}

func TestLoadEventNotFound(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	_, err := store.LoadEvent(context.Background(), "missing")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}
	if apperrors.MetadataOf(err)["EventID"] != "missing" {
		t.Fatalf("metadata = %v", apperrors.MetadataOf(err))
	}
}

func TestPutTicketTiersBumpsVersionAndKeepsOrder(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	record := minimalRecord()
	record.Version = "v1"
	if _, err := store.PutEvent(context.Background(), record); err != nil {
		t.Fatalf("put event: %v", err)
	}
	store.newVersion = func() string { return "v2" }

	tiers := []domain.TicketTier{
		{ID: "regular", Name: domain.LocalizedText{"en": "Regular"}, Price: 2500, Currency: "EUR"},
		{ID: "early", Price: 1500, Currency: "EUR", Availability: domain.AvailabilitySoldOut, ValidThrough: "2026-05-01T00:00:00Z"},
		{ID: "comp", Ignore: true},
	}
	version, err := store.PutTicketTiers(context.Background(), record.ID, tiers)
	if err != nil {
		t.Fatalf("put tiers: %v", err)
	}
	if version != "v2" {
		t.Fatalf("version = %q, want v2", version)
	}

	got, err := store.ListTicketTiers(context.Background(), record.ID)
	if err != nil {
		t.Fatalf("list tiers: %v", err)
	}
	if len(got) != 3 || got[0].ID != "regular" || got[1].ID != "early" || got[2].ID != "comp" {
		t.Fatalf("tiers = %+v", got)
	}
	if got[0].Name["en"] != "Regular" || got[1].Availability != domain.AvailabilitySoldOut || !got[2].Ignore {
		t.Fatalf("tiers = %+v", got)
	}
	if got[1].ValidThrough != "2026-05-01T00:00:00Z" {
		t.Fatalf("valid through = %q", got[1].ValidThrough)
	}

	loaded, err := store.LoadEvent(context.Background(), record.ID)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Version != "v2" {
		t.Fatalf("event version = %q, want v2", loaded.Version)
	}
}

func TestPutTicketTiersRejectsDuplicatesAndUnknownEvents(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	if _, err := store.PutTicketTiers(context.Background(), "missing", nil); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}

	record := minimalRecord()
	record.Version = "v1"
	if _, err := store.PutEvent(context.Background(), record); err != nil {
		t.Fatalf("put event: %v", err)
	}
	_, err := store.PutTicketTiers(context.Background(), record.ID, []domain.TicketTier{{ID: "a"}, {ID: "a"}})
	if err == nil {
		t.Fatal("expected duplicate tier error")
	}
	loaded, err := store.LoadEvent(context.Background(), record.ID)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Version != "v1" {
		t.Fatalf("failed write changed version to %q", loaded.Version)
	}
}

func TestPutLoadOverrides(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	record := minimalRecord()
	if _, err := store.PutEvent(context.Background(), record); err != nil {
		t.Fatalf("put event: %v", err)
	}

	var overrides domain.Overrides
	overrides.Set(domain.FieldName, "", "Unscoped")
	overrides.Set(domain.FieldName, "de-de", "Scoped")
	overrides.Set(domain.FieldOfferCurrency, "", "EUR")
	overrides.SetTier("regular", domain.TierOverride{Price: "19.99", Ignore: true})
	if _, err := store.PutOverrides(context.Background(), record.ID, overrides); err != nil {
		t.Fatalf("put overrides: %v", err)
	}

	got, err := store.LoadOverrides(context.Background(), record.ID)
	if err != nil {
		t.Fatalf("load overrides: %v", err)
	}
	if value, ok := got.Lookup(domain.FieldName, ""); !ok || value != "Unscoped" {
		t.Fatalf("unscoped = %q, %v", value, ok)
	}
	if value, ok := got.Lookup(domain.FieldName, "de-DE"); !ok || value != "Scoped" {
		t.Fatalf("scoped = %q, %v", value, ok)
	}
	if value, ok := got.Lookup(domain.FieldOfferCurrency, ""); !ok || value != "EUR" {
		t.Fatalf("offer currency = %q, %v", value, ok)
	}
	tier, ok := got.Tier("regular")
	if !ok || tier.Price != "19.99" || !tier.Ignore {
		t.Fatalf("tier override = %+v, %v", tier, ok)
	}

	var unknown domain.Overrides
	unknown.Set(domain.Field("colour"), "", "red")
	if _, err := store.PutOverrides(context.Background(), record.ID, unknown); err == nil {
		t.Fatal("expected unknown field error")
	}
}

func TestCanceledContext(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := store.LoadEvent(ctx, "evt-1"); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context canceled", err)
	}
}

func minimalRecord() domain.EventRecord {
	return domain.EventRecord{
		ID:            "evt-1",
		DefaultLocale: "en",
		Name:          domain.LocalizedText{"en": "Jazz Night"},
		Start:         "2026-06-01T19:30:00Z",
		Venue:         &domain.Venue{Name: domain.LocalizedText{"en": "Blue Room"}},
	}
}

func openTempStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(context.Background(), filepath.Join(t.TempDir(), "events.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("close store: %v", err)
		}
	})
	return store
}
