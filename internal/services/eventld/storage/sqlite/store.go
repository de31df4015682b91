// Package sqlite provides a SQLite-backed event source.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	sqlitemigrate "github.com/louisbranch/eventld/internal/platform/storage/sqlitemigrate"
	"github.com/louisbranch/eventld/internal/services/eventld/domain"
	"github.com/louisbranch/eventld/internal/services/eventld/storage"
	"github.com/louisbranch/eventld/internal/services/eventld/storage/sqlite/migrations"
)

// Store persists event source data in SQLite.
type Store struct {
	sqlDB      *sql.DB
	newVersion func() string
	clock      func() time.Time
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

// Open opens a SQLite event store and applies embedded migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.ApplyMigrations(ctx, sqlDB, migrations.FS, ""); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB, newVersion: uuid.NewString, clock: time.Now}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// PutEvent inserts or replaces an event with its performers and sub-events.
// It returns the new content version; a blank record.Version gets a fresh one.
func (s *Store) PutEvent(ctx context.Context, record domain.EventRecord) (string, error) {
	if err := s.ready(ctx); err != nil {
		return "", err
	}
	eventID := strings.TrimSpace(record.ID)
	if eventID == "" {
		return "", fmt.Errorf("event id is required")
	}
	if strings.TrimSpace(record.DefaultLocale) == "" {
		return "", fmt.Errorf("default locale is required")
	}
	version := strings.TrimSpace(record.Version)
	if version == "" {
		version = s.newVersion()
	}

	nameJSON, err := encodeText(record.Name)
	if err != nil {
		return "", err
	}
	descriptionJSON, err := encodeText(record.Description)
	if err != nil {
		return "", err
	}
	imagesJSON, err := json.Marshal(nonNilStrings(record.Images))
	if err != nil {
		return "", fmt.Errorf("encode images: %w", err)
	}

	var (
		hasVenue      bool
		venueNameJSON = "{}"
		address       domain.PostalAddress
		latitude      sql.NullFloat64
		longitude     sql.NullFloat64
	)
	if record.Venue != nil {
		hasVenue = true
		venueNameJSON, err = encodeText(record.Venue.Name)
		if err != nil {
			return "", err
		}
		address = record.Venue.Address
		if record.Venue.Geo != nil {
			latitude = sql.NullFloat64{Float64: record.Venue.Geo.Latitude, Valid: true}
			longitude = sql.NullFloat64{Float64: record.Venue.Geo.Longitude, Valid: true}
		}
	}
	var organizer domain.Organizer
	if record.Organizer != nil {
		organizer = *record.Organizer
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin put event: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(
		ctx,
		`INSERT INTO events (
		   id, default_locale, name_json, description_json,
		   start_date, end_date, timezone, show_times, attendance_mode,
		   has_venue, venue_name_json, street, locality, region, postal_code, country,
		   latitude, longitude, online_url, organizer_name, organizer_url,
		   images_json, url, status, structured_data_enabled, version, updated_at
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   default_locale = excluded.default_locale,
		   name_json = excluded.name_json,
		   description_json = excluded.description_json,
		   start_date = excluded.start_date,
		   end_date = excluded.end_date,
		   timezone = excluded.timezone,
		   show_times = excluded.show_times,
		   attendance_mode = excluded.attendance_mode,
		   has_venue = excluded.has_venue,
		   venue_name_json = excluded.venue_name_json,
		   street = excluded.street,
		   locality = excluded.locality,
		   region = excluded.region,
		   postal_code = excluded.postal_code,
		   country = excluded.country,
		   latitude = excluded.latitude,
		   longitude = excluded.longitude,
		   online_url = excluded.online_url,
		   organizer_name = excluded.organizer_name,
		   organizer_url = excluded.organizer_url,
		   images_json = excluded.images_json,
		   url = excluded.url,
		   status = excluded.status,
		   structured_data_enabled = excluded.structured_data_enabled,
		   version = excluded.version,
		   updated_at = excluded.updated_at`,
		eventID,
		record.DefaultLocale,
		nameJSON,
		descriptionJSON,
		record.Start,
		record.End,
		record.Timezone,
		boolToInt(record.ShowTimes),
		string(record.AttendanceMode),
		boolToInt(hasVenue),
		venueNameJSON,
		address.Street,
		address.Locality,
		address.Region,
		address.PostalCode,
		address.Country,
		latitude,
		longitude,
		record.OnlineURL,
		organizer.Name,
		organizer.URL,
		string(imagesJSON),
		record.URL,
		string(record.Status),
		boolToInt(!record.Disabled),
		version,
		toMillis(s.clock()),
	)
	if err != nil {
		return "", fmt.Errorf("put event: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM performers WHERE event_id = ?`, eventID); err != nil {
		return "", fmt.Errorf("clear performers: %w", err)
	}
	for idx, performer := range record.Performers {
		if _, err := tx.ExecContext(
			ctx,
			`INSERT INTO performers (event_id, position, name, url, kind) VALUES (?, ?, ?, ?, ?)`,
			eventID, idx, performer.Name, performer.URL, string(performer.Kind),
		); err != nil {
			return "", fmt.Errorf("put performer %d: %w", idx, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM sub_events WHERE event_id = ?`, eventID); err != nil {
		return "", fmt.Errorf("clear sub-events: %w", err)
	}
	for idx, sub := range record.SubEvents {
		subNameJSON, err := encodeText(sub.Name)
		if err != nil {
			return "", err
		}
		subID := strings.TrimSpace(sub.ID)
		if subID == "" {
			subID = fmt.Sprintf("%s-%d", eventID, idx)
		}
		if _, err := tx.ExecContext(
			ctx,
			`INSERT INTO sub_events (event_id, sub_event_id, position, name_json, start_date, end_date, location_name)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			eventID, subID, idx, subNameJSON, sub.Start, sub.End, sub.LocationName,
		); err != nil {
			if isUniqueViolation(err) {
				return "", fmt.Errorf("duplicate sub-event id %q", subID)
			}
			return "", fmt.Errorf("put sub-event %s: %w", subID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit put event: %w", err)
	}
	return version, nil
}

// PutTicketTiers replaces the ticket tiers of eventID and bumps its version.
func (s *Store) PutTicketTiers(ctx context.Context, eventID string, tiers []domain.TicketTier) (string, error) {
	if err := s.ready(ctx); err != nil {
		return "", err
	}
	eventID = strings.TrimSpace(eventID)

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin put ticket tiers: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	version, err := s.bumpVersion(ctx, tx, eventID)
	if err != nil {
		return "", err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM ticket_tiers WHERE event_id = ?`, eventID); err != nil {
		return "", fmt.Errorf("clear ticket tiers: %w", err)
	}
	for idx, tier := range tiers {
		tierID := strings.TrimSpace(tier.ID)
		if tierID == "" {
			return "", fmt.Errorf("ticket tier %d: id is required", idx)
		}
		nameJSON, err := encodeText(tier.Name)
		if err != nil {
			return "", err
		}
		descriptionJSON, err := encodeText(tier.Description)
		if err != nil {
			return "", err
		}
		if _, err := tx.ExecContext(
			ctx,
			`INSERT INTO ticket_tiers (
			   event_id, tier_id, position, name_json, description_json,
			   price, currency, availability, valid_from, valid_through, ignored
			 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			eventID,
			tierID,
			idx,
			nameJSON,
			descriptionJSON,
			tier.Price,
			tier.Currency,
			string(tier.Availability),
			tier.ValidFrom,
			tier.ValidThrough,
			boolToInt(tier.Ignore),
		); err != nil {
			if isUniqueViolation(err) {
				return "", fmt.Errorf("duplicate ticket tier id %q", tierID)
			}
			return "", fmt.Errorf("put ticket tier %s: %w", tierID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit put ticket tiers: %w", err)
	}
	return version, nil
}

// PutOverrides replaces the overrides of eventID and bumps its version.
func (s *Store) PutOverrides(ctx context.Context, eventID string, overrides domain.Overrides) (string, error) {
	if err := s.ready(ctx); err != nil {
		return "", err
	}
	eventID = strings.TrimSpace(eventID)

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin put overrides: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	version, err := s.bumpVersion(ctx, tx, eventID)
	if err != nil {
		return "", err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM event_overrides WHERE event_id = ?`, eventID); err != nil {
		return "", fmt.Errorf("clear event overrides: %w", err)
	}
	for key, value := range overrides.Fields {
		if !key.Field.Known() {
			return "", fmt.Errorf("unknown override field %q", key.Field)
		}
		if _, err := tx.ExecContext(
			ctx,
			`INSERT INTO event_overrides (event_id, field, locale, value) VALUES (?, ?, ?, ?)`,
			eventID, string(key.Field), domain.CanonicalLocale(key.Locale), value,
		); err != nil {
			return "", fmt.Errorf("put override %s: %w", key.Field, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM tier_overrides WHERE event_id = ?`, eventID); err != nil {
		return "", fmt.Errorf("clear tier overrides: %w", err)
	}
	for tierID, override := range overrides.Tiers {
		if _, err := tx.ExecContext(
			ctx,
			`INSERT INTO tier_overrides (
			   event_id, tier_id, price, currency, availability, url, name, description, ignored
			 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			eventID,
			tierID,
			override.Price,
			override.Currency,
			override.Availability,
			override.URL,
			override.Name,
			override.Description,
			boolToInt(override.Ignore),
		); err != nil {
			return "", fmt.Errorf("put tier override %s: %w", tierID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit put overrides: %w", err)
	}
	return version, nil
}

// LoadEvent returns the event record for eventID.
func (s *Store) LoadEvent(ctx context.Context, eventID string) (domain.EventRecord, error) {
	if err := s.ready(ctx); err != nil {
		return domain.EventRecord{}, err
	}
	eventID = strings.TrimSpace(eventID)

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT id, default_locale, name_json, description_json,
		        start_date, end_date, timezone, show_times, attendance_mode,
		        has_venue, venue_name_json, street, locality, region, postal_code, country,
		        latitude, longitude, online_url, organizer_name, organizer_url,
		        images_json, url, status, structured_data_enabled, version
		   FROM events
		  WHERE id = ?`,
		eventID,
	)

	var (
		record          domain.EventRecord
		nameJSON        string
		descriptionJSON string
		showTimes       int
		attendanceMode  string
		hasVenue        int
		venueNameJSON   string
		address         domain.PostalAddress
		latitude        sql.NullFloat64
		longitude       sql.NullFloat64
		organizer       domain.Organizer
		imagesJSON      string
		status          string
		enabled         int
	)
	err := row.Scan(
		&record.ID,
		&record.DefaultLocale,
		&nameJSON,
		&descriptionJSON,
		&record.Start,
		&record.End,
		&record.Timezone,
		&showTimes,
		&attendanceMode,
		&hasVenue,
		&venueNameJSON,
		&address.Street,
		&address.Locality,
		&address.Region,
		&address.PostalCode,
		&address.Country,
		&latitude,
		&longitude,
		&record.OnlineURL,
		&organizer.Name,
		&organizer.URL,
		&imagesJSON,
		&record.URL,
		&status,
		&enabled,
		&record.Version,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.EventRecord{}, domain.EventNotFound(eventID)
		}
		return domain.EventRecord{}, domain.SourceUnavailable(fmt.Errorf("load event: %w", err))
	}

	if record.Name, err = decodeText(nameJSON); err != nil {
		return domain.EventRecord{}, err
	}
	if record.Description, err = decodeText(descriptionJSON); err != nil {
		return domain.EventRecord{}, err
	}
	if err := json.Unmarshal([]byte(imagesJSON), &record.Images); err != nil {
		return domain.EventRecord{}, fmt.Errorf("decode images: %w", err)
	}
	record.ShowTimes = showTimes != 0
	record.Disabled = enabled == 0
	record.AttendanceMode = domain.AttendanceMode(attendanceMode)
	record.Status = domain.Status(status)
	if hasVenue != 0 {
		venue := &domain.Venue{Address: address}
		if venue.Name, err = decodeText(venueNameJSON); err != nil {
			return domain.EventRecord{}, err
		}
		if latitude.Valid && longitude.Valid {
			venue.Geo = &domain.Geo{Latitude: latitude.Float64, Longitude: longitude.Float64}
		}
		record.Venue = venue
	}
	if organizer.Name != "" || organizer.URL != "" {
		record.Organizer = &organizer
	}

	if record.Performers, err = s.listPerformers(ctx, eventID); err != nil {
		return domain.EventRecord{}, err
	}
	if record.SubEvents, err = s.listSubEvents(ctx, eventID); err != nil {
		return domain.EventRecord{}, err
	}
	return record, nil
}

// ListTicketTiers returns the tiers of eventID in their stored order.
func (s *Store) ListTicketTiers(ctx context.Context, eventID string) ([]domain.TicketTier, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT tier_id, name_json, description_json, price, currency,
		        availability, valid_from, valid_through, ignored
		   FROM ticket_tiers
		  WHERE event_id = ?
		  ORDER BY position ASC`,
		strings.TrimSpace(eventID),
	)
	if err != nil {
		return nil, domain.SourceUnavailable(fmt.Errorf("list ticket tiers: %w", err))
	}
	defer rows.Close()

	var tiers []domain.TicketTier
	for rows.Next() {
		var (
			tier            domain.TicketTier
			nameJSON        string
			descriptionJSON string
			availability    string
			ignored         int
		)
		if err := rows.Scan(
			&tier.ID,
			&nameJSON,
			&descriptionJSON,
			&tier.Price,
			&tier.Currency,
			&availability,
			&tier.ValidFrom,
			&tier.ValidThrough,
			&ignored,
		); err != nil {
			return nil, fmt.Errorf("list ticket tiers: %w", err)
		}
		if tier.Name, err = decodeText(nameJSON); err != nil {
			return nil, err
		}
		if tier.Description, err = decodeText(descriptionJSON); err != nil {
			return nil, err
		}
		tier.Availability = domain.Availability(availability)
		tier.Ignore = ignored != 0
		tiers = append(tiers, tier)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list ticket tiers: %w", err)
	}
	return tiers, nil
}

// LoadOverrides returns the field and tier overrides of eventID.
func (s *Store) LoadOverrides(ctx context.Context, eventID string) (domain.Overrides, error) {
	if err := s.ready(ctx); err != nil {
		return domain.Overrides{}, err
	}
	eventID = strings.TrimSpace(eventID)

	var overrides domain.Overrides
	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT field, locale, value FROM event_overrides WHERE event_id = ?`,
		eventID,
	)
	if err != nil {
		return domain.Overrides{}, domain.SourceUnavailable(fmt.Errorf("load overrides: %w", err))
	}
	defer rows.Close()
	for rows.Next() {
		var field, locale, value string
		if err := rows.Scan(&field, &locale, &value); err != nil {
			return domain.Overrides{}, fmt.Errorf("load overrides: %w", err)
		}
		overrides.Set(domain.Field(field), locale, value)
	}
	if err := rows.Err(); err != nil {
		return domain.Overrides{}, fmt.Errorf("load overrides: %w", err)
	}

	tierRows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT tier_id, price, currency, availability, url, name, description, ignored
		   FROM tier_overrides
		  WHERE event_id = ?`,
		eventID,
	)
	if err != nil {
		return domain.Overrides{}, domain.SourceUnavailable(fmt.Errorf("load tier overrides: %w", err))
	}
	defer tierRows.Close()
	for tierRows.Next() {
		var (
			tierID   string
			override domain.TierOverride
			ignored  int
		)
		if err := tierRows.Scan(
			&tierID,
			&override.Price,
			&override.Currency,
			&override.Availability,
			&override.URL,
			&override.Name,
			&override.Description,
			&ignored,
		); err != nil {
			return domain.Overrides{}, fmt.Errorf("load tier overrides: %w", err)
		}
		override.Ignore = ignored != 0
		overrides.SetTier(tierID, override)
	}
	if err := tierRows.Err(); err != nil {
		return domain.Overrides{}, fmt.Errorf("load tier overrides: %w", err)
	}
	return overrides, nil
}

func (s *Store) listPerformers(ctx context.Context, eventID string) ([]domain.Performer, error) {
	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT name, url, kind FROM performers WHERE event_id = ? ORDER BY position ASC`,
		eventID,
	)
	if err != nil {
		return nil, fmt.Errorf("list performers: %w", err)
	}
	defer rows.Close()

	var performers []domain.Performer
	for rows.Next() {
		var performer domain.Performer
		var kind string
		if err := rows.Scan(&performer.Name, &performer.URL, &kind); err != nil {
			return nil, fmt.Errorf("list performers: %w", err)
		}
		performer.Kind = domain.PerformerKind(kind)
		performers = append(performers, performer)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list performers: %w", err)
	}
	return performers, nil
}

func (s *Store) listSubEvents(ctx context.Context, eventID string) ([]domain.SubEvent, error) {
	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT sub_event_id, name_json, start_date, end_date, location_name
		   FROM sub_events
		  WHERE event_id = ?
		  ORDER BY position ASC`,
		eventID,
	)
	if err != nil {
		return nil, fmt.Errorf("list sub-events: %w", err)
	}
	defer rows.Close()

	var subEvents []domain.SubEvent
	for rows.Next() {
		var sub domain.SubEvent
		var nameJSON string
		if err := rows.Scan(&sub.ID, &nameJSON, &sub.Start, &sub.End, &sub.LocationName); err != nil {
			return nil, fmt.Errorf("list sub-events: %w", err)
		}
		if sub.Name, err = decodeText(nameJSON); err != nil {
			return nil, err
		}
		subEvents = append(subEvents, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list sub-events: %w", err)
	}
	return subEvents, nil
}

// bumpVersion assigns eventID a fresh content version inside tx.
func (s *Store) bumpVersion(ctx context.Context, tx *sql.Tx, eventID string) (string, error) {
	version := s.newVersion()
	result, err := tx.ExecContext(
		ctx,
		`UPDATE events SET version = ?, updated_at = ? WHERE id = ?`,
		version, toMillis(s.clock()), eventID,
	)
	if err != nil {
		return "", fmt.Errorf("bump version: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return "", fmt.Errorf("bump version: %w", err)
	}
	if affected == 0 {
		return "", domain.EventNotFound(eventID)
	}
	return version, nil
}

func (s *Store) ready(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	return nil
}

func encodeText(text domain.LocalizedText) (string, error) {
	if text == nil {
		return "{}", nil
	}
	data, err := json.Marshal(text)
	if err != nil {
		return "", fmt.Errorf("encode localized text: %w", err)
	}
	return string(data), nil
}

func decodeText(raw string) (domain.LocalizedText, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var text domain.LocalizedText
	if err := json.Unmarshal([]byte(raw), &text); err != nil {
		return nil, fmt.Errorf("decode localized text: %w", err)
	}
	if len(text) == 0 {
		return nil, nil
	}
	return text, nil
}

func nonNilStrings(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}

var _ storage.EventStore = (*Store)(nil)
