// Package storage defines persistence contracts for event source data.
package storage

import (
	"context"

	apperrors "github.com/louisbranch/eventld/internal/platform/errors"
	"github.com/louisbranch/eventld/internal/services/eventld/domain"
)

// ErrNotFound matches any EVENT_NOT_FOUND error by code.
var ErrNotFound = apperrors.New(apperrors.CodeEventNotFound, "record not found")

// EventReader loads the synthesis inputs of one event.
type EventReader interface {
	LoadEvent(ctx context.Context, eventID string) (domain.EventRecord, error)
	ListTicketTiers(ctx context.Context, eventID string) ([]domain.TicketTier, error)
	LoadOverrides(ctx context.Context, eventID string) (domain.Overrides, error)
}

// EventWriter replaces event data. Every write assigns the event a new
// content version.
type EventWriter interface {
	PutEvent(ctx context.Context, record domain.EventRecord) (string, error)
	PutTicketTiers(ctx context.Context, eventID string, tiers []domain.TicketTier) (string, error)
	PutOverrides(ctx context.Context, eventID string, overrides domain.Overrides) (string, error)
}

// EventStore reads and writes event data.
type EventStore interface {
	EventReader
	EventWriter
}
