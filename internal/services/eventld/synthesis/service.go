package synthesis

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/louisbranch/eventld/internal/platform/errors"
	"github.com/louisbranch/eventld/internal/platform/requestctx"
	"github.com/louisbranch/eventld/internal/platform/telemetry/metrics"
	"github.com/louisbranch/eventld/internal/services/eventld/domain"
	"github.com/louisbranch/eventld/internal/services/eventld/localecache"
	"github.com/louisbranch/eventld/internal/services/eventld/resolve"
)

const tracerName = "github.com/louisbranch/eventld/internal/services/eventld/synthesis"

// Source loads the inputs of one event. Implementations report unknown
// events with EVENT_NOT_FOUND; any other failure is treated as
// SOURCE_UNAVAILABLE.
type Source interface {
	LoadEvent(ctx context.Context, eventID string) (domain.EventRecord, error)
	ListTicketTiers(ctx context.Context, eventID string) ([]domain.TicketTier, error)
	LoadOverrides(ctx context.Context, eventID string) (domain.Overrides, error)
}

// Config tunes a Service. Zero values are usable.
type Config struct {
	DefaultEventDuration time.Duration
	Logf                 func(format string, args ...any)
	Tracer               trace.Tracer
	Metrics              *metrics.Recorder
}

// Service answers Synthesize and Preview requests.
type Service struct {
	source   Source
	cache    *localecache.Cache
	resolver resolve.Resolver
	logf     func(format string, args ...any)
	tracer   trace.Tracer
	metrics  *metrics.Recorder
}

// Preview is a document built outside the cache together with the warnings
// collected while building it. Enabled mirrors the event's switch; previews
// are built either way.
type Preview struct {
	Document domain.Document  `json:"document"`
	Warnings []domain.Warning `json:"warnings"`
	Enabled  bool             `json:"enabled"`
}

// NewService wires a service over source. A nil cache gets a fresh one
// without expiry.
func NewService(source Source, cache *localecache.Cache, cfg Config) (*Service, error) {
	if source == nil {
		return nil, errors.New("event source is required")
	}
	if cache == nil {
		cache = localecache.New(localecache.Config{})
	}
	logf := cfg.Logf
	if logf == nil {
		logf = log.Printf
	}
	tracer := cfg.Tracer
	if tracer == nil {
		tracer = otel.Tracer(tracerName)
	}
	return &Service{
		source:   source,
		cache:    cache,
		resolver: resolve.New(cfg.DefaultEventDuration),
		logf:     logf,
		tracer:   tracer,
		metrics:  cfg.Metrics,
	}, nil
}

// Synthesize returns the document for eventID in locale, serving it from the
// cache when the stored entry matches the event's current content version.
// An empty locale selects the event's default locale. Events with structured
// data switched off yield STRUCTURED_DATA_DISABLED and hold no cache entries.
func (s *Service) Synthesize(ctx context.Context, eventID, locale string) (document domain.Document, err error) {
	ctx, span := s.tracer.Start(ctx, "eventld.Synthesize", trace.WithAttributes(
		attribute.String("event.id", eventID),
	))
	defer func() {
		s.finishSpan(span, err)
		span.End()
	}()

	record, err := s.loadEvent(ctx, eventID)
	if err != nil {
		return domain.Document{}, err
	}
	span.SetAttributes(attribute.Bool("event.enabled", !record.Disabled))
	if record.Disabled {
		if s.cache.Invalidate(record.ID) > 0 {
			s.metrics.CacheEntries(s.cache.Len())
		}
		return domain.Document{}, domain.StructuredDataDisabled(record.ID)
	}
	locale, err = s.selectLocale(record, locale)
	if err != nil {
		return domain.Document{}, err
	}
	span.SetAttributes(
		attribute.String("event.locale", locale),
		attribute.String("event.content_version", record.Version),
	)

	document, hit, err := s.cache.GetOrCompute(record.ID, locale, record.Version, func() (domain.Document, error) {
		return s.compute(ctx, record, locale)
	})
	span.SetAttributes(attribute.Bool("cache.hit", hit))
	s.metrics.CacheLookup(hit)
	s.metrics.CacheEntries(s.cache.Len())
	if err != nil {
		return domain.Document{}, err
	}
	return document, nil
}

// Preview builds the document for eventID in locale outside the cache. The
// warnings are returned even when the build aborts.
func (s *Service) Preview(ctx context.Context, eventID, locale string) (preview Preview, err error) {
	ctx, span := s.tracer.Start(ctx, "eventld.Preview", trace.WithAttributes(
		attribute.String("event.id", eventID),
	))
	defer func() {
		s.finishSpan(span, err)
		span.End()
	}()

	record, err := s.loadEvent(ctx, eventID)
	if err != nil {
		return Preview{}, err
	}
	locale, err = s.selectLocale(record, locale)
	if err != nil {
		return Preview{}, err
	}
	span.SetAttributes(
		attribute.String("event.locale", locale),
		attribute.String("event.content_version", record.Version),
	)

	tiers, overrides, err := s.loadInputs(ctx, record.ID)
	if err != nil {
		return Preview{}, err
	}
	document, warnings, err := Build(s.resolver, record, tiers, overrides, locale)
	if warnings == nil {
		warnings = []domain.Warning{}
	}
	return Preview{Document: document, Warnings: warnings, Enabled: !record.Disabled}, err
}

// Invalidate drops every cached locale of eventID.
func (s *Service) Invalidate(eventID string) int {
	removed := s.cache.Invalidate(eventID)
	s.metrics.CacheEntries(s.cache.Len())
	if removed > 0 {
		s.logf("structured data invalidated: event=%s entries=%d", eventID, removed)
	}
	return removed
}

// DefaultLocale returns the default locale of eventID.
func (s *Service) DefaultLocale(ctx context.Context, eventID string) (string, error) {
	record, err := s.loadEvent(ctx, eventID)
	if err != nil {
		return "", err
	}
	return record.DefaultLocale, nil
}

func (s *Service) compute(ctx context.Context, record domain.EventRecord, locale string) (domain.Document, error) {
	started := time.Now()
	tiers, overrides, err := s.loadInputs(ctx, record.ID)
	if err != nil {
		s.metrics.ObserveSynthesis(metrics.OutcomeError, string(apperrors.CodeOf(err)), time.Since(started))
		return domain.Document{}, err
	}

	document, warnings, err := Build(s.resolver, record, tiers, overrides, locale)
	s.recordWarnings(ctx, record, locale, warnings)
	if err != nil {
		code := apperrors.CodeOf(err)
		outcome := metrics.OutcomeError
		if code.Aborts() {
			outcome = metrics.OutcomeAborted
		}
		s.metrics.ObserveSynthesis(outcome, string(code), time.Since(started))
		s.logf("structured data aborted: event=%s locale=%s version=%s code=%s request_id=%s err=%v",
			record.ID, locale, record.Version, code, requestID(ctx), err)
		return domain.Document{}, err
	}
	s.metrics.ObserveSynthesis(metrics.OutcomeOK, "", time.Since(started))
	return document, nil
}

func (s *Service) recordWarnings(ctx context.Context, record domain.EventRecord, locale string, warnings []domain.Warning) {
	if len(warnings) == 0 {
		return
	}
	parts := make([]string, 0, len(warnings))
	droppedTiers := 0
	for _, warning := range warnings {
		parts = append(parts, warning.String())
		if warning.Code == apperrors.CodeInvalidTierData {
			droppedTiers++
			continue
		}
		reason := warning.Reason
		if reason == "" {
			reason = string(warning.Code)
		}
		s.metrics.DroppedField(reason)
	}
	s.metrics.DroppedTiers(droppedTiers)
	s.logf("structured data warnings: event=%s locale=%s version=%s request_id=%s dropped=[%s]",
		record.ID, locale, record.Version, requestID(ctx), strings.Join(parts, "; "))
}

func (s *Service) loadEvent(ctx context.Context, eventID string) (domain.EventRecord, error) {
	record, err := s.source.LoadEvent(ctx, eventID)
	if err != nil {
		return domain.EventRecord{}, sourceError(err)
	}
	if record.ID == "" {
		record.ID = eventID
	}
	return record, nil
}

func (s *Service) loadInputs(ctx context.Context, eventID string) ([]domain.TicketTier, domain.Overrides, error) {
	tiers, err := s.source.ListTicketTiers(ctx, eventID)
	if err != nil {
		return nil, domain.Overrides{}, sourceError(err)
	}
	overrides, err := s.source.LoadOverrides(ctx, eventID)
	if err != nil {
		return nil, domain.Overrides{}, sourceError(err)
	}
	return tiers, overrides, nil
}

func (s *Service) selectLocale(record domain.EventRecord, locale string) (string, error) {
	if strings.TrimSpace(locale) == "" {
		locale = record.DefaultLocale
	}
	if strings.TrimSpace(locale) == "" {
		return "", domain.InvalidLocale(locale, errors.New("event has no default locale"))
	}
	canonical, err := domain.ParseLocale(locale)
	if err != nil {
		return "", domain.InvalidLocale(locale, err)
	}
	return canonical, nil
}

func (s *Service) finishSpan(span trace.Span, err error) {
	if err == nil {
		span.SetStatus(otelcodes.Ok, "")
		return
	}
	code := apperrors.CodeOf(err)
	span.SetAttributes(attribute.String("error.code", string(code)))
	if code == apperrors.CodeStructuredDataDisabled {
		return
	}
	span.RecordError(err)
	span.SetStatus(otelcodes.Error, string(code))
}

func requestID(ctx context.Context) string {
	if id := requestctx.RequestIDFromContext(ctx); id != "" {
		return id
	}
	return "-"
}

// sourceError keeps coded errors from the source and wraps the rest.
func sourceError(err error) error {
	var domainErr *apperrors.Error
	if errors.As(err, &domainErr) {
		return err
	}
	return domain.SourceUnavailable(err)
}
