// Package httpapi exposes structured data synthesis over HTTP.
package httpapi

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"

	"golang.org/x/text/language"

	apperrors "github.com/louisbranch/eventld/internal/platform/errors"
	"github.com/louisbranch/eventld/internal/platform/httpx"
	"github.com/louisbranch/eventld/internal/services/eventld/domain"
	"github.com/louisbranch/eventld/internal/services/eventld/render"
	"github.com/louisbranch/eventld/internal/services/eventld/synthesis"
)

const (
	jsonLDContentType = "application/ld+json; charset=utf-8"
	htmlContentType   = "text/html; charset=utf-8"
	localeParam       = "locale"
)

// Service is the synthesis surface the handler needs.
type Service interface {
	Synthesize(ctx context.Context, eventID, locale string) (domain.Document, error)
	Preview(ctx context.Context, eventID, locale string) (synthesis.Preview, error)
	Invalidate(eventID string) int
}

// Config wires optional collaborators.
type Config struct {
	Logf    httpx.Logf
	Metrics http.Handler
}

type handlers struct {
	service Service
	logf    httpx.Logf
}

// NewHandler returns the routed handler wrapped in request id, panic
// recovery and access log middleware.
func NewHandler(service Service, cfg Config) http.Handler {
	logf := cfg.Logf
	if logf == nil {
		logf = log.Printf
	}
	h := handlers{service: service, logf: logf}

	mux := http.NewServeMux()
	mux.HandleFunc(http.MethodGet+" "+StructuredDataPattern, h.handleStructuredData)
	mux.HandleFunc(http.MethodGet+" "+PreviewPattern, h.handlePreview)
	mux.HandleFunc(http.MethodGet+" "+HeadPattern, h.handleHead)
	mux.HandleFunc(http.MethodPost+" "+InvalidatePattern, h.handleInvalidate)
	mux.Handle(HealthPath, httpx.RequireMethod(http.MethodGet)(http.HandlerFunc(handleHealth)))
	if cfg.Metrics != nil {
		mux.Handle(MetricsPath, httpx.RequireMethod(http.MethodGet)(cfg.Metrics))
	}

	return httpx.Chain(mux,
		httpx.RequestID(),
		httpx.RecoverPanic(logf),
		httpx.AccessLog(logf),
	)
}

func (h handlers) handleStructuredData(w http.ResponseWriter, r *http.Request) {
	eventID := strings.TrimSpace(r.PathValue("eventID"))
	locale := requestLocale(r)
	document, err := h.service.Synthesize(httpx.RequestContext(r), eventID, locale)
	if err != nil {
		httpx.WriteError(w, err, messageLocale(locale))
		return
	}

	etag := fmt.Sprintf(`"%s:%s"`, document.Version(), document.Locale())
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Language", document.Locale())
	if match := r.Header.Get("If-None-Match"); match != "" && match == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", jsonLDContentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(document.JSON())
}

type previewResponse struct {
	Document domain.Document  `json:"document"`
	Warnings []domain.Warning `json:"warnings"`
	Enabled  bool             `json:"enabled"`
	Error    *httpx.ErrorBody `json:"error,omitempty"`
}

func (h handlers) handlePreview(w http.ResponseWriter, r *http.Request) {
	eventID := strings.TrimSpace(r.PathValue("eventID"))
	locale := requestLocale(r)
	preview, err := h.service.Preview(httpx.RequestContext(r), eventID, locale)
	if err != nil && preview.Warnings == nil {
		httpx.WriteError(w, err, messageLocale(locale))
		return
	}

	response := previewResponse{Document: preview.Document, Warnings: preview.Warnings, Enabled: preview.Enabled}
	status := http.StatusOK
	if err != nil {
		code := apperrors.CodeOf(err)
		status = code.HTTPStatus()
		response.Error = &httpx.ErrorBody{
			Code:    string(code),
			Message: apperrors.LocalizedMessage(err, messageLocale(locale)),
		}
	}
	if err := httpx.WriteJSON(w, status, response); err != nil {
		h.logf("write preview response: event=%s err=%v", eventID, err)
	}
}

// handleHead answers 204 when no structured data can be produced, so a page
// renderer can splice the body in unconditionally.
func (h handlers) handleHead(w http.ResponseWriter, r *http.Request) {
	eventID := strings.TrimSpace(r.PathValue("eventID"))
	var body bytes.Buffer
	if err := render.Head(h.service, eventID, requestLocale(r), h.logf).Render(httpx.RequestContext(r), &body); err != nil {
		h.logf("render head: event=%s err=%v", eventID, err)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if body.Len() == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	w.Header().Set("Content-Type", htmlContentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body.Bytes())
}

func (h handlers) handleInvalidate(w http.ResponseWriter, r *http.Request) {
	eventID := strings.TrimSpace(r.PathValue("eventID"))
	h.service.Invalidate(eventID)
	w.WriteHeader(http.StatusNoContent)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok\n"))
}

// requestLocale picks the locale query parameter, then the first
// Accept-Language tag. An empty result selects the event default.
func requestLocale(r *http.Request) string {
	if locale := strings.TrimSpace(r.URL.Query().Get(localeParam)); locale != "" {
		return locale
	}
	header := strings.TrimSpace(r.Header.Get("Accept-Language"))
	if header == "" {
		return ""
	}
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 || tags[0] == language.Und {
		return ""
	}
	return tags[0].String()
}

func messageLocale(locale string) string {
	if locale == "" {
		return "en-US"
	}
	return locale
}
