package render

import (
	"context"
	"fmt"
	"strings"
	"testing"

	apperrors "github.com/louisbranch/eventld/internal/platform/errors"
	"github.com/louisbranch/eventld/internal/services/eventld/domain"
)

type stubSynth struct {
	document domain.Document
	err      error
}

func (s stubSynth) Synthesize(context.Context, string, string) (domain.Document, error) {
	return s.document, s.err
}

func TestJSONLDWrapsDocument(t *testing.T) {
	t.Parallel()

	document := domain.NewDocument("evt-1", "en", "v1", []byte(`{"@type":"Event","name":"Jazz"}`))
	var b strings.Builder
	if err := JSONLD(document).Render(context.Background(), &b); err != nil {
		t.Fatalf("render: %v", err)
	}
	want := `<script type="application/ld+json">{"@type":"Event","name":"Jazz"}</script>`
	if b.String() != want {
		t.Fatalf("render = %q, want %q", b.String(), want)
	}
}

func TestJSONLDNeutralizesClosingTags(t *testing.T) {
	t.Parallel()

	document := domain.NewDocument("evt-1", "en", "v1", []byte(`{"name":"</script><script>alert(1)</script>"}`))
	var b strings.Builder
	if err := JSONLD(document).Render(context.Background(), &b); err != nil {
		t.Fatalf("render: %v", err)
	}
	got := b.String()
	if strings.Count(got, "</script>") != 1 || !strings.HasSuffix(got, "</script>") {
		t.Fatalf("render = %q, want a single closing tag", got)
	}
	if !strings.Contains(got, `<\/script>`) {
		t.Fatalf("render = %q, want escaped closing tag", got)
	}
}

func TestJSONLDZeroDocumentRendersNothing(t *testing.T) {
	t.Parallel()

	var b strings.Builder
	if err := JSONLD(domain.Document{}).Render(context.Background(), &b); err != nil {
		t.Fatalf("render: %v", err)
	}
	if b.Len() != 0 {
		t.Fatalf("render = %q, want empty", b.String())
	}
}

func TestHeadRendersNothingOnFailure(t *testing.T) {
	t.Parallel()

	var logged []string
	logf := func(format string, args ...any) { logged = append(logged, fmt.Sprintf(format, args...)) }
	synth := stubSynth{err: domain.MissingRequiredField(domain.FieldName)}

	var b strings.Builder
	if err := Head(synth, "evt-1", "en", logf).Render(context.Background(), &b); err != nil {
		t.Fatalf("render: %v", err)
	}
	if b.Len() != 0 {
		t.Fatalf("render = %q, want empty", b.String())
	}
	if len(logged) != 1 || !strings.Contains(logged[0], string(apperrors.CodeMissingRequiredField)) {
		t.Fatalf("logged = %v", logged)
	}
}

func TestHeadRendersDocument(t *testing.T) {
	t.Parallel()

	synth := stubSynth{document: domain.NewDocument("evt-1", "en", "v1", []byte(`{"name":"Jazz"}`))}
	var b strings.Builder
	if err := Head(synth, "evt-1", "en", nil).Render(context.Background(), &b); err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(b.String(), `{"name":"Jazz"}`) {
		t.Fatalf("render = %q", b.String())
	}
}

func TestHeadRendersNothingForDisabledEvent(t *testing.T) {
	t.Parallel()

	var logged []string
	logf := func(format string, args ...any) { logged = append(logged, fmt.Sprintf(format, args...)) }
	synth := stubSynth{err: domain.StructuredDataDisabled("evt-1")}

	var b strings.Builder
	if err := Head(synth, "evt-1", "en", logf).Render(context.Background(), &b); err != nil {
		t.Fatalf("render: %v", err)
	}
	if b.Len() != 0 || len(logged) != 0 {
		t.Fatalf("render = %q logged = %v, want nothing", b.String(), logged)
	}
}
