// Package render writes structured data into HTML pages.
package render

import (
	"bytes"
	"context"
	"io"

	"github.com/a-h/templ"

	apperrors "github.com/louisbranch/eventld/internal/platform/errors"
	"github.com/louisbranch/eventld/internal/services/eventld/domain"
)

const (
	scriptOpen  = `<script type="application/ld+json">`
	scriptClose = `</script>`
)

// Synthesizer produces the document embedded by Head.
type Synthesizer interface {
	Synthesize(ctx context.Context, eventID, locale string) (domain.Document, error)
}

// JSONLD renders document inside a JSON-LD script element. A zero document
// renders nothing.
func JSONLD(document domain.Document) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		if document.IsZero() {
			return nil
		}
		body := bytes.ReplaceAll(document.JSON(), []byte("</"), []byte(`<\/`))
		if _, err := io.WriteString(w, scriptOpen); err != nil {
			return err
		}
		if _, err := w.Write(body); err != nil {
			return err
		}
		_, err := io.WriteString(w, scriptClose)
		return err
	})
}

// Head synthesizes the document for eventID and renders it. Synthesis
// failures render nothing and are reported to logf; the surrounding page
// keeps rendering. Events with structured data switched off render nothing
// silently.
func Head(synth Synthesizer, eventID, locale string, logf func(format string, args ...any)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		document, err := synth.Synthesize(ctx, eventID, locale)
		if err != nil {
			if logf != nil && !apperrors.HasCode(err, apperrors.CodeStructuredDataDisabled) {
				logf("structured data omitted: event=%s locale=%s code=%s err=%v",
					eventID, locale, apperrors.CodeOf(err), err)
			}
			return nil
		}
		return JSONLD(document).Render(ctx, w)
	})
}
