// Package i18n renders user-facing error messages from the locale catalog.
package i18n

import (
	"bytes"
	"strings"
	"sync"
	"text/template"

	i18ncatalog "github.com/louisbranch/eventld/internal/platform/i18n/catalog"
)

// Code is a machine-readable error code (duplicated from errors package to avoid cycle).
type Code = string

const namespace = "errors"

// Catalog holds the compiled error templates of one locale.
type Catalog struct {
	locale    string
	templates map[Code]*template.Template
	raw       map[Code]string
}

var catalogs sync.Map // requested locale -> *Catalog

// GetCatalog returns the catalog best matching locale. Unknown locales get
// the en-US catalog.
func GetCatalog(locale string) *Catalog {
	requested := strings.TrimSpace(locale)
	if requested == "" {
		requested = i18ncatalog.BaseLocale
	}
	if cached, ok := catalogs.Load(requested); ok {
		return cached.(*Catalog)
	}

	resolved, messages := i18ncatalog.Default().MessagesWithFallback(requested, namespace)
	if cached, ok := catalogs.Load(resolved); ok {
		catalogs.Store(requested, cached)
		return cached.(*Catalog)
	}
	built, _ := catalogs.LoadOrStore(resolved, NewCatalog(resolved, messages))
	catalogs.Store(requested, built)
	return built.(*Catalog)
}

// NewCatalog compiles messages for locale. Templates that fail to parse are
// kept as literal text.
func NewCatalog(locale string, messages map[string]string) *Catalog {
	c := &Catalog{
		locale:    locale,
		templates: make(map[Code]*template.Template, len(messages)),
		raw:       make(map[Code]string, len(messages)),
	}
	for code, text := range messages {
		c.raw[code] = text
		tmpl, err := template.New(code).Option("missingkey=zero").Parse(text)
		if err != nil {
			continue
		}
		c.templates[code] = tmpl
	}
	return c
}

// Locale returns the locale of this catalog.
func (c *Catalog) Locale() string {
	return c.locale
}

// Format renders the message for code with metadata. Unknown codes render as
// the code itself; templates that fail render their literal text. Missing
// metadata keys render empty.
func (c *Catalog) Format(code Code, metadata map[string]string) string {
	text, ok := c.raw[code]
	if !ok {
		return code
	}
	tmpl, ok := c.templates[code]
	if !ok {
		return text
	}
	if metadata == nil {
		metadata = map[string]string{}
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, metadata); err != nil {
		return text
	}
	return buf.String()
}
