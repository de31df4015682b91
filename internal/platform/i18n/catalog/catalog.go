// Package catalog loads the embedded per-locale message catalogs.
//
// Catalog files live at locales/<locale>/<namespace>.yaml and repeat their
// locale and namespace in the document so a misplaced file fails to load.
package catalog

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"path"
	"slices"
	"strings"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// BaseLocale is the locale every other catalog falls back to.
const BaseLocale = "en-US"

const catalogGlob = "locales/*/*.yaml"

type catalogFile struct {
	Locale    string            `yaml:"locale"`
	Namespace string            `yaml:"namespace"`
	Messages  map[string]string `yaml:"messages"`
}

type namespaces map[string]map[string]string

// Bundle holds the messages of every loaded locale. It is read-only after
// loading.
type Bundle struct {
	locales map[string]namespaces
	tags    []string
	matcher language.Matcher
}

//go:embed locales/*/*.yaml
var embedded embed.FS

var defaultBundle = mustLoad(embedded)

// Default returns the bundle built from the embedded catalogs.
func Default() *Bundle {
	return defaultBundle
}

// LoadEmbedded loads the catalogs compiled into the binary.
func LoadEmbedded() (*Bundle, error) {
	return LoadFromFS(embedded)
}

// LoadFromFS loads every catalog file under locales/ in fsys.
func LoadFromFS(fsys fs.FS) (*Bundle, error) {
	paths, err := fs.Glob(fsys, catalogGlob)
	if err != nil {
		return nil, fmt.Errorf("glob catalogs: %w", err)
	}
	if len(paths) == 0 {
		return nil, errors.New("no catalog files found")
	}
	slices.Sort(paths)

	b := &Bundle{locales: map[string]namespaces{}}
	for _, p := range paths {
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return nil, fmt.Errorf("read catalog %s: %w", p, err)
		}
		file, err := decodeFile(data)
		if err != nil {
			return nil, fmt.Errorf("parse catalog %s: %w", p, err)
		}
		if err := b.add(p, file); err != nil {
			return nil, fmt.Errorf("catalog %s: %w", p, err)
		}
	}
	if !b.HasLocale(BaseLocale) {
		return nil, fmt.Errorf("base locale %s has no catalog", BaseLocale)
	}
	b.buildMatcher()
	return b, nil
}

func mustLoad(fsys fs.FS) *Bundle {
	b, err := LoadFromFS(fsys)
	if err != nil {
		panic(err)
	}
	return b
}

func decodeFile(data []byte) (catalogFile, error) {
	var file catalogFile
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&file); err != nil {
		return catalogFile{}, err
	}
	return file, nil
}

func (b *Bundle) add(p string, file catalogFile) error {
	dirLocale := path.Base(path.Dir(p))
	fileNamespace := strings.TrimSuffix(path.Base(p), path.Ext(p))

	locale := strings.TrimSpace(file.Locale)
	namespace := strings.TrimSpace(file.Namespace)
	switch {
	case locale != dirLocale:
		return fmt.Errorf("locale %q does not match directory %q", locale, dirLocale)
	case namespace != fileNamespace:
		return fmt.Errorf("namespace %q does not match file name %q", namespace, fileNamespace)
	case len(file.Messages) == 0:
		return errors.New("no messages")
	}
	if _, err := language.Parse(locale); err != nil {
		return fmt.Errorf("locale %q: %w", locale, err)
	}

	byNamespace := b.locales[locale]
	if byNamespace == nil {
		byNamespace = namespaces{}
		b.locales[locale] = byNamespace
	}
	if _, dup := byNamespace[namespace]; dup {
		return fmt.Errorf("namespace %q loaded twice for %s", namespace, locale)
	}
	messages := make(map[string]string, len(file.Messages))
	for key, text := range file.Messages {
		key = strings.TrimSpace(key)
		if key == "" {
			return errors.New("blank message key")
		}
		messages[key] = text
	}
	byNamespace[namespace] = messages
	return nil
}

// buildMatcher puts BaseLocale first so unmatched tags resolve to it.
func (b *Bundle) buildMatcher() {
	b.tags = append([]string{BaseLocale}, slices.DeleteFunc(b.Locales(), func(locale string) bool {
		return locale == BaseLocale
	})...)
	supported := make([]language.Tag, len(b.tags))
	for i, locale := range b.tags {
		supported[i] = language.MustParse(locale)
	}
	b.matcher = language.NewMatcher(supported)
}

// HasLocale reports whether a catalog exists for exactly locale.
func (b *Bundle) HasLocale(locale string) bool {
	if b == nil {
		return false
	}
	_, ok := b.locales[strings.TrimSpace(locale)]
	return ok
}

// Locales returns the loaded locales, sorted.
func (b *Bundle) Locales() []string {
	if b == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(b.locales))
}

// Match returns the loaded locale closest to the requested tag, or
// BaseLocale when nothing is close.
func (b *Bundle) Match(locale string) string {
	locale = strings.TrimSpace(locale)
	if b == nil || b.matcher == nil {
		return BaseLocale
	}
	if b.HasLocale(locale) {
		return locale
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return BaseLocale
	}
	if _, index, confidence := b.matcher.Match(tag); confidence != language.No {
		return b.tags[index]
	}
	return BaseLocale
}

// Messages returns a copy of one namespace for exactly locale. Missing
// locales or namespaces yield an empty map.
func (b *Bundle) Messages(locale, namespace string) map[string]string {
	if b == nil {
		return map[string]string{}
	}
	messages := b.locales[strings.TrimSpace(locale)][strings.TrimSpace(namespace)]
	if messages == nil {
		return map[string]string{}
	}
	return maps.Clone(messages)
}

// MessagesWithFallback matches locale, returning the matched locale and its
// namespace. A namespace missing from the match falls back to BaseLocale.
func (b *Bundle) MessagesWithFallback(locale, namespace string) (string, map[string]string) {
	resolved := b.Match(locale)
	if messages := b.Messages(resolved, namespace); len(messages) > 0 {
		return resolved, messages
	}
	return BaseLocale, b.Messages(BaseLocale, namespace)
}
