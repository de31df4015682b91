package domain

import "bytes"

// Document is an assembled JSON-LD payload for one (event, locale, version).
// It is immutable: accessors hand out copies.
type Document struct {
	eventID string
	locale  string
	version string
	body    []byte
}

// NewDocument wraps an encoded body. The body is copied.
func NewDocument(eventID, locale, version string, body []byte) Document {
	return Document{
		eventID: eventID,
		locale:  locale,
		version: version,
		body:    bytes.Clone(body),
	}
}

// EventID returns the event the document describes.
func (d Document) EventID() string { return d.eventID }

// Locale returns the locale the document was resolved for.
func (d Document) Locale() string { return d.locale }

// Version returns the content version the document was built from.
func (d Document) Version() string { return d.version }

// IsZero reports whether the document is empty.
func (d Document) IsZero() bool { return len(d.body) == 0 }

// JSON returns a copy of the encoded JSON-LD.
func (d Document) JSON() []byte { return bytes.Clone(d.body) }

// String returns the encoded JSON-LD.
func (d Document) String() string { return string(d.body) }

// MarshalJSON embeds the document verbatim.
func (d Document) MarshalJSON() ([]byte, error) {
	if len(d.body) == 0 {
		return []byte("null"), nil
	}
	return bytes.Clone(d.body), nil
}
