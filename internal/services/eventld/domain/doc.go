// Package domain defines the event records, overrides and output document of
// the structured data engine.
package domain
