// Package synthesis orchestrates document construction: it loads an event
// from a Source, resolves fields, maps ticket tiers to offers, assembles the
// JSON-LD document and memoizes it in the locale cache.
//
// The only side effects on the synthesis path are cache writes, spans,
// metrics and one log line per computed document carrying its warnings.
package synthesis
