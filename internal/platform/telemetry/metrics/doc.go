// Package metrics provides operational metrics collection.
//
// Collectors cover synthesis outcomes, build latency, locale cache hit
// rates and the number of fields and ticket tiers dropped as warnings.
// They are exposed in Prometheus format on /metrics.
package metrics
