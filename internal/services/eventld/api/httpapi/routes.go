package httpapi

// Route patterns served by the handler. Patterns use http.ServeMux syntax.
const (
	StructuredDataPattern = "/events/{eventID}/structured-data"
	PreviewPattern        = "/events/{eventID}/structured-data/preview"
	InvalidatePattern     = "/events/{eventID}/structured-data/invalidate"
	HeadPattern           = "/events/{eventID}/head"
	MetricsPath           = "/metrics"
	HealthPath            = "/healthz"
)
