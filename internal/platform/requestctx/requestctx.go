// Package requestctx carries request-scoped correlation values through context.
package requestctx

import "context"

// requestIDContextKey is the context key for the inbound request id.
type requestIDContextKey struct{}

// WithRequestID stores a request identifier in context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, requestIDContextKey{}, requestID)
}

// RequestIDFromContext returns the request identifier stored in context.
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	value, _ := ctx.Value(requestIDContextKey{}).(string)
	return value
}
