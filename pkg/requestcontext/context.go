// Package requestcontext carries request-scoped values through context without
// depending on net/http. Middleware sets the values; services read them, so a
// service package never has to import transport code to tag its logs and
// audit events.
package requestcontext

import "context"

type requestIDKey struct{}

// WithRequestID returns a context carrying the given request ID.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the request ID set by middleware, or "".
func RequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok {
		return id
	}
	return ""
}
