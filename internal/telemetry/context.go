package telemetry

import "context"

// opIDKey is the context key type used to store an operation ID.
type opIDKey struct{}

// WithOpID returns a child context carrying the ID of one send-message
// operation, so every event it emits can be correlated.
// If ctx is nil, context.Background() is used.
func WithOpID(ctx context.Context, id string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, opIDKey{}, id)
}

// OpIDFromContext returns the operation ID from ctx, if present.
// Returns "", false if the value is missing or not a non-empty string.
func OpIDFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	v := ctx.Value(opIDKey{})
	s, ok := v.(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}
