package context

import "context"

// requestIDKey is unexported so only this package can plant the value;
// a struct key cannot collide with string keys from other packages.
type requestIDKey struct{}

// WithRequestID attaches the request correlation id to the context.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// GetRequestID returns the correlation id, or "" when none was set.
func GetRequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
