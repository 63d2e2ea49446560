package store

import "context"

type primaryReadKey struct{}

// WithPrimaryRead asks backends with read replicas to serve reads on ctx from the primary.
func WithPrimaryRead(ctx context.Context) context.Context {
	return context.WithValue(ctx, primaryReadKey{}, true)
}

// IsPrimaryRead reports whether ctx was marked by WithPrimaryRead.
func IsPrimaryRead(ctx context.Context) bool {
	v, _ := ctx.Value(primaryReadKey{}).(bool)
	return v
}
