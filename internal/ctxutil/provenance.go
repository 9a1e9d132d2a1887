package ctxutil

import "context"

type provenanceKey struct{}

// Origin identifies the client a request came from.
type Origin struct {
	IP        string
	UserAgent string
}

// WithOrigin attaches request provenance to the context.
func WithOrigin(ctx context.Context, o Origin) context.Context {
	return context.WithValue(ctx, provenanceKey{}, o)
}

// OriginFromContext returns the request provenance, zero if not set.
func OriginFromContext(ctx context.Context) Origin {
	if o, ok := ctx.Value(provenanceKey{}).(Origin); ok {
		return o
	}
	return Origin{}
}
