package middleware

import (
	"context"
	"maps"
)

// Metadata carries arbitrary key-value annotations for one in-flight
// value, shared through the context by every wrapper below the provider.
type Metadata map[string]any

// Args flattens the metadata into an alternating key-value slice, the
// shape structured loggers take as trailing arguments.
func (m Metadata) Args() []any {
	args := make([]any, 0, len(m)*2)
	for k, v := range m {
		args = append(args, k, v)
	}
	return args
}

type metadataCtxKey struct{}

// MetadataFromContext returns the metadata attached by an enclosing
// [MetadataProvider], or nil when there is none.
func MetadataFromContext(ctx context.Context) Metadata {
	if ctx == nil {
		return nil
	}
	md, _ := ctx.Value(metadataCtxKey{}).(Metadata)
	return md
}

// MetadataProvider derives metadata from each input and attaches it to
// the context for the layers below. Nested providers merge into the
// outer map, with the inner provider winning key collisions.
func MetadataProvider[In, Out any](provider func(in In) Metadata) Middleware[In, Out] {
	return func(next ProcessFunc[In, Out]) ProcessFunc[In, Out] {
		return func(ctx context.Context, in In) (Out, error) {
			add := provider(in)
			if existing := MetadataFromContext(ctx); existing != nil {
				maps.Copy(existing, add)
				add = existing
			}
			return next(context.WithValue(ctx, metadataCtxKey{}, add), in)
		}
	}
}
