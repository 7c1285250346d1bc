package repositorycache

import "context"

type skipCacheContextKey struct{}

// SkipCache returns a context whose reads bypass the cache. Use it for
// criteria built from closures: closures created by the same function literal
// serialize to the same key whatever values they capture.
func SkipCache(ctx context.Context) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, skipCacheContextKey{}, true)
}

func skipCache(ctx context.Context) bool {
	if ctx == nil {
		return false
	}
	skip, _ := ctx.Value(skipCacheContextKey{}).(bool)
	return skip
}
