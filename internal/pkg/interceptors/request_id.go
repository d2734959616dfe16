package interceptors

import (
	"context"

	"google.golang.org/grpc/metadata"

	"github.com/jcmexdev/labeeb-storefront/internal/pkg/interceptors/constants"
)

// RequestIDFromContext returns the request id stored by the HTTP middleware
// or the gRPC interceptor, falling back to incoming metadata.
func RequestIDFromContext(ctx context.Context) string {
	return valueFromContext(ctx, constants.ContextKeyRequestID, constants.HeaderXRequestId)
}

// IdempotencyKeyFromContext returns the caller's idempotency key, if any.
func IdempotencyKeyFromContext(ctx context.Context) string {
	return valueFromContext(ctx, constants.ContextKeyIdempotencyKey, constants.HeaderXIdempotencyKey)
}

func valueFromContext(ctx context.Context, key any, header string) string {
	if v, ok := ctx.Value(key).(string); ok && v != "" {
		return v
	}
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if vals := md.Get(header); len(vals) > 0 {
			return vals[0]
		}
	}
	return ""
}
