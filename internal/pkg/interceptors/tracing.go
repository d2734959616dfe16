// Package interceptors carries request metadata (request id, idempotency key)
// into handler contexts for the gRPC listener and shares the lookups with the
// HTTP layer.
package interceptors

import (
	"context"
	"log/slog"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"

	"github.com/jcmexdev/labeeb-storefront/internal/pkg/interceptors/constants"
)

func TraceServerInterceptor() grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (any, error) {
		ctx = WithIncomingMetadata(ctx)

		slog.DebugContext(ctx, "grpc call",
			"method", info.FullMethod,
			"request_id", RequestIDFromContext(ctx),
			"idempotency_key", IdempotencyKeyFromContext(ctx),
		)

		return handler(ctx, req)
	}
}

// WithIncomingMetadata copies the request id and idempotency key from gRPC
// metadata into typed context values.
func WithIncomingMetadata(ctx context.Context) context.Context {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ctx
	}
	if ids := md.Get(constants.HeaderXRequestId); len(ids) > 0 {
		ctx = context.WithValue(ctx, constants.ContextKeyRequestID, ids[0])
	}
	if keys := md.Get(constants.HeaderXIdempotencyKey); len(keys) > 0 {
		ctx = context.WithValue(ctx, constants.ContextKeyIdempotencyKey, keys[0])
	}
	return ctx
}
