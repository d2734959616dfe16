// Package constants names the request metadata shared by the HTTP
// middlewares and the gRPC interceptors.
package constants

// contextKey keeps these keys apart from plain string keys set elsewhere.
type contextKey string

// Header names are lower-case so they double as gRPC metadata keys.
const (
	HeaderXRequestId      = "x-request-id"
	HeaderXIdempotencyKey = "x-idempotency-key"
	HeaderXCartSession    = "x-cart-session"
)

const (
	ContextKeyRequestID      contextKey = HeaderXRequestId
	ContextKeyIdempotencyKey contextKey = HeaderXIdempotencyKey
)
