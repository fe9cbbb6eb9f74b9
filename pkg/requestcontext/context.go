// Package requestcontext provides HTTP-independent context accessors for request-scoped values.
//
// Values are set by middleware but consumed by services. Keeping this package
// free of net/http dependencies lets services import only what they need
// without pulling in HTTP-related code.
package requestcontext

import (
	"context"
	"time"
)

// Context key types (unexported for encapsulation).
type (
	actorIDKey           struct{}
	actorRoleKey         struct{}
	requestIDKey         struct{}
	requestTimeKey       struct{}
	clientIPKey          struct{}
	userAgentKey         struct{}
	deviceFingerprintKey struct{}
)

// Exported context keys for tests that need raw context.WithValue.
var (
	ContextKeyActorID           = actorIDKey{}
	ContextKeyActorRole         = actorRoleKey{}
	ContextKeyRequestID         = requestIDKey{}
	ContextKeyRequestTime       = requestTimeKey{}
	ContextKeyClientIP          = clientIPKey{}
	ContextKeyUserAgent         = userAgentKey{}
	ContextKeyDeviceFingerprint = deviceFingerprintKey{}
)

// WithActorID records the authenticated caller (admin or service principal).
func WithActorID(ctx context.Context, actorID string) context.Context {
	return context.WithValue(ctx, actorIDKey{}, actorID)
}

// ActorID returns the authenticated caller ID or "" when unauthenticated.
func ActorID(ctx context.Context) string {
	if v, ok := ctx.Value(actorIDKey{}).(string); ok {
		return v
	}
	return ""
}

// WithActorRole records the authenticated caller's role claim.
func WithActorRole(ctx context.Context, role string) context.Context {
	return context.WithValue(ctx, actorRoleKey{}, role)
}

// ActorRole returns the caller's role or "" when unauthenticated.
func ActorRole(ctx context.Context) string {
	if v, ok := ctx.Value(actorRoleKey{}).(string); ok {
		return v
	}
	return ""
}

// WithRequestID stores the correlation ID for the request.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// RequestID returns the correlation ID or "" when absent.
func RequestID(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDKey{}).(string); ok {
		return v
	}
	return ""
}

// WithTime pins the request-scoped clock so every timestamp within one request
// agrees (snapshots, ledger entries, explanations).
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, requestTimeKey{}, t)
}

// Now returns the request-scoped time, falling back to the wall clock when the
// middleware did not run (tests, background jobs).
func Now(ctx context.Context) time.Time {
	if v, ok := ctx.Value(requestTimeKey{}).(time.Time); ok {
		return v
	}
	return time.Now()
}

// WithClientMetadata injects client IP and User-Agent into a context.
// Useful for service unit tests that don't run the full HTTP middleware chain.
func WithClientMetadata(ctx context.Context, clientIP, userAgent string) context.Context {
	ctx = context.WithValue(ctx, clientIPKey{}, clientIP)
	return context.WithValue(ctx, userAgentKey{}, userAgent)
}

// ClientIP returns the client IP or "" when absent.
func ClientIP(ctx context.Context) string {
	if v, ok := ctx.Value(clientIPKey{}).(string); ok {
		return v
	}
	return ""
}

// UserAgent returns the raw User-Agent header or "" when absent.
func UserAgent(ctx context.Context) string {
	if v, ok := ctx.Value(userAgentKey{}).(string); ok {
		return v
	}
	return ""
}

// WithDeviceFingerprint stores the normalized device descriptor computed by the
// metadata middleware.
func WithDeviceFingerprint(ctx context.Context, fp string) context.Context {
	return context.WithValue(ctx, deviceFingerprintKey{}, fp)
}

// DeviceFingerprint returns the normalized device descriptor or "" when absent.
func DeviceFingerprint(ctx context.Context) string {
	if v, ok := ctx.Value(deviceFingerprintKey{}).(string); ok {
		return v
	}
	return ""
}
