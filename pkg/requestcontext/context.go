// Package requestcontext provides HTTP-independent context accessors for
// request-scoped values.
//
// Middleware sets the values; services and handlers read them:
//
//	requestID := requestcontext.RequestID(ctx)
//	claimant := requestcontext.ClaimantID(ctx)
//	now := requestcontext.Now(ctx)
//
// Tests inject values directly:
//
//	ctx = requestcontext.WithTime(ctx, fixedTime)
package requestcontext

import (
	"context"
	"time"
)

type (
	requestIDKey   struct{}
	claimantIDKey  struct{}
	requestTimeKey struct{}
)

// RequestID returns the correlation id for the request, or "".
func RequestID(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDKey{}).(string); ok {
		return v
	}
	return ""
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// ClaimantID returns the authenticated claimant forwarded by the gateway, or "".
// Authentication itself happens upstream.
func ClaimantID(ctx context.Context) string {
	if v, ok := ctx.Value(claimantIDKey{}).(string); ok {
		return v
	}
	return ""
}

func WithClaimantID(ctx context.Context, claimantID string) context.Context {
	return context.WithValue(ctx, claimantIDKey{}, claimantID)
}

// Now returns the request-scoped time, falling back to time.Now.
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(requestTimeKey{}).(time.Time); ok {
		return t
	}
	return time.Now()
}

func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, requestTimeKey{}, t)
}
