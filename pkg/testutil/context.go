package testutil

import (
	"net/http"
	"time"

	"nilgate/pkg/requestcontext"
)

// WithClaimant simulates the gateway-forwarded claimant identity.
func WithClaimant(req *http.Request, claimantID string) *http.Request {
	return req.WithContext(requestcontext.WithClaimantID(req.Context(), claimantID))
}

// WithTime pins the request clock.
func WithTime(req *http.Request, now time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), now))
}
