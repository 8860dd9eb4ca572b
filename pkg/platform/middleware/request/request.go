// Package request provides middleware that seeds the request context with a
// correlation id, the request time and the claimant forwarded by the gateway.
package request

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"nilgate/pkg/requestcontext"
)

const (
	HeaderRequestID  = "X-Request-ID"
	HeaderClaimantID = "X-Claimant-ID"

	maxRequestIDLen = 128
)

// Context captures request id, request time and claimant id. An incoming
// request id is reused when it is sane, otherwise a new one is generated and
// echoed back.
func Context(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := strings.TrimSpace(r.Header.Get(HeaderRequestID))
		if requestID == "" || len(requestID) > maxRequestIDLen {
			requestID = uuid.NewString()
		}
		w.Header().Set(HeaderRequestID, requestID)

		ctx := requestcontext.WithRequestID(r.Context(), requestID)
		ctx = requestcontext.WithTime(ctx, time.Now())
		if claimant := strings.TrimSpace(r.Header.Get(HeaderClaimantID)); claimant != "" {
			ctx = requestcontext.WithClaimantID(ctx, claimant)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
