// Package requestid assigns a correlation ID to every request, honoring an
// upstream X-Request-ID when the gateway already minted one.
package requestid

import (
	"net/http"

	"github.com/google/uuid"

	"nexolend/pkg/requestcontext"
)

// Header is the inbound/outbound correlation header.
const Header = "X-Request-ID"

// Middleware ensures every request carries a correlation ID in context and
// echoes it back on the response.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(Header)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(Header, requestID)
		ctx := requestcontext.WithRequestID(r.Context(), requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
