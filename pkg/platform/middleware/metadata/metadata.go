// Package metadata extracts client network and device signals from the request
// and stores them in context. The scoring engine treats these as behavioral
// inputs (IP reputation, device trust), so they must be captured before any
// handler runs.
package metadata

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/mssola/useragent"

	"nexolend/pkg/requestcontext"
)

// ClientMetadata extracts client IP, User-Agent, and a normalized device
// descriptor from the request and adds them to the context. Apply early in
// the chain.
func ClientMetadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := ClientIPFromRequest(r)
		ua := r.Header.Get("User-Agent")

		ctx := requestcontext.WithClientMetadata(r.Context(), ip, ua)
		ctx = requestcontext.WithDeviceFingerprint(ctx, DeviceDescriptor(ua))

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// DeviceDescriptor normalizes a raw User-Agent into a coarse, stable device
// string (platform/os/browser). Reputation lookups key on this descriptor, so
// it must stay stable across minor browser versions.
func DeviceDescriptor(rawUA string) string {
	if rawUA == "" {
		return "unknown"
	}
	ua := useragent.New(rawUA)
	name, _ := ua.Browser()
	kind := "desktop"
	if ua.Mobile() {
		kind = "mobile"
	} else if ua.Bot() {
		kind = "bot"
	}
	return strings.ToLower(fmt.Sprintf("%s/%s/%s", kind, ua.OS(), name))
}

// ClientIPFromRequest extracts the real client IP from the request, handling proxies and load balancers.
func ClientIPFromRequest(r *http.Request) string {
	// X-Forwarded-For can contain multiple IPs (client, proxy1, proxy2, ...);
	// the first is the original client.
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if idx := strings.Index(xff, ","); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	// RemoteAddr is "ip:port" (IPv6: "[::1]:port").
	if addr := r.RemoteAddr; addr != "" {
		if idx := strings.LastIndex(addr, ":"); idx != -1 {
			return addr[:idx]
		}
		return addr
	}

	return "unknown"
}
