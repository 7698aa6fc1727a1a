package utils

import (
	"net/http"
	"strings"
)

// ClientIP extracts the originating client address from proxy headers.
// The first X-Forwarded-For entry wins, then X-Real-IP. Trusted-proxy
// filtering is handled upstream by the deployment, not here.
func ClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		parts := strings.Split(fwd, ",")
		if ip := strings.TrimSpace(parts[0]); ip != "" {
			return ip
		}
	}

	if realIP := strings.TrimSpace(r.Header.Get("X-Real-IP")); realIP != "" {
		return realIP
	}

	return "unknown"
}
