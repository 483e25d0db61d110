package middleware

import (
	"net"
	"net/http"
	"strings"
)

// TrustedProxyIP replaces RemoteAddr with the rightmost valid X-Forwarded-For
// hop. Only that hop is written by the proxy in front of the service; entries
// to its left come from the client. Install it only behind such a proxy.
func TrustedProxyIP(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ip := rightmostForwarded(r.Header.Values("X-Forwarded-For")); ip != "" {
			r.RemoteAddr = ip
		}
		next.ServeHTTP(w, r)
	})
}

func rightmostForwarded(values []string) string {
	for i := len(values) - 1; i >= 0; i-- {
		parts := strings.Split(values[i], ",")
		for j := len(parts) - 1; j >= 0; j-- {
			ip := strings.TrimSpace(parts[j])
			if ip == "" {
				continue
			}
			if net.ParseIP(ip) == nil {
				return ""
			}
			return ip
		}
	}
	return ""
}
