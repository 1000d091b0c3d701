package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// RequestLogger writes one structured line per API request.
func RequestLogger(next http.Handler) http.Handler {
	log := logrus.WithField("component", "http")
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if shouldSkipLogging(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		wrapped := newStatusRecorder(w)

		next.ServeHTTP(wrapped, r)

		fields := logrus.Fields{
			"method":      r.Method,
			"path":        sanitizePath(r.URL.Path),
			"status":      wrapped.statusCode,
			"duration_ms": float64(time.Since(start).Microseconds()) / 1000.0,
			"bytes":       wrapped.bytesWritten,
			"ip":          getClientIP(r),
			"user_agent":  r.UserAgent(),
		}

		entry := log.WithFields(fields)
		switch {
		case wrapped.statusCode >= 500:
			entry.Error("request")
		case wrapped.statusCode >= 400:
			entry.Warn("request")
		default:
			entry.Info("request")
		}
	})
}

func shouldSkipLogging(path string) bool {
	skipPaths := []string{
		"/health",
		"/metrics",
		"/favicon.ico",
	}

	for _, skip := range skipPaths {
		if strings.HasPrefix(path, skip) {
			return true
		}
	}
	return false
}

func sanitizePath(path string) string {
	if len(path) > 500 {
		path = path[:500]
	}
	return path
}

// getClientIP prefers proxy headers over the socket address.
func getClientIP(r *http.Request) string {
	xff := r.Header.Get("X-Forwarded-For")
	if xff != "" {
		if idx := strings.Index(xff, ","); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}

	xri := r.Header.Get("X-Real-IP")
	if xri != "" {
		return strings.TrimSpace(xri)
	}

	ip := r.RemoteAddr
	if idx := strings.LastIndex(ip, ":"); idx != -1 {
		ip = ip[:idx]
	}
	return ip
}
