package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"authapi/internal/authn"
)

// Logging returns a middleware that logs each request using slog.
// Raw tokens and credentials never appear in log output.
func Logging(logger *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &authn.StatusWriter{ResponseWriter: w, Code: http.StatusOK}

			next.ServeHTTP(sw, r)

			reqID := authn.RequestIDFromContext(r.Context())
			var subject, tenantID string
			if claims, ok := authn.ClaimsFromContext(r.Context()); ok {
				subject = claims.Subject
				tenantID = claims.TenantID
			}

			logger.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", sw.Code,
				"duration_ms", float64(time.Since(start).Microseconds())/1000.0,
				"request_id", reqID,
				"subject", subject,
				"tenant_id", tenantID,
				"remote_addr", r.RemoteAddr,
			)
		})
	}
}
