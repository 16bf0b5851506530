package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"authapi/internal/authn"
	"authapi/internal/domain"
	"authapi/internal/platform/telemetry"
)

// Auth returns a middleware that validates JWT Bearer tokens with the
// given codec and stores the verified claims in the request context.
// Paths in publicPaths are exempt from authentication. A missing
// header, a malformed header and an invalid token all produce the same
// generic 401 response. The metrics parameter is optional; pass nil to
// skip metric recording.
func Auth(codec authn.Codec, publicPaths []string, m *telemetry.AuthMetrics) Middleware {
	public := make(map[string]struct{}, len(publicPaths))
	for _, p := range publicPaths {
		public[p] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := public[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			tokenStr, ok := extractBearerToken(r)
			if !ok {
				if m != nil {
					m.RecordTokenValidation(r.Context(), "failure")
				}
				writeAuthError(w, "unauthorized", "missing or malformed authorization header")
				return
			}

			claims, err := codec.Verify(tokenStr)
			if err != nil {
				slog.Debug("bearer token rejected", "error", err)
				if m != nil {
					m.RecordTokenValidation(r.Context(), "failure")
				}
				writeAuthError(w, "unauthorized", "invalid or expired token")
				return
			}

			if m != nil {
				m.RecordTokenValidation(r.Context(), "success")
			}
			ctx := authn.ContextWithClaims(r.Context(), claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func extractBearerToken(r *http.Request) (string, bool) {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return "", false
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}

func writeAuthError(w http.ResponseWriter, errCode, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	if err := json.NewEncoder(w).Encode(domain.ErrorResponse{
		Error:   errCode,
		Message: msg,
	}); err != nil {
		slog.Error("encoding error response", "error", err)
	}
}
