// mockdataapi is a stand-in for the downstream data API. It shares no
// code path with the auth server beyond the codec package: it verifies
// bearer tokens using only the shared secret, issuer and audience, then
// scopes every read to the tenant_id claim and restricts deletes to
// admins. This is the independent-verifier contract the token wire
// format promises.
package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"authapi/internal/authn"
	"authapi/internal/authn/adapter/codec"
	"authapi/internal/authn/middleware"
	"authapi/internal/domain"
	"authapi/internal/platform/server"
)

type note struct {
	ID       string `json:"id"`
	TenantID string `json:"tenant_id"`
	Title    string `json:"title"`
}

func main() {
	addr := envOr("DATA_ADDR", ":8085")
	secret := os.Getenv("JWT_SECRET")
	issuer := envOr("JWT_ISSUER", "auth-api")
	audience := envOr("JWT_AUDIENCE", "data-api")

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	tokenCodec, err := codec.New(codec.Config{
		Secret:   secret,
		TTL:      15 * time.Minute,
		Issuer:   issuer,
		Audience: audience,
	}, time.Now)
	if err != nil {
		slog.Error("codec initialization failed", "error", err)
		os.Exit(1)
	}

	notes := []note{
		{ID: "n-0001", TenantID: "t-demo-0001", Title: "Prod migration checklist"},
		{ID: "n-0002", TenantID: "t-demo-0001", Title: "Onboarding runbook"},
		{ID: "n-0003", TenantID: "t-demo-0002", Title: "Q3 planning"},
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /v1/notes", func(w http.ResponseWriter, r *http.Request) {
		claims, ok := authn.ClaimsFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
			return
		}
		if !claims.HasScope("notes:read") {
			writeError(w, http.StatusForbidden, "forbidden", "insufficient permissions")
			return
		}

		// Row-level scoping: only the caller's tenant is visible.
		visible := make([]note, 0)
		for _, n := range notes {
			if n.TenantID == claims.TenantID {
				visible = append(visible, n)
			}
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"notes": visible})
	})

	mux.HandleFunc("DELETE /v1/notes/{id}", func(w http.ResponseWriter, r *http.Request) {
		claims, ok := authn.ClaimsFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
			return
		}
		if !claims.HasScope("notes:write") || claims.Role != domain.RoleAdmin {
			writeError(w, http.StatusForbidden, "forbidden", "only admins may delete notes")
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"deleted": r.PathValue("id")})
	})

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok", "service": "mock-data-api"})
	})

	handler := middleware.Chain(
		mux,
		middleware.RequestID,
		middleware.Logging(logger),
		middleware.Recovery,
		middleware.Auth(tokenCodec, []string{"/healthz"}, nil),
	)

	srv := server.New(addr, handler)
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	slog.Info("mock data api starting", "addr", addr, "issuer", issuer, "audience", audience)

	if err := srv.Run(ctx); err != nil {
		slog.Error("server error", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(domain.ErrorResponse{Error: code, Message: msg})
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
