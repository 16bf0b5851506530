// Package httpapi exposes the authentication core over HTTP. Routing
// and response shaping live here; the decision logic stays in authn.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"authapi/internal/authn"
	"authapi/internal/domain"
)

// Handler wires the auth endpoints onto an http.ServeMux.
type Handler struct {
	mux       *http.ServeMux
	logger    *slog.Logger
	service   *authn.Service
	directory authn.Directory
	validate  *validator.Validate
}

// NewHandler constructs the HTTP handler. Protected routes expect the
// Auth middleware to have placed verified claims in the context.
func NewHandler(logger *slog.Logger, service *authn.Service, directory authn.Directory) *Handler {
	h := &Handler{
		mux:       http.NewServeMux(),
		logger:    logger,
		service:   service,
		directory: directory,
		validate:  validator.New(),
	}

	h.mux.HandleFunc("POST /auth/login", h.handleLogin)
	h.mux.HandleFunc("GET /auth/verify", h.handleVerify)
	h.mux.HandleFunc("GET /auth/me", h.handleMe)
	h.mux.HandleFunc("GET /healthz", h.handleHealthz)
	h.mux.HandleFunc("GET /readyz", h.handleReadyz)

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// PublicPaths lists the routes exempt from bearer authentication.
func PublicPaths() []string {
	return []string{"/auth/login", "/healthz", "/readyz", "/metrics"}
}

type loginRequest struct {
	Email      string `json:"email" validate:"required,email"`
	TenantSlug string `json:"tenant_slug" validate:"required"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "bad_request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.writeError(w, http.StatusBadRequest, "bad_request", "email and tenant_slug are required")
		return
	}

	result, err := h.service.Login(r.Context(), req.Email, req.TenantSlug)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			h.writeError(w, http.StatusUnauthorized, "unauthorized", "invalid credentials")
			return
		}
		h.logger.Error("login failed", "error", err,
			"request_id", authn.RequestIDFromContext(r.Context()))
		h.writeError(w, http.StatusServiceUnavailable, "service_unavailable", "temporarily unable to process logins")
		return
	}

	h.writeJSON(w, http.StatusOK, result)
}

type verifyResponse struct {
	Valid     bool           `json:"valid"`
	Subject   string         `json:"sub"`
	TenantID  string         `json:"tenant_id"`
	Role      domain.Role    `json:"role"`
	Scopes    []domain.Scope `json:"scopes"`
	ExpiresAt string         `json:"expires_at"`
}

func (h *Handler) handleVerify(w http.ResponseWriter, r *http.Request) {
	claims, ok := authn.ClaimsFromContext(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
		return
	}

	h.writeJSON(w, http.StatusOK, verifyResponse{
		Valid:     true,
		Subject:   claims.Subject,
		TenantID:  claims.TenantID,
		Role:      claims.Role,
		Scopes:    claims.Scopes,
		ExpiresAt: claims.ExpiresAt.UTC().Format(time.RFC3339),
	})
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	claims, ok := authn.ClaimsFromContext(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
		return
	}

	info, err := h.service.WhoAmI(r.Context(), claims)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			h.writeError(w, http.StatusUnauthorized, "unauthorized", "invalid credentials")
			return
		}
		h.logger.Error("who-am-i failed", "error", err,
			"request_id", authn.RequestIDFromContext(r.Context()))
		h.writeError(w, http.StatusServiceUnavailable, "service_unavailable", "temporarily unable to resolve user")
		return
	}

	h.writeJSON(w, http.StatusOK, info)
}

func (h *Handler) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleReadyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.directory.Ping(ctx); err != nil {
		h.logger.Warn("readiness check failed", "error", err)
		h.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("encoding response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, code, msg string) {
	h.writeJSON(w, status, domain.ErrorResponse{Error: code, Message: msg})
}
