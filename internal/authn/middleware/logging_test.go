package middleware_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"authapi/internal/authn"
	"authapi/internal/authn/middleware"
	"authapi/internal/domain"
)

func TestLoggingRecordsRequest(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})
	handler := middleware.Logging(logger)(inner)

	req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	req = req.WithContext(authn.ContextWithRequestID(req.Context(), "req-1"))
	handler.ServeHTTP(httptest.NewRecorder(), req)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log output is not JSON: %v", err)
	}
	if entry["method"] != "POST" {
		t.Errorf("expected method POST, got %v", entry["method"])
	}
	if entry["path"] != "/auth/login" {
		t.Errorf("expected path /auth/login, got %v", entry["path"])
	}
	if entry["status"] != float64(http.StatusCreated) {
		t.Errorf("expected status 201, got %v", entry["status"])
	}
	if entry["request_id"] != "req-1" {
		t.Errorf("expected request_id req-1, got %v", entry["request_id"])
	}
}

func TestLoggingIncludesSubject(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	claims := &domain.TokenClaims{Subject: "u-1", TenantID: "t-1", Role: domain.RoleEditor}
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	handler := middleware.Logging(logger)(inner)

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req = req.WithContext(authn.ContextWithClaims(req.Context(), claims))
	handler.ServeHTTP(httptest.NewRecorder(), req)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log output is not JSON: %v", err)
	}
	if entry["subject"] != "u-1" {
		t.Errorf("expected subject u-1, got %v", entry["subject"])
	}
	if entry["tenant_id"] != "t-1" {
		t.Errorf("expected tenant_id t-1, got %v", entry["tenant_id"])
	}
}
