package telemetry

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// ShutdownFunc releases telemetry resources.
type ShutdownFunc func(ctx context.Context) error

// Setup initializes OpenTelemetry with a Prometheus exporter.
// Returns a shutdown function that must be called on exit.
func Setup(ctx context.Context, serviceName string) (ShutdownFunc, error) {
	exporter, err := prometheus.New()
	if err != nil {
		return nil, fmt.Errorf("creating prometheus exporter: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	return provider.Shutdown, nil
}

// MetricsHandler returns an http.Handler that serves Prometheus metrics.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}

// AuthMetrics holds all OTel instruments for the auth API.
type AuthMetrics struct {
	httpRequestsTotal      otelmetric.Int64Counter
	httpRequestDuration    otelmetric.Float64Histogram
	loginsTotal            otelmetric.Int64Counter
	tokenValidationsTotal  otelmetric.Int64Counter
	directoryLookupsTotal  otelmetric.Int64Counter
	directoryLookupLatency otelmetric.Float64Histogram
}

// NewAuthMetrics creates and registers all auth API metrics.
func NewAuthMetrics() (*AuthMetrics, error) {
	meter := otel.Meter("authapi")
	m := &AuthMetrics{}
	var err error

	latencyBuckets := otelmetric.WithExplicitBucketBoundaries(
		0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0,
	)

	if m.httpRequestsTotal, err = meter.Int64Counter("auth_http_requests_total",
		otelmetric.WithDescription("Total HTTP requests")); err != nil {
		return nil, fmt.Errorf("creating http_requests_total: %w", err)
	}
	if m.httpRequestDuration, err = meter.Float64Histogram("auth_http_request_duration_seconds",
		otelmetric.WithDescription("HTTP request duration"), latencyBuckets); err != nil {
		return nil, fmt.Errorf("creating http_request_duration: %w", err)
	}
	if m.loginsTotal, err = meter.Int64Counter("auth_logins_total",
		otelmetric.WithDescription("Total login attempts")); err != nil {
		return nil, fmt.Errorf("creating logins_total: %w", err)
	}
	if m.tokenValidationsTotal, err = meter.Int64Counter("auth_token_validations_total",
		otelmetric.WithDescription("Total bearer token validations")); err != nil {
		return nil, fmt.Errorf("creating token_validations_total: %w", err)
	}
	if m.directoryLookupsTotal, err = meter.Int64Counter("auth_directory_lookups_total",
		otelmetric.WithDescription("Total user directory lookups")); err != nil {
		return nil, fmt.Errorf("creating directory_lookups_total: %w", err)
	}
	if m.directoryLookupLatency, err = meter.Float64Histogram("auth_directory_lookup_duration_seconds",
		otelmetric.WithDescription("User directory lookup duration"), latencyBuckets); err != nil {
		return nil, fmt.Errorf("creating directory_lookup_duration: %w", err)
	}

	return m, nil
}

// RecordHTTPRequest records an HTTP request metric.
func (m *AuthMetrics) RecordHTTPRequest(ctx context.Context, method, path string, status int, durationSec float64) {
	attrs := otelmetric.WithAttributes(
		methodAttr(method),
		pathAttr(path),
		statusAttr(status),
	)
	m.httpRequestsTotal.Add(ctx, 1, attrs)
	m.httpRequestDuration.Record(ctx, durationSec, attrs)
}

// RecordLogin records a login attempt outcome ("success", "rejected" or "error").
func (m *AuthMetrics) RecordLogin(ctx context.Context, result string) {
	m.loginsTotal.Add(ctx, 1, otelmetric.WithAttributes(resultAttr(result)))
}

// RecordTokenValidation records a bearer token validation result.
func (m *AuthMetrics) RecordTokenValidation(ctx context.Context, result string) {
	m.tokenValidationsTotal.Add(ctx, 1, otelmetric.WithAttributes(resultAttr(result)))
}

// RecordDirectoryLookup records a user directory lookup.
func (m *AuthMetrics) RecordDirectoryLookup(ctx context.Context, result string, durationSec float64) {
	attrs := otelmetric.WithAttributes(resultAttr(result))
	m.directoryLookupsTotal.Add(ctx, 1, attrs)
	m.directoryLookupLatency.Record(ctx, durationSec, attrs)
}
