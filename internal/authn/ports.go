package authn

import (
	"context"
	"net/http"

	"authapi/internal/domain"
)

// Directory resolves registered users. It is the only external
// collaborator of the login flow; lookups are compound-keyed by
// (email, tenant slug) so that the same email under a different tenant
// is indistinguishable from an unknown email.
type Directory interface {
	// FindByEmailAndTenantSlug returns the user matching both the email
	// and the tenant identified by slug, or domain.ErrNotFound.
	FindByEmailAndTenantSlug(ctx context.Context, email, tenantSlug string) (*domain.User, error)

	// FindByID returns the user with the given ID, or domain.ErrNotFound.
	// Used by who-am-I reads, never by login.
	FindByID(ctx context.Context, id string) (*domain.User, error)

	// Ping reports whether the directory backend is reachable.
	Ping(ctx context.Context) error
}

// Codec signs claims into transportable tokens and reverses the
// process. Verify collapses every failure to domain.ErrInvalidToken so
// callers cannot branch on the cause; Decode is the explicitly unsafe
// parse-without-trust variant.
type Codec interface {
	Sign(claims domain.Claims) (string, error)
	Verify(token string) (*domain.TokenClaims, error)
	Decode(token string) (*domain.TokenClaims, error)
}

// StatusWriter wraps http.ResponseWriter to capture the status code.
type StatusWriter struct {
	http.ResponseWriter
	Code int
}

func (sw *StatusWriter) WriteHeader(code int) {
	sw.Code = code
	sw.ResponseWriter.WriteHeader(code)
}

// ClaimsFromContext extracts the verified token claims from a request context.
func ClaimsFromContext(ctx context.Context) (*domain.TokenClaims, bool) {
	tc, ok := ctx.Value(claimsKey{}).(*domain.TokenClaims)
	return tc, ok
}

// ContextWithClaims stores verified token claims in the context.
func ContextWithClaims(ctx context.Context, tc *domain.TokenClaims) context.Context {
	return context.WithValue(ctx, claimsKey{}, tc)
}

type claimsKey struct{}

// RequestIDFromContext extracts the request ID from the context.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// ContextWithRequestID stores the request ID in the context.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

type requestIDKey struct{}
