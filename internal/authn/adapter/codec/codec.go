// Package codec signs and verifies the HS256 tokens issued at login.
// Tokens are standard three-segment JWTs, so any downstream service
// holding the shared secret and the same issuer/audience configuration
// can validate them independently.
package codec

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"authapi/internal/domain"
)

// Config holds the signing parameters, read once at startup.
type Config struct {
	Secret   string
	TTL      time.Duration
	Issuer   string
	Audience string
}

// Codec signs claims into JWTs and verifies incoming tokens against a
// symmetric secret. It is stateless and safe for concurrent use.
type Codec struct {
	secret   []byte
	ttl      time.Duration
	issuer   string
	audience string
	now      func() time.Time
}

// New creates a Codec. A missing secret or non-positive TTL is a
// configuration fault: the process must refuse to start rather than
// sign with undefined behavior. clock is injectable for deterministic
// testing; pass time.Now in production.
func New(cfg Config, clock func() time.Time) (*Codec, error) {
	if cfg.Secret == "" {
		return nil, errors.New("codec: signing secret must not be empty")
	}
	if cfg.TTL <= 0 {
		return nil, fmt.Errorf("codec: token TTL must be positive, got %s", cfg.TTL)
	}
	if clock == nil {
		clock = time.Now
	}
	return &Codec{
		secret:   []byte(cfg.Secret),
		ttl:      cfg.TTL,
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
		now:      clock,
	}, nil
}

// wireClaims is the JSON payload shape on the wire.
type wireClaims struct {
	TenantID string   `json:"tenant_id"`
	Role     string   `json:"role"`
	Scopes   []string `json:"scopes"`
	jwt.RegisteredClaims
}

// Sign encodes the claims into a signed token. Issuer, audience,
// issued-at and expiry are added from configuration and the clock.
// An incomplete claims value is a programming error in the caller.
func (c *Codec) Sign(claims domain.Claims) (string, error) {
	if claims.Subject == "" || claims.TenantID == "" {
		return "", errors.New("codec: subject and tenant_id are required")
	}
	if !claims.Role.Valid() {
		return "", fmt.Errorf("codec: unknown role %q", claims.Role)
	}

	now := c.now()
	scopes := make([]string, len(claims.Scopes))
	for i, s := range claims.Scopes {
		scopes[i] = string(s)
	}

	wc := wireClaims{
		TenantID: claims.TenantID,
		Role:     string(claims.Role),
		Scopes:   scopes,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   claims.Subject,
			Issuer:    c.issuer,
			Audience:  jwt.ClaimStrings{c.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, wc).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("codec: signing token: %w", err)
	}
	return token, nil
}

// Verify parses and validates a token: structure, HS256 signature,
// issuer, audience and expiry, in that order. Every failure collapses
// to domain.ErrInvalidToken; the specific cause is logged at debug
// level but never surfaced to the caller.
func (c *Codec) Verify(token string) (*domain.TokenClaims, error) {
	var wc wireClaims
	parsed, err := jwt.ParseWithClaims(token, &wc,
		func(t *jwt.Token) (any, error) { return c.secret, nil },
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(c.issuer),
		jwt.WithAudience(c.audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		slog.Debug("token verification failed", "error", err)
		return nil, domain.ErrInvalidToken
	}
	if !parsed.Valid {
		return nil, domain.ErrInvalidToken
	}

	tc, err := wc.toTokenClaims()
	if err != nil {
		slog.Debug("token claims malformed", "error", err)
		return nil, domain.ErrInvalidToken
	}
	return tc, nil
}

// Decode parses the payload without checking signature, issuer,
// audience or expiry. It exists for read-without-trust scenarios only
// and must never feed an authorization decision; use Verify for those.
func (c *Codec) Decode(token string) (*domain.TokenClaims, error) {
	var wc wireClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &wc); err != nil {
		return nil, domain.ErrInvalidToken
	}
	tc, err := wc.toTokenClaims()
	if err != nil {
		return nil, domain.ErrInvalidToken
	}
	return tc, nil
}

func (wc *wireClaims) toTokenClaims() (*domain.TokenClaims, error) {
	if wc.Subject == "" {
		return nil, errors.New("missing subject")
	}
	if wc.TenantID == "" {
		return nil, errors.New("missing tenant_id")
	}
	role := domain.Role(wc.Role)
	if !role.Valid() {
		return nil, fmt.Errorf("unknown role %q", wc.Role)
	}

	scopes := make([]domain.Scope, len(wc.Scopes))
	for i, s := range wc.Scopes {
		scopes[i] = domain.Scope(s)
	}

	tc := &domain.TokenClaims{
		Subject:  wc.Subject,
		TenantID: wc.TenantID,
		Role:     role,
		Scopes:   scopes,
		Issuer:   wc.Issuer,
	}
	if len(wc.Audience) > 0 {
		tc.Audience = wc.Audience[0]
	}
	if wc.IssuedAt != nil {
		tc.IssuedAt = wc.IssuedAt.Time
	}
	if wc.ExpiresAt != nil {
		tc.ExpiresAt = wc.ExpiresAt.Time
	}
	return tc, nil
}
