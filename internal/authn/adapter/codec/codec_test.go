package codec_test

import (
	"encoding/base64"
	"errors"
	"slices"
	"strings"
	"testing"
	"time"

	"authapi/internal/authn/adapter/codec"
	"authapi/internal/domain"
)

const (
	testSecret   = "unit-test-secret"
	testIssuer   = "auth-api-test"
	testAudience = "data-api-test"
	testTTL      = 15 * time.Minute
)

var testClaims = domain.Claims{
	Subject:  "u-0001",
	TenantID: "t-0001",
	Role:     domain.RoleAdmin,
	Scopes:   []domain.Scope{"notes:read", "notes:write"},
}

// newCodec builds a codec with a controllable clock. Advancing the
// returned *time.Time moves the codec's view of "now".
func newCodec(t *testing.T, cfg codec.Config) (*codec.Codec, *time.Time) {
	t.Helper()
	current := time.Unix(1700000000, 0)
	c, err := codec.New(cfg, func() time.Time { return current })
	if err != nil {
		t.Fatalf("codec.New: %v", err)
	}
	return c, &current
}

func defaultConfig() codec.Config {
	return codec.Config{
		Secret:   testSecret,
		TTL:      testTTL,
		Issuer:   testIssuer,
		Audience: testAudience,
	}
}

func TestNewRejectsBadConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  codec.Config
	}{
		{"empty secret", codec.Config{TTL: testTTL, Issuer: testIssuer, Audience: testAudience}},
		{"zero ttl", codec.Config{Secret: testSecret, Issuer: testIssuer, Audience: testAudience}},
		{"negative ttl", codec.Config{Secret: testSecret, TTL: -time.Minute}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := codec.New(tt.cfg, nil); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestSignVerifyRoundTrip(t *testing.T) {
	c, now := newCodec(t, defaultConfig())

	token, err := c.Sign(testClaims)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if parts := strings.Split(token, "."); len(parts) != 3 {
		t.Fatalf("expected 3 token segments, got %d", len(parts))
	}

	got, err := c.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}

	if got.Subject != testClaims.Subject {
		t.Errorf("subject: expected %q, got %q", testClaims.Subject, got.Subject)
	}
	if got.TenantID != testClaims.TenantID {
		t.Errorf("tenant_id: expected %q, got %q", testClaims.TenantID, got.TenantID)
	}
	if got.Role != testClaims.Role {
		t.Errorf("role: expected %q, got %q", testClaims.Role, got.Role)
	}
	if len(got.Scopes) != 2 || got.Scopes[0] != "notes:read" || got.Scopes[1] != "notes:write" {
		t.Errorf("unexpected scopes: %v", got.Scopes)
	}
	if got.Issuer != testIssuer {
		t.Errorf("issuer: expected %q, got %q", testIssuer, got.Issuer)
	}
	if got.Audience != testAudience {
		t.Errorf("audience: expected %q, got %q", testAudience, got.Audience)
	}
	if !got.IssuedAt.Equal(*now) {
		t.Errorf("issued_at: expected %v, got %v", *now, got.IssuedAt)
	}
	if !got.ExpiresAt.Equal(now.Add(testTTL)) {
		t.Errorf("expires_at: expected %v, got %v", now.Add(testTTL), got.ExpiresAt)
	}
}

func TestSignRejectsIncompleteClaims(t *testing.T) {
	c, _ := newCodec(t, defaultConfig())

	tests := []struct {
		name   string
		claims domain.Claims
	}{
		{"empty subject", domain.Claims{TenantID: "t", Role: domain.RoleAdmin}},
		{"empty tenant", domain.Claims{Subject: "u", Role: domain.RoleAdmin}},
		{"unknown role", domain.Claims{Subject: "u", TenantID: "t", Role: "superuser"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := c.Sign(tt.claims); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestVerifyRejectsTamperedToken(t *testing.T) {
	c, _ := newCodec(t, defaultConfig())
	token, err := c.Sign(testClaims)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	// Re-encode the payload segment with an elevated role. The signature
	// no longer covers the payload, so verification must fail.
	parts := strings.Split(token, ".")
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		t.Fatalf("decoding payload: %v", err)
	}
	altered := strings.Replace(string(payload), `"tenant_id":"t-0001"`, `"tenant_id":"t-9999"`, 1)
	parts[1] = base64.RawURLEncoding.EncodeToString([]byte(altered))

	if _, err := c.Verify(strings.Join(parts, ".")); !errors.Is(err, domain.ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	c, _ := newCodec(t, defaultConfig())
	token, _ := c.Sign(testClaims)

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"not a token", "definitely-not-a-jwt"},
		{"two segments", "abc.def"},
		{"truncated", token[:len(token)-10]},
		{"alg none", "eyJhbGciOiJub25lIiwidHlwIjoiSldUIn0.eyJzdWIiOiJ0ZXN0In0."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := c.Verify(tt.token); !errors.Is(err, domain.ErrInvalidToken) {
				t.Errorf("expected ErrInvalidToken, got %v", err)
			}
		})
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	signer, _ := newCodec(t, codec.Config{
		Secret: "a-different-secret", TTL: testTTL, Issuer: testIssuer, Audience: testAudience,
	})
	verifier, _ := newCodec(t, defaultConfig())

	token, err := signer.Sign(testClaims)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if _, err := verifier.Verify(token); !errors.Is(err, domain.ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifyRejectsWrongIssuerAndAudience(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*codec.Config)
	}{
		{"wrong issuer", func(c *codec.Config) { c.Issuer = "someone-else" }},
		{"wrong audience", func(c *codec.Config) { c.Audience = "another-system" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			signerCfg := defaultConfig()
			tt.mutate(&signerCfg)
			signer, _ := newCodec(t, signerCfg)
			verifier, _ := newCodec(t, defaultConfig())

			token, err := signer.Sign(testClaims)
			if err != nil {
				t.Fatalf("Sign: %v", err)
			}
			if _, err := verifier.Verify(token); !errors.Is(err, domain.ErrInvalidToken) {
				t.Errorf("expected ErrInvalidToken, got %v", err)
			}
		})
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	c, now := newCodec(t, defaultConfig())

	token, err := c.Sign(testClaims)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	// Still valid just before expiry, invalid just after.
	*now = now.Add(testTTL - time.Second)
	if _, err := c.Verify(token); err != nil {
		t.Errorf("token should still be valid before expiry: %v", err)
	}
	*now = now.Add(2 * time.Second)
	if _, err := c.Verify(token); !errors.Is(err, domain.ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken after expiry, got %v", err)
	}
}

func TestDecodeMatchesVerify(t *testing.T) {
	c, _ := newCodec(t, defaultConfig())
	token, err := c.Sign(testClaims)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	verified, err := c.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	decoded, err := c.Decode(token)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if decoded.Subject != verified.Subject {
		t.Errorf("subject: decode %q, verify %q", decoded.Subject, verified.Subject)
	}
	if decoded.TenantID != verified.TenantID {
		t.Errorf("tenant_id: decode %q, verify %q", decoded.TenantID, verified.TenantID)
	}
	if decoded.Role != verified.Role {
		t.Errorf("role: decode %q, verify %q", decoded.Role, verified.Role)
	}
	if !slices.Equal(decoded.Scopes, verified.Scopes) {
		t.Errorf("scopes: decode %v, verify %v", decoded.Scopes, verified.Scopes)
	}
	if decoded.Issuer != verified.Issuer || decoded.Audience != verified.Audience {
		t.Errorf("issuer/audience: decode %q/%q, verify %q/%q",
			decoded.Issuer, decoded.Audience, verified.Issuer, verified.Audience)
	}
	if !decoded.IssuedAt.Equal(verified.IssuedAt) || !decoded.ExpiresAt.Equal(verified.ExpiresAt) {
		t.Errorf("timestamps differ between decode and verify")
	}
}

func TestDecodeSkipsValidation(t *testing.T) {
	c, now := newCodec(t, defaultConfig())

	token, err := c.Sign(testClaims)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	// Expired: Verify rejects, Decode still parses.
	*now = now.Add(testTTL + time.Minute)
	if _, err := c.Verify(token); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected expired token to fail Verify, got %v", err)
	}
	decoded, err := c.Decode(token)
	if err != nil {
		t.Fatalf("Decode should not check expiry: %v", err)
	}
	if decoded.Subject != testClaims.Subject {
		t.Errorf("expected subject %q, got %q", testClaims.Subject, decoded.Subject)
	}

	// Structurally broken input still fails.
	if _, err := c.Decode("not.a.token.at.all"); !errors.Is(err, domain.ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}
