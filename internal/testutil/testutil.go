// Package testutil provides shared fixtures for tests: a deterministic
// token codec and a seeded two-tenant user directory.
package testutil

import (
	"testing"
	"time"

	"authapi/internal/authn/adapter/codec"
	"authapi/internal/authn/adapter/inmem"
	"authapi/internal/domain"
)

// Fixed signing parameters shared by all tests.
const (
	TestSecret   = "test-signing-secret-not-for-production"
	TestIssuer   = "auth-api-test"
	TestAudience = "data-api-test"
	TestTTL      = 15 * time.Minute
)

// NewTestCodec returns a codec with the shared test parameters.
// A nil clock uses the real time.
func NewTestCodec(t *testing.T, clock func() time.Time) *codec.Codec {
	t.Helper()
	c, err := codec.New(codec.Config{
		Secret:   TestSecret,
		TTL:      TestTTL,
		Issuer:   TestIssuer,
		Audience: TestAudience,
	}, clock)
	if err != nil {
		t.Fatalf("creating test codec: %v", err)
	}
	return c
}

// Seeded tenants: two isolated organizations.
var (
	TenantAcme = domain.Tenant{
		ID:   "t-0000-0001",
		Name: "Acme Notes",
		Slug: "acme",
	}
	TenantGlobex = domain.Tenant{
		ID:   "t-0000-0002",
		Name: "Globex",
		Slug: "globex",
	}
)

// Seeded users. UserLeeAcme and UserLeeGlobex share an email across
// tenants; the compound-key lookup must keep them apart.
var (
	UserAda = domain.User{
		ID:       "u-0000-0001",
		TenantID: TenantAcme.ID,
		Email:    "ada@acme.test",
		Role:     domain.RoleAdmin,
	}
	UserBo = domain.User{
		ID:       "u-0000-0002",
		TenantID: TenantAcme.ID,
		Email:    "bo@acme.test",
		Role:     domain.RoleEditor,
	}
	UserIvan = domain.User{
		ID:       "u-0000-0003",
		TenantID: TenantGlobex.ID,
		Email:    "ivan@globex.test",
		Role:     domain.RoleAdmin,
	}
	UserLeeAcme = domain.User{
		ID:       "u-0000-0004",
		TenantID: TenantAcme.ID,
		Email:    "lee@contractor.test",
		Role:     domain.RoleEditor,
	}
	UserLeeGlobex = domain.User{
		ID:       "u-0000-0005",
		TenantID: TenantGlobex.ID,
		Email:    "lee@contractor.test",
		Role:     domain.RoleAdmin,
	}
)

// SeedTenants returns the fixture tenants.
func SeedTenants() []domain.Tenant {
	return []domain.Tenant{TenantAcme, TenantGlobex}
}

// SeedUsers returns the fixture users.
func SeedUsers() []domain.User {
	return []domain.User{UserAda, UserBo, UserIvan, UserLeeAcme, UserLeeGlobex}
}

// SeededDirectory returns an in-memory directory with the fixture data.
func SeededDirectory() *inmem.Directory {
	return inmem.NewDirectory(SeedTenants(), SeedUsers())
}

// IssueToken signs a token for the given user with the test codec.
func IssueToken(t *testing.T, c *codec.Codec, user domain.User) string {
	t.Helper()
	token, err := c.Sign(domain.Claims{
		Subject:  user.ID,
		TenantID: user.TenantID,
		Role:     user.Role,
		Scopes:   domain.DefaultScopes,
	})
	if err != nil {
		t.Fatalf("signing token for %s: %v", user.ID, err)
	}
	return token
}
