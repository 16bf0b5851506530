package domain

import (
	"slices"
	"time"
)

// Role is a user's role within their tenant. It determines which
// operations downstream services allow (e.g. only admins may delete).
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleEditor Role = "editor"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleEditor
}

// Scope represents a permission string (e.g. "notes:read", "notes:write").
type Scope string

// DefaultScopes is the fixed scope set granted on every successful login.
// Scopes are not per-user in this design; per-role scope sets are a
// possible extension point.
var DefaultScopes = []Scope{"notes:read", "notes:write"}

// Tenant is an isolated organizational boundary. The slug is the
// human-facing identifier users type at login.
type Tenant struct {
	ID   string
	Name string
	Slug string
}

// User is a registered identity inside exactly one tenant. The auth core
// never mutates users; it only reads them from the directory.
type User struct {
	ID        string
	TenantID  string
	Email     string
	Role      Role
	CreatedAt time.Time
}

// Info returns the public view of the user embedded in login responses.
func (u User) Info() UserInfo {
	return UserInfo{
		ID:       u.ID,
		Email:    u.Email,
		Role:     u.Role,
		TenantID: u.TenantID,
	}
}

// UserInfo is the public user view. It never carries anything beyond
// these four fields.
type UserInfo struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
	TenantID string `json:"tenant_id"`
}

// Claims is the caller-supplied claims set handed to the token codec.
// All fields are required; the codec adds issuer, audience and the
// temporal fields at signing time.
type Claims struct {
	Subject  string
	TenantID string
	Role     Role
	Scopes   []Scope
}

// TokenClaims is the full decoded payload after a successful
// verification: the signed claims plus the codec-added fields.
type TokenClaims struct {
	Subject   string
	TenantID  string
	Role      Role
	Scopes    []Scope
	Issuer    string
	Audience  string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// HasScope reports whether the verified claims include the given scope.
func (tc TokenClaims) HasScope(s Scope) bool {
	return slices.Contains(tc.Scopes, s)
}

// LoginResult is the successful outcome of a login: a signed token plus
// the public view of the authenticated user.
type LoginResult struct {
	Token string   `json:"token"`
	User  UserInfo `json:"user"`
}
