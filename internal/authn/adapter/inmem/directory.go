// Package inmem provides an in-memory user directory for local
// development and tests. Lookups follow the same compound-key contract
// as the Postgres adapter.
package inmem

import (
	"context"

	"authapi/internal/domain"
)

// Directory holds tenants and users in memory. It is read-only after
// construction and safe for concurrent use.
type Directory struct {
	tenantBySlug map[string]domain.Tenant
	usersByID    map[string]domain.User
	users        []domain.User
}

// NewDirectory creates a directory from the given tenants and users.
func NewDirectory(tenants []domain.Tenant, users []domain.User) *Directory {
	d := &Directory{
		tenantBySlug: make(map[string]domain.Tenant, len(tenants)),
		usersByID:    make(map[string]domain.User, len(users)),
		users:        users,
	}
	for _, t := range tenants {
		d.tenantBySlug[t.Slug] = t
	}
	for _, u := range users {
		d.usersByID[u.ID] = u
	}
	return d
}

// FindByEmailAndTenantSlug matches a user only when both the email and
// the tenant resolved from the slug match. An unknown slug and an email
// that only exists under another tenant both return domain.ErrNotFound.
func (d *Directory) FindByEmailAndTenantSlug(_ context.Context, email, tenantSlug string) (*domain.User, error) {
	tenant, ok := d.tenantBySlug[tenantSlug]
	if !ok {
		return nil, domain.ErrNotFound
	}
	for _, u := range d.users {
		if u.Email == email && u.TenantID == tenant.ID {
			user := u
			return &user, nil
		}
	}
	return nil, domain.ErrNotFound
}

// FindByID returns the user with the given ID.
func (d *Directory) FindByID(_ context.Context, id string) (*domain.User, error) {
	u, ok := d.usersByID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	user := u
	return &user, nil
}

// Ping always succeeds; there is no backend to reach.
func (d *Directory) Ping(context.Context) error {
	return nil
}
