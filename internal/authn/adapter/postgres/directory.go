// Package postgres implements the user directory against PostgreSQL
// using pgx. The auth API only ever reads; user provisioning is owned
// by the data side of the system.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"authapi/internal/domain"
)

// Directory resolves users from the app_user and tenant tables.
type Directory struct {
	pool *pgxpool.Pool
}

// NewDirectory creates a pgx connection pool for the given DSN and
// verifies connectivity before returning.
func NewDirectory(ctx context.Context, dsn string) (*Directory, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: parse config: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("postgres: new pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}
	return &Directory{pool: pool}, nil
}

const findByEmailAndTenantSlugSQL = `
SELECT u.id, u.tenant_id, u.email, u.role, u.created_at
FROM app_user u
JOIN tenant t ON t.id = u.tenant_id
WHERE u.email = $1 AND t.slug = $2`

// FindByEmailAndTenantSlug matches a user by the compound key: the
// email must match exactly and the user must belong to the tenant
// identified by slug. Anything else is domain.ErrNotFound.
func (d *Directory) FindByEmailAndTenantSlug(ctx context.Context, email, tenantSlug string) (*domain.User, error) {
	return d.queryUser(ctx, findByEmailAndTenantSlugSQL, email, tenantSlug)
}

const findByIDSQL = `
SELECT id, tenant_id, email, role, created_at
FROM app_user
WHERE id = $1`

// FindByID returns the user with the given ID.
func (d *Directory) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return d.queryUser(ctx, findByIDSQL, id)
}

func (d *Directory) queryUser(ctx context.Context, sql string, args ...any) (*domain.User, error) {
	var u domain.User
	err := d.pool.QueryRow(ctx, sql, args...).Scan(&u.ID, &u.TenantID, &u.Email, &u.Role, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("postgres: query user: %w", err)
	}
	return &u, nil
}

// Ping reports database connectivity; used by the readiness probe.
func (d *Directory) Ping(ctx context.Context) error {
	return d.pool.Ping(ctx)
}

// Close releases the connection pool.
func (d *Directory) Close() {
	d.pool.Close()
}
