// Package authn holds the authentication core: the login orchestrator
// and the ports it depends on. Identity is established by a registered
// email plus the correct tenant slug; there is deliberately no password
// or credential check at this layer. A production deployment must place
// a real credential check in front of Login.
package authn

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"authapi/internal/domain"
	"authapi/internal/platform/telemetry"
)

// Service converts an identity-resolution outcome into an
// authentication decision. It holds no secret material; signing is
// delegated to the Codec.
type Service struct {
	directory Directory
	codec     Codec
	logger    *slog.Logger
	metrics   *telemetry.AuthMetrics
}

// NewService constructs the login orchestrator. The metrics parameter
// is optional; pass nil to skip metric recording.
func NewService(directory Directory, codec Codec, logger *slog.Logger, m *telemetry.AuthMetrics) *Service {
	return &Service{
		directory: directory,
		codec:     codec,
		logger:    logger,
		metrics:   m,
	}
}

// Login resolves (email, tenantSlug) against the directory and, on a
// match, mints a token carrying the user's tenant, role and the fixed
// scope set. An email registered under a different tenant yields the
// same domain.ErrInvalidCredentials as an unknown email: callers must
// never learn whether an email exists elsewhere. Directory
// infrastructure failures propagate as distinct errors, not as
// authentication failures.
func (s *Service) Login(ctx context.Context, email, tenantSlug string) (*domain.LoginResult, error) {
	start := time.Now()
	user, err := s.directory.FindByEmailAndTenantSlug(ctx, email, tenantSlug)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.recordLookup(ctx, "not_found", start)
			s.recordLogin(ctx, "rejected")
			s.logger.Warn("login attempt for unknown user", "tenant_slug", tenantSlug)
			return nil, domain.ErrInvalidCredentials
		}
		s.recordLookup(ctx, "error", start)
		s.recordLogin(ctx, "error")
		return nil, fmt.Errorf("directory lookup: %w", err)
	}
	s.recordLookup(ctx, "found", start)

	token, err := s.codec.Sign(domain.Claims{
		Subject:  user.ID,
		TenantID: user.TenantID,
		Role:     user.Role,
		Scopes:   domain.DefaultScopes,
	})
	if err != nil {
		s.recordLogin(ctx, "error")
		return nil, fmt.Errorf("signing token: %w", err)
	}

	s.recordLogin(ctx, "success")
	s.logger.Info("user logged in",
		"user_id", user.ID,
		"tenant_id", user.TenantID,
		"role", user.Role,
	)

	return &domain.LoginResult{
		Token: token,
		User:  user.Info(),
	}, nil
}

// WhoAmI resolves the subject of verified claims back to the current
// directory record. A token whose subject no longer exists yields
// domain.ErrUnauthorized.
func (s *Service) WhoAmI(ctx context.Context, claims *domain.TokenClaims) (*domain.UserInfo, error) {
	user, err := s.directory.FindByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.logger.Warn("token subject no longer in directory", "user_id", claims.Subject)
			return nil, domain.ErrUnauthorized
		}
		return nil, fmt.Errorf("directory lookup: %w", err)
	}
	info := user.Info()
	return &info, nil
}

func (s *Service) recordLogin(ctx context.Context, result string) {
	if s.metrics != nil {
		s.metrics.RecordLogin(ctx, result)
	}
}

func (s *Service) recordLookup(ctx context.Context, result string, start time.Time) {
	if s.metrics != nil {
		s.metrics.RecordDirectoryLookup(ctx, result, time.Since(start).Seconds())
	}
}
