package domain

import "errors"

// Sentinel errors used across service boundaries.
var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrNotFound           = errors.New("not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
)

// ErrorResponse is the standard JSON error envelope returned to clients.
// Authentication failures always use the same generic shape regardless
// of the underlying cause.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
