package domain

import "errors"

// Error taxonomy shared by services, repositories and handlers. Repositories
// translate store-level failures (no rows, unique violations) into these;
// handlers map them onto HTTP status codes with errors.Is.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrForbidden          = errors.New("forbidden")
	ErrNotFound           = errors.New("not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrConflict           = errors.New("conflict")
	ErrInvalidState       = errors.New("invalid state")
)
