package services

import "errors"

// Sentinel errors shared by all services. Handlers translate them to HTTP
// statuses with errors.Is, so services wrap them with context rather than
// returning bare strings.
var (
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("forbidden")
	ErrAlreadyExists      = errors.New("already exists")
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidCredentials = errors.New("invalid username or password")
)
