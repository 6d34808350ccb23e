package service

import "errors"

// Sentinel errors shared by the service, its managers and the transports.
// Wrap them with fmt.Errorf("...: %w") and match with errors.Is.
var (
	ErrSessionNotFound      = errors.New("session not found")
	ErrSessionAlreadyExists = errors.New("session already exists")
	ErrInvalidSessionID     = errors.New("invalid session ID")
	ErrInvalidDirection     = errors.New("invalid direction")
	ErrConfigNotFound       = errors.New("configuration not found")
	ErrInvalidConfig        = errors.New("invalid configuration")
)
