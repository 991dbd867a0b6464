package usecase

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
	ErrSourceUnavailable     = errors.New("stat source unavailable")
	ErrPersistence           = errors.New("persistence failure")
	ErrConfigMissing         = errors.New("required configuration missing")
)
