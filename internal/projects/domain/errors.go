package domain

import "errors"

var (
	ErrInvalidID        = errors.New("invalid project id")
	ErrProjectNotFound  = errors.New("project not found")
	ErrStoreUnavailable = errors.New("project store unavailable")
	ErrValidation       = errors.New("invalid project")
)
