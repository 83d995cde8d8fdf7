package errdefs

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrValidation       = errors.New("validation error")
	ErrAlreadyExists    = errors.New("already exists")
	ErrAuthentication   = errors.New("authentication error")
)
