package registry

import "errors"

var (
	ErrEmptyName      = errors.New("runtime name cannot be empty")
	ErrNilFactory     = errors.New("runtime factory cannot be nil")
	ErrDuplicateName  = errors.New("runtime name already registered")
	ErrUnknownRuntime = errors.New("no runtime registered under this name")
)
