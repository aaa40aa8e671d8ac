package domain

import "errors"

// Sentinel errors used across layers.
var (
	ErrNotFound       = errors.New("not found")
	ErrInvalidProgram = errors.New("invalid program")
	ErrEmptyProgram   = errors.New("program has no rows")
	ErrAlreadyExists  = errors.New("already exists")
)
