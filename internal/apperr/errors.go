package apperr

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidInput    = errors.New("invalid input")
	ErrMarkersNotFound = errors.New("auto-generated markers not found")
	ErrStale           = errors.New("generated artifacts are out of date")
)
