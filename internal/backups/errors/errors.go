package errors

import "errors"

var (
	ErrNotFound = errors.New("backup not found")

	ErrInvalidID = errors.New("invalid backup ID format")
)
