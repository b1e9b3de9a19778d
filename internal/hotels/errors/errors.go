package errors

import "errors"

var (
	ErrNotFound = errors.New("hotel not found")

	ErrInvalidID = errors.New("invalid hotel ID format")

	ErrHasRooms = errors.New("hotel still has rooms")
)
