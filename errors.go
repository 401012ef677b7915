package coinfolio

import "errors"

var (
	// ErrInvalid is returned when a caller hands over values that break the
	// contract of an operation: non positive quantities, malformed symbols,
	// wrong leg shapes.
	ErrInvalid = errors.New("invalid input")

	// ErrNotFound is returned by stores when a record does not exist.
	ErrNotFound = errors.New("not found")
)
