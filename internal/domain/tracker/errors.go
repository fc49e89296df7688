package tracker

import "errors"

var (
	// ErrMissingNumber indicates an activity event without an item number.
	ErrMissingNumber = errors.New("tracked item number required")
	// ErrInvalidThreshold indicates a non-positive neglect threshold.
	ErrInvalidThreshold = errors.New("neglect threshold must be positive")
)
