package triangle

import "errors"

var (
	// ErrNotInitialized is returned by OnRender before OnInitialize has
	// completed.
	ErrNotInitialized = errors.New("triangle: application not initialized")

	// ErrClosed is returned when a closed Application is used again.
	ErrClosed = errors.New("triangle: application closed")
)
