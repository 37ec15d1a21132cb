package extract

import "errors"

// Sentinel errors for the extraction use case. Apart from input validation
// and cancellation, the service never surfaces errors: pipeline failures
// degrade into a well-formed result instead.
var (
	// ErrEmptyText is returned when the submitted message is empty or whitespace.
	ErrEmptyText = errors.New("text cannot be empty")
)
