package refine

import "errors"

var (
	// ErrInvalidInput is returned for memo text that is empty after trimming.
	ErrInvalidInput = errors.New("refine: text is required")
	// ErrExhausted marks an invoker that used every attempt without a valid result.
	ErrExhausted = errors.New("refine: attempts exhausted")
	// ErrInvalidOutput marks model output that failed to parse or validate.
	ErrInvalidOutput = errors.New("refine: invalid model output")
)
