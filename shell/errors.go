package shell

import "errors"

// Retry option errors, returned by RetryWithExponentialBackoff before the first attempt runs.
var (
	ErrNilMetricsCollector = errors.New("retry metrics: collector is nil")
	ErrEmptyCommandType    = errors.New("retry metrics: command type is empty")
	ErrInvalidMaxAttempts  = errors.New("retry: max attempts must be at least 1")
	ErrNegativeBaseDelay   = errors.New("retry: base delay is negative")
	ErrInvalidJitterFactor = errors.New("retry: jitter factor outside [0.0, 1.0]")
)
