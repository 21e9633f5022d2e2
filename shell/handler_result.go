package shell

import (
	"time"

	"github.com/equiprent/reservation-engine/reservation"
)

// HandlerResult is the outcome of a command handler execution.
// It carries the business outcome and the retry metadata without tying handlers to an observability backend.
type HandlerResult struct {
	// Reservation is the state after the command. It is zero when the command failed,
	// and for a purged cancellation it is the last state before deletion.
	Reservation reservation.Reservation

	// Idempotent is true when the command asked for nothing that was not already true.
	Idempotent bool

	// Rejected is true when the command was refused with a reservation.Rejection.
	Rejected bool

	// RetryAttempts is the total number of attempts made (1 without retries).
	RetryAttempts int

	// TotalRetryDelay is the time spent sleeping between attempts.
	TotalRetryDelay time.Duration

	// LastErrorType classifies the final error, see RetryMetrics.
	LastErrorType string

	// RetriesExhausted is true when the last attempt still lost a concurrency race.
	RetriesExhausted bool
}

// NewSuccessResult creates a HandlerResult for a command that changed state.
func NewSuccessResult(r reservation.Reservation, retryMetrics RetryMetrics) HandlerResult {
	result := fromRetryMetrics(retryMetrics)
	result.Reservation = r

	return result
}

// NewIdempotentResult creates a HandlerResult for a command that required no change.
func NewIdempotentResult(r reservation.Reservation, retryMetrics RetryMetrics) HandlerResult {
	result := fromRetryMetrics(retryMetrics)
	result.Reservation = r
	result.Idempotent = true

	return result
}

// NewErrorResult creates a HandlerResult for a failed or rejected command.
func NewErrorResult(err error, retryMetrics RetryMetrics) HandlerResult {
	result := fromRetryMetrics(retryMetrics)
	result.Rejected = reservation.IsRejection(err)

	return result
}

func fromRetryMetrics(retryMetrics RetryMetrics) HandlerResult {
	return HandlerResult{
		RetryAttempts:    retryMetrics.Attempts,
		TotalRetryDelay:  retryMetrics.TotalDelay,
		LastErrorType:    retryMetrics.LastErrorType,
		RetriesExhausted: retryMetrics.RetriesExhausted,
	}
}

// BusinessOutcome classifies the result for logs, metrics and spans.
func (r HandlerResult) BusinessOutcome() string {
	switch {
	case r.Rejected:
		return StatusRejected
	case r.Idempotent:
		return StatusIdempotent
	default:
		return StatusSuccess
	}
}
