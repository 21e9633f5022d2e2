package shell

import (
	"context"
	"errors"
	"math/rand"
	"strconv"
	"time"

	"github.com/equiprent/reservation-engine/reservation"
)

const (
	// DefaultCommitAttempts is one initial attempt plus one retry as a fresh conflict check.
	DefaultCommitAttempts = 2

	defaultBaseDelay    = 5 * time.Millisecond
	defaultJitterFactor = 0.3

	errorTypeNone                    = "none"
	errorTypeConcurrencyConflict     = "concurrency_conflict"
	errorTypeContextCanceled         = "context_canceled"
	errorTypeContextDeadlineExceeded = "context_deadline_exceeded"
	errorTypeRejected                = "rejected"
	errorTypeOther                   = "other"
)

// RetryableFunc is one read-decide-write attempt.
type RetryableFunc func(ctx context.Context) error

// RetryMetrics describes how a retried execution went.
type RetryMetrics struct {
	// Attempts is the number of times the function ran.
	Attempts int

	// TotalDelay is the time spent sleeping between attempts.
	TotalDelay time.Duration

	// LastErrorType classifies the final error: "none", "concurrency_conflict", "context_canceled",
	// "context_deadline_exceeded", "rejected" or "other".
	LastErrorType string

	// RetriesExhausted is true when the last attempt still failed with a retryable error.
	RetriesExhausted bool
}

type retryConfig struct {
	maxAttempts      int
	baseDelay        time.Duration
	jitterFactor     float64
	metricsCollector MetricsCollector
	commandType      string
}

// RetryWithExponentialBackoff runs fn until it succeeds, fails with a non-retryable error,
// or maxAttempts is reached. Only reservation.ErrConcurrencyConflict is retried: a lost
// per-asset version race means the decision was made on stale data and must be made again.
//
// Delays: baseDelay × 2^(attempt-1) plus up to jitterFactor of that.
// The default runs the function at most twice.
func RetryWithExponentialBackoff(
	ctx context.Context,
	fn RetryableFunc,
	options ...RetryOption,
) (RetryMetrics, error) {
	config := &retryConfig{
		maxAttempts:  DefaultCommitAttempts,
		baseDelay:    defaultBaseDelay,
		jitterFactor: defaultJitterFactor,
	}

	for _, option := range options {
		if err := option(config); err != nil {
			return RetryMetrics{LastErrorType: errorTypeOther}, err
		}
	}

	var lastErr error
	metrics := RetryMetrics{}

	for attempt := 0; attempt < config.maxAttempts; attempt++ {
		if attempt > 0 {
			delay := config.baseDelay * time.Duration(1<<(attempt-1))
			jitter := rand.Float64() * float64(delay) * config.jitterFactor //nolint:gosec // math/rand is sufficient for jitter
			backoffDelay := delay + time.Duration(jitter)

			recordRetryDelayMetric(ctx, config, attempt, backoffDelay)

			select {
			case <-time.After(backoffDelay):
				metrics.TotalDelay += backoffDelay

			case <-ctx.Done():
				metrics.LastErrorType = getErrorType(ctx.Err())
				return metrics, ctx.Err()
			}
		}

		metrics.Attempts++
		lastErr = fn(ctx)
		metrics.LastErrorType = getErrorType(lastErr)

		if lastErr == nil {
			return metrics, nil
		}

		if !isRetryableError(lastErr) {
			return metrics, lastErr
		}

		recordRetryAttemptMetric(ctx, attempt, config, lastErr)
	}

	metrics.RetriesExhausted = true
	recordMaxRetriesReachedMetric(ctx, config, lastErr)

	return metrics, lastErr
}

func recordRetryDelayMetric(ctx context.Context, config *retryConfig, attempt int, backoffDelay time.Duration) {
	if config.metricsCollector == nil {
		return
	}

	labels := map[string]string{
		LogAttrCommandType: config.commandType,
		"attempt_number":   strconv.Itoa(attempt),
	}

	if contextualCollector, ok := config.metricsCollector.(ContextualMetricsCollector); ok {
		contextualCollector.RecordDurationContext(ctx, CommandHandlerRetryDelayMetric, backoffDelay, labels)
	} else {
		config.metricsCollector.RecordDuration(CommandHandlerRetryDelayMetric, backoffDelay, labels)
	}
}

// recordRetryAttemptMetric counts attempts that will be followed by another one.
func recordRetryAttemptMetric(ctx context.Context, attempt int, config *retryConfig, lastErr error) {
	if attempt >= config.maxAttempts-1 || config.metricsCollector == nil {
		return
	}

	labels := BuildRetryLabels(config.commandType, attempt+1, getErrorType(lastErr))

	if contextualCollector, ok := config.metricsCollector.(ContextualMetricsCollector); ok {
		contextualCollector.IncrementCounterContext(ctx, CommandHandlerRetriesMetric, labels)
	} else {
		config.metricsCollector.IncrementCounter(CommandHandlerRetriesMetric, labels)
	}
}

func recordMaxRetriesReachedMetric(ctx context.Context, config *retryConfig, lastErr error) {
	if config.metricsCollector == nil {
		return
	}

	labels := map[string]string{
		LogAttrCommandType: config.commandType,
		"final_error_type": getErrorType(lastErr),
	}

	if contextualCollector, ok := config.metricsCollector.(ContextualMetricsCollector); ok {
		contextualCollector.IncrementCounterContext(ctx, CommandHandlerMaxRetriesReachedMetric, labels)
	} else {
		config.metricsCollector.IncrementCounter(CommandHandlerMaxRetriesReachedMetric, labels)
	}
}

// isRetryableError reports whether err is a lost per-asset version race.
// Timeouts are not retried, they signal overload. Rejections are final business outcomes.
func isRetryableError(err error) bool {
	return errors.Is(err, reservation.ErrConcurrencyConflict)
}

func getErrorType(err error) string {
	switch {
	case err == nil:
		return errorTypeNone
	case errors.Is(err, reservation.ErrConcurrencyConflict):
		return errorTypeConcurrencyConflict
	case errors.Is(err, context.Canceled):
		return errorTypeContextCanceled
	case errors.Is(err, context.DeadlineExceeded):
		return errorTypeContextDeadlineExceeded
	case reservation.IsRejection(err):
		return errorTypeRejected
	default:
		return errorTypeOther
	}
}

// RetryOption configures RetryWithExponentialBackoff.
type RetryOption func(*retryConfig) error

// WithMaxAttempts sets the total number of attempts, including the first one.
func WithMaxAttempts(attempts int) RetryOption {
	return func(config *retryConfig) error {
		if attempts <= 0 {
			return ErrInvalidMaxAttempts
		}

		config.maxAttempts = attempts

		return nil
	}
}

// WithBaseDelay sets the base delay for exponential backoff.
func WithBaseDelay(delay time.Duration) RetryOption {
	return func(config *retryConfig) error {
		if delay < 0 {
			return ErrNegativeBaseDelay
		}

		config.baseDelay = delay

		return nil
	}
}

// WithJitterFactor sets the random share added to each delay, between 0.0 and 1.0.
func WithJitterFactor(factor float64) RetryOption {
	return func(config *retryConfig) error {
		if factor < 0.0 || factor > 1.0 {
			return ErrInvalidJitterFactor
		}

		config.jitterFactor = factor

		return nil
	}
}

// WithMetrics instruments retries. commandType labels the metrics.
func WithMetrics(collector MetricsCollector, commandType string) RetryOption {
	return func(config *retryConfig) error {
		if collector == nil {
			return ErrNilMetricsCollector
		}

		if commandType == "" {
			return ErrEmptyCommandType
		}

		config.metricsCollector = collector
		config.commandType = commandType

		return nil
	}
}

// RejectLostRace turns a concurrency conflict that survived all retries into a rejection of kind.
// Other errors pass through unchanged.
func RejectLostRace(err error, kind error, reason string) error {
	if errors.Is(err, reservation.ErrConcurrencyConflict) {
		return reservation.Reject(kind, reason)
	}

	return err
}
