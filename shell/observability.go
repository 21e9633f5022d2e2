package shell

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/equiprent/reservation-engine/reservation"
)

const (
	// CommandHandlerDurationMetric tracks command handler execution duration.
	CommandHandlerDurationMetric = "commandhandler_handle_duration_seconds"

	// CommandHandlerCallsMetric tracks total command handler calls.
	CommandHandlerCallsMetric = "commandhandler_handle_calls_total"

	// CommandHandlerRejectionsMetric counts rejected commands per rejection kind.
	CommandHandlerRejectionsMetric = "commandhandler_rejections_total"

	// CommandHandlerConcurrencyConflictMetric counts commands that lost the per-asset race even after retrying.
	CommandHandlerConcurrencyConflictMetric = "commandhandler_concurrency_conflicts_total"

	// CommandHandlerRetriesMetric counts retry attempts.
	//
	// Labels: command_type, attempt_number, error_type.
	CommandHandlerRetriesMetric = "commandhandler_retries_total"

	// CommandHandlerRetryDelayMetric tracks each backoff delay before a retry.
	//
	// Labels: command_type, attempt_number.
	CommandHandlerRetryDelayMetric = "commandhandler_retry_delay_seconds"

	// CommandHandlerRetryTotalDelayMetric tracks the summed backoff of one command execution.
	CommandHandlerRetryTotalDelayMetric = "commandhandler_retry_total_delay_seconds"

	// CommandHandlerMaxRetriesReachedMetric counts executions that ran out of attempts.
	//
	// Labels: command_type, final_error_type.
	CommandHandlerMaxRetriesReachedMetric = "commandhandler_max_retries_reached_total"

	// QueryHandlerDurationMetric tracks query handler execution duration.
	QueryHandlerDurationMetric = "queryhandler_handle_duration_seconds"

	// QueryHandlerCallsMetric tracks total query handler calls.
	QueryHandlerCallsMetric = "queryhandler_handle_calls_total"

	StatusSuccess             = "success"
	StatusError               = "error"
	StatusIdempotent          = "idempotent"
	StatusRejected            = "rejected"
	StatusCanceled            = "canceled"
	StatusTimeout             = "timeout"
	StatusConcurrencyConflict = "concurrency_conflict"

	LogMsgCommandStarted   = "command handler started"
	LogMsgCommandCompleted = "command handler completed"
	LogMsgCommandRejected  = "command handler rejected"
	LogMsgCommandFailed    = "command handler failed"
	LogMsgQueryStarted     = "query handler started"
	LogMsgQueryCompleted   = "query handler completed"
	LogMsgQueryFailed      = "query handler failed"

	LogAttrCommandType     = "command_type"
	LogAttrQueryType       = "query_type"
	LogAttrStatus          = "status"
	LogAttrDurationMS      = "duration_ms"
	LogAttrBusinessOutcome = "business_outcome"
	LogAttrRejectionKind   = "rejection_kind"
	LogAttrReservationID   = "reservation_id"
	LogAttrAssetID         = "asset_id"
	LogAttrError           = "error"

	SpanNameCommandHandle = "commandhandler.handle"
	SpanNameQueryHandle   = "queryhandler.handle"
)

// Aliases of the engine's observability interfaces, so handler wiring only imports shell.

type MetricsCollector = reservation.MetricsCollector
type ContextualMetricsCollector = reservation.ContextualMetricsCollector
type TracingCollector = reservation.TracingCollector
type SpanContext = reservation.SpanContext
type ContextualLogger = reservation.ContextualLogger
type Logger = reservation.Logger

// BuildCommandLabels creates the standard metric labels for command handler operations.
func BuildCommandLabels(commandType, status string) map[string]string {
	return map[string]string{
		LogAttrCommandType: commandType,
		LogAttrStatus:      status,
	}
}

// BuildQueryLabels creates the standard metric labels for query handler operations.
func BuildQueryLabels(queryType, status string) map[string]string {
	return map[string]string{
		LogAttrQueryType: queryType,
		LogAttrStatus:    status,
	}
}

// BuildRetryLabels creates the metric labels for retry attempts.
func BuildRetryLabels(commandType string, attemptNumber int, errorType string) map[string]string {
	return map[string]string{
		LogAttrCommandType: commandType,
		"attempt_number":   strconv.Itoa(attemptNumber),
		"error_type":       errorType,
	}
}

// ToMilliseconds converts a time.Duration to float64 milliseconds.
func ToMilliseconds(d time.Duration) float64 {
	return float64(d.Nanoseconds()) / 1e6
}

// ClassifyError maps a handler error onto a status label.
func ClassifyError(err error) string {
	switch {
	case err == nil:
		return StatusSuccess
	case IsCancellationError(err):
		return StatusCanceled
	case IsTimeoutError(err):
		return StatusTimeout
	case IsConcurrencyConflictError(err):
		return StatusConcurrencyConflict
	case reservation.IsRejection(err):
		return StatusRejected
	default:
		return StatusError
	}
}

// RecordCommandMetrics records duration and call count of a command execution,
// plus a rejection counter for rejected commands.
func RecordCommandMetrics(
	ctx context.Context,
	collector MetricsCollector,
	commandType string,
	status string,
	duration time.Duration,
	err error,
) {
	if collector == nil {
		return
	}

	labels := BuildCommandLabels(commandType, status)
	recordDuration(ctx, collector, CommandHandlerDurationMetric, duration, labels)
	incrementCounter(ctx, collector, CommandHandlerCallsMetric, labels)

	if status == StatusRejected {
		incrementCounter(ctx, collector, CommandHandlerRejectionsMetric, map[string]string{
			LogAttrCommandType:   commandType,
			LogAttrRejectionKind: reservation.KindName(reservation.RejectionKind(err)),
		})
	}
}

// RecordLostRace counts a command whose last attempt still lost the per-asset race.
// Handlers report such a command as a rejection, so the retry metadata is the only trace of the lost race.
func RecordLostRace(ctx context.Context, collector MetricsCollector, commandType string, result HandlerResult) {
	if collector == nil || !result.RetriesExhausted {
		return
	}

	incrementCounter(ctx, collector, CommandHandlerConcurrencyConflictMetric, map[string]string{
		LogAttrCommandType: commandType,
	})
}

// RecordQueryMetrics records duration and call count of a query execution.
func RecordQueryMetrics(
	ctx context.Context,
	collector MetricsCollector,
	queryType string,
	status string,
	duration time.Duration,
) {
	if collector == nil {
		return
	}

	labels := BuildQueryLabels(queryType, status)
	recordDuration(ctx, collector, QueryHandlerDurationMetric, duration, labels)
	incrementCounter(ctx, collector, QueryHandlerCallsMetric, labels)
}

// RecordRetryTotalDelay records the summed backoff of a command execution that needed more than one attempt.
// Per-attempt retry counters come from RetryWithExponentialBackoff configured WithMetrics.
func RecordRetryTotalDelay(ctx context.Context, collector MetricsCollector, commandType string, result HandlerResult) {
	if collector == nil || result.RetryAttempts <= 1 {
		return
	}

	recordDuration(ctx, collector, CommandHandlerRetryTotalDelayMetric, result.TotalRetryDelay,
		map[string]string{LogAttrCommandType: commandType})
}

func recordDuration(ctx context.Context, collector MetricsCollector, metric string, d time.Duration, labels map[string]string) {
	if contextualCollector, ok := collector.(ContextualMetricsCollector); ok {
		contextualCollector.RecordDurationContext(ctx, metric, d, labels)
		return
	}

	collector.RecordDuration(metric, d, labels)
}

func incrementCounter(ctx context.Context, collector MetricsCollector, metric string, labels map[string]string) {
	if contextualCollector, ok := collector.(ContextualMetricsCollector); ok {
		contextualCollector.IncrementCounterContext(ctx, metric, labels)
		return
	}

	collector.IncrementCounter(metric, labels)
}

// StartCommandSpan starts a tracing span for a command. Without a collector it returns ctx and nil.
func StartCommandSpan(ctx context.Context, tracingCollector TracingCollector, commandType string) (context.Context, SpanContext) {
	if tracingCollector == nil {
		return ctx, nil
	}

	return tracingCollector.StartSpan(ctx, SpanNameCommandHandle, map[string]string{LogAttrCommandType: commandType})
}

// StartQuerySpan starts a tracing span for a query. Without a collector it returns ctx and nil.
func StartQuerySpan(ctx context.Context, tracingCollector TracingCollector, queryType string) (context.Context, SpanContext) {
	if tracingCollector == nil {
		return ctx, nil
	}

	return tracingCollector.StartSpan(ctx, SpanNameQueryHandle, map[string]string{LogAttrQueryType: queryType})
}

// FinishSpan completes a span started by StartCommandSpan or StartQuerySpan.
func FinishSpan(
	tracingCollector TracingCollector,
	span SpanContext,
	status string,
	duration time.Duration,
	err error,
) {
	if tracingCollector == nil || span == nil {
		return
	}

	attrs := map[string]string{
		LogAttrStatus:     status,
		LogAttrDurationMS: fmt.Sprintf("%.2f", ToMilliseconds(duration)),
	}

	if err != nil {
		attrs[LogAttrError] = err.Error()
	}

	tracingCollector.FinishSpan(span, status, attrs)
}

// LogCommandStart logs the beginning of command processing.
func LogCommandStart(ctx context.Context, logger Logger, contextualLogger ContextualLogger, commandType string) {
	logInfo(ctx, logger, contextualLogger, LogMsgCommandStarted, LogAttrCommandType, commandType)
}

// LogCommandSuccess logs successful or idempotent command completion.
func LogCommandSuccess(
	ctx context.Context,
	logger Logger,
	contextualLogger ContextualLogger,
	commandType string,
	result HandlerResult,
	duration time.Duration,
) {
	logInfo(ctx, logger, contextualLogger, LogMsgCommandCompleted,
		LogAttrCommandType, commandType,
		LogAttrBusinessOutcome, result.BusinessOutcome(),
		LogAttrReservationID, result.Reservation.ID.String(),
		LogAttrDurationMS, ToMilliseconds(duration),
	)
}

// LogCommandRejected logs an expected business refusal at info level.
func LogCommandRejected(
	ctx context.Context,
	logger Logger,
	contextualLogger ContextualLogger,
	commandType string,
	err error,
	duration time.Duration,
) {
	logInfo(ctx, logger, contextualLogger, LogMsgCommandRejected,
		LogAttrCommandType, commandType,
		LogAttrRejectionKind, reservation.KindName(reservation.RejectionKind(err)),
		LogAttrError, err.Error(),
		LogAttrDurationMS, ToMilliseconds(duration),
	)
}

// LogCommandError logs command processing failures.
func LogCommandError(ctx context.Context, logger Logger, contextualLogger ContextualLogger, commandType string, err error) {
	logError(ctx, logger, contextualLogger, LogMsgCommandFailed, LogAttrCommandType, commandType, LogAttrError, err.Error())
}

// LogQueryStart logs the beginning of query processing.
func LogQueryStart(ctx context.Context, logger Logger, contextualLogger ContextualLogger, queryType string) {
	logInfo(ctx, logger, contextualLogger, LogMsgQueryStarted, LogAttrQueryType, queryType)
}

// LogQuerySuccess logs successful query completion.
func LogQuerySuccess(ctx context.Context, logger Logger, contextualLogger ContextualLogger, queryType string, duration time.Duration) {
	logInfo(ctx, logger, contextualLogger, LogMsgQueryCompleted,
		LogAttrQueryType, queryType,
		LogAttrDurationMS, ToMilliseconds(duration),
	)
}

// LogQueryError logs query processing failures. Rejections are logged at info level.
func LogQueryError(ctx context.Context, logger Logger, contextualLogger ContextualLogger, queryType string, err error) {
	args := []any{LogAttrQueryType, queryType, LogAttrError, err.Error()}

	if reservation.IsRejection(err) {
		logInfo(ctx, logger, contextualLogger, LogMsgQueryFailed, args...)
		return
	}

	logError(ctx, logger, contextualLogger, LogMsgQueryFailed, args...)
}

func logInfo(ctx context.Context, logger Logger, contextualLogger ContextualLogger, msg string, args ...any) {
	if contextualLogger != nil {
		contextualLogger.InfoContext(ctx, msg, args...)
	} else if logger != nil {
		logger.Info(msg, args...)
	}
}

func logError(ctx context.Context, logger Logger, contextualLogger ContextualLogger, msg string, args ...any) {
	if contextualLogger != nil {
		contextualLogger.ErrorContext(ctx, msg, args...)
	} else if logger != nil {
		logger.Error(msg, args...)
	}
}

// IsCancellationError checks if an error is due to context cancellation.
func IsCancellationError(err error) bool {
	return errors.Is(err, context.Canceled)
}

// IsTimeoutError checks if an error is due to context deadline exceeded.
func IsTimeoutError(err error) bool {
	return errors.Is(err, context.DeadlineExceeded)
}

// IsConcurrencyConflictError checks if an error is a lost per-asset version race.
func IsConcurrencyConflictError(err error) bool {
	return errors.Is(err, reservation.ErrConcurrencyConflict)
}
