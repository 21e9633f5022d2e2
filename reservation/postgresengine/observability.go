package postgresengine

import (
	"context"
	"errors"
	"math"
	"strconv"
	"time"

	"github.com/equiprent/reservation-engine/reservation"
)

const (
	// MetricOperationDuration tracks store operation durations. Labels: operation, status.
	MetricOperationDuration = "reservationstore_operation_duration_seconds"

	// MetricDatabaseErrors counts failed store operations. Labels: operation, error_type.
	MetricDatabaseErrors = "reservationstore_database_errors_total"

	// MetricConcurrencyConflicts counts writes that lost the asset version race. Labels: operation.
	MetricConcurrencyConflicts = "reservationstore_concurrency_conflicts_total"

	// MetricRowsReturned records how many rows a read returned. Labels: operation, status.
	MetricRowsReturned = "reservationstore_rows_returned"

	operationEnsureSchema   = "ensure_schema"
	operationGetAsset       = "get_asset"
	operationListAssets     = "list_assets"
	operationSaveAsset      = "save_asset"
	operationSetAssetStatus = "set_asset_status"
	operationListBlocking   = "list_blocking"
	operationGet            = "get"
	operationFind           = "find"
	operationCreate         = "create"
	operationUpdate         = "update"
	operationDelete         = "delete"

	spanNamePrefix          = "reservationstore."
	spanAttrOperation       = "operation"
	spanAttrAssetID         = "asset_id"
	spanAttrReservationID   = "reservation_id"
	spanAttrExpectedVersion = "expected_version"
	spanAttrErrorType       = "error_type"
	spanAttrDurationMS      = "duration_ms"

	statusSuccess             = "success"
	statusError               = "error"
	statusNotFound            = "not_found"
	statusConcurrencyConflict = "concurrency_conflict"
	statusCanceled            = "canceled"
	statusTimeout             = "timeout"

	errorTypeBuildQuery   = "build_query"
	errorTypeQuery        = "query"
	errorTypeScan         = "scan"
	errorTypeWrite        = "write"
	errorTypeRowsAffected = "rows_affected"
	errorTypeOther        = "other"

	logMsgSQLExecuted         = "executed sql for: "
	logMsgOperation           = "reservationstore operation: "
	logMsgOperationFailed     = "reservationstore operation failed"
	logMsgDBQueryFailed       = "database query execution failed"
	logMsgDBExecFailed        = "database statement execution failed"
	logMsgRowsAffectedFailed  = "failed to get rows affected count"
	logMsgScanRowFailed       = "failed to scan database row"
	logMsgCloseRowsFailed     = "failed to close database rows"
	logMsgConcurrencyConflict = "concurrency conflict detected"

	logAttrError           = "error"
	logAttrQuery           = "query"
	logAttrOperation       = "operation"
	logAttrDurationMS      = "duration_ms"
	logAttrRowCount        = "row_count"
	logAttrVersion         = "version"
	logAttrExpectedVersion = "expected_version"
	logAttrAssetID         = "asset_id"
	logAttrReservationID   = "reservation_id"
)

// operationObserver records the span, metrics and log line of one store operation.
type operationObserver struct {
	s         *Store
	operation string
	span      reservation.SpanContext
	start     time.Time
}

func (s *Store) startOperation(
	ctx context.Context,
	operation string,
	attrs map[string]string,
) (context.Context, *operationObserver) {
	observer := &operationObserver{s: s, operation: operation, start: time.Now()}

	if s.tracingCollector != nil {
		spanAttrs := map[string]string{spanAttrOperation: operation}
		for key, value := range attrs {
			spanAttrs[key] = value
		}

		ctx, observer.span = s.tracingCollector.StartSpan(ctx, spanNamePrefix+operation, spanAttrs)
	}

	return ctx, observer
}

// finish classifies err, then records duration, error or conflict metrics, finishes the span and
// logs successful operations at info level.
func (o *operationObserver) finish(ctx context.Context, err error, logArgs ...any) {
	duration := time.Since(o.start)
	status := classifyStatus(err)

	o.s.recordDuration(ctx, o.operation, status, duration)

	switch status {
	case statusConcurrencyConflict:
		o.s.incrementCounter(ctx, MetricConcurrencyConflicts, map[string]string{spanAttrOperation: o.operation})
	case statusError:
		o.s.incrementCounter(ctx, MetricDatabaseErrors, map[string]string{
			spanAttrOperation: o.operation,
			spanAttrErrorType: classifyErrorType(err),
		})
		o.s.logError(ctx, logMsgOperationFailed, err, logAttrOperation, o.operation)
	}

	if count, ok := rowCount(logArgs); ok && status == statusSuccess {
		o.s.recordValue(ctx, o.operation, status, float64(count))
	}

	o.finishSpan(status, err, duration)

	if status == statusSuccess {
		args := append([]any{logAttrDurationMS, toMilliseconds(duration)}, logArgs...)
		o.s.logOperation(ctx, o.operation, args...)
	}
}

func (o *operationObserver) finishSpan(status string, err error, duration time.Duration) {
	if o.span == nil || o.s.tracingCollector == nil {
		return
	}

	attrs := map[string]string{
		spanAttrDurationMS: formatMilliseconds(duration),
	}

	if status == statusError {
		attrs[spanAttrErrorType] = classifyErrorType(err)
	}

	o.s.tracingCollector.FinishSpan(o.span, status, attrs)
}

func classifyStatus(err error) string {
	switch {
	case err == nil:
		return statusSuccess
	case errors.Is(err, reservation.ErrConcurrencyConflict):
		return statusConcurrencyConflict
	case errors.Is(err, reservation.ErrNotFound):
		return statusNotFound
	case errors.Is(err, context.Canceled):
		return statusCanceled
	case errors.Is(err, context.DeadlineExceeded):
		return statusTimeout
	default:
		return statusError
	}
}

func classifyErrorType(err error) string {
	switch {
	case errors.Is(err, reservation.ErrBuildingQueryFailed):
		return errorTypeBuildQuery
	case errors.Is(err, reservation.ErrScanningDBRowFailed):
		return errorTypeScan
	case errors.Is(err, reservation.ErrGettingRowsAffectedFailed):
		return errorTypeRowsAffected
	case errors.Is(err, reservation.ErrWritingReservationFailed), errors.Is(err, reservation.ErrWritingAssetFailed):
		return errorTypeWrite
	case errors.Is(err, reservation.ErrQueryingReservationsFailed), errors.Is(err, reservation.ErrQueryingAssetsFailed):
		return errorTypeQuery
	default:
		return errorTypeOther
	}
}

func rowCount(logArgs []any) (int, bool) {
	for i := 0; i+1 < len(logArgs); i += 2 {
		if logArgs[i] == logAttrRowCount {
			count, ok := logArgs[i+1].(int)
			return count, ok
		}
	}

	return 0, false
}

func (s *Store) recordDuration(ctx context.Context, operation, status string, duration time.Duration) {
	if s.metricsCollector == nil {
		return
	}

	labels := map[string]string{spanAttrOperation: operation, "status": status}

	if collector, ok := s.metricsCollector.(reservation.ContextualMetricsCollector); ok {
		collector.RecordDurationContext(ctx, MetricOperationDuration, duration, labels)
		return
	}

	s.metricsCollector.RecordDuration(MetricOperationDuration, duration, labels)
}

func (s *Store) recordValue(ctx context.Context, operation, status string, value float64) {
	if s.metricsCollector == nil {
		return
	}

	labels := map[string]string{spanAttrOperation: operation, "status": status}

	if collector, ok := s.metricsCollector.(reservation.ContextualMetricsCollector); ok {
		collector.RecordValueContext(ctx, MetricRowsReturned, value, labels)
		return
	}

	s.metricsCollector.RecordValue(MetricRowsReturned, value, labels)
}

func (s *Store) incrementCounter(ctx context.Context, metric string, labels map[string]string) {
	if s.metricsCollector == nil {
		return
	}

	if collector, ok := s.metricsCollector.(reservation.ContextualMetricsCollector); ok {
		collector.IncrementCounterContext(ctx, metric, labels)
		return
	}

	s.metricsCollector.IncrementCounter(metric, labels)
}

// logQueryWithDuration logs SQL statements with their execution time at debug level.
func (s *Store) logQueryWithDuration(ctx context.Context, sqlQuery, operation string, duration time.Duration) {
	args := []any{logAttrDurationMS, toMilliseconds(duration), logAttrQuery, sqlQuery}

	switch {
	case s.contextualLogger != nil:
		s.contextualLogger.DebugContext(ctx, logMsgSQLExecuted+operation, args...)
	case s.logger != nil:
		s.logger.Debug(logMsgSQLExecuted+operation, args...)
	}
}

// logOperation logs operational information at info level.
func (s *Store) logOperation(ctx context.Context, action string, args ...any) {
	switch {
	case s.contextualLogger != nil:
		s.contextualLogger.InfoContext(ctx, logMsgOperation+action, args...)
	case s.logger != nil:
		s.logger.Info(logMsgOperation+action, args...)
	}
}

func (s *Store) logWarn(ctx context.Context, message string, args ...any) {
	switch {
	case s.contextualLogger != nil:
		s.contextualLogger.WarnContext(ctx, message, args...)
	case s.logger != nil:
		s.logger.Warn(message, args...)
	}
}

func (s *Store) logError(ctx context.Context, message string, err error, args ...any) {
	allArgs := append([]any{logAttrError, err.Error()}, args...)

	switch {
	case s.contextualLogger != nil:
		s.contextualLogger.ErrorContext(ctx, message, allArgs...)
	case s.logger != nil:
		s.logger.Error(message, allArgs...)
	}
}

// toMilliseconds converts a time.Duration to float64 milliseconds with 3 decimal places.
func toMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}

func formatMilliseconds(d time.Duration) string {
	return strconv.FormatFloat(toMilliseconds(d), 'f', 3, 64)
}
