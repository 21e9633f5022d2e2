package postgresengine

import (
	"github.com/equiprent/reservation-engine/reservation"
)

// Option configures a Store.
type Option func(*Store) error

// WithTableNames sets the asset and reservation table names.
func WithTableNames(assetTable, reservationTable string) Option {
	return func(s *Store) error {
		if assetTable == "" || reservationTable == "" {
			return reservation.ErrEmptyTableNameSupplied
		}

		s.assetTable = assetTable
		s.reservationTable = reservationTable

		return nil
	}
}

// WithLogger sets the logger.
//
// Debug level: SQL statements with execution timing
// Info level: writes, row counts, concurrency conflicts
// Warn level: cleanup problems like failing to close rows
// Error level: failures that abort the operation.
func WithLogger(logger reservation.Logger) Option {
	return func(s *Store) error {
		s.logger = logger
		return nil
	}
}

// WithContextualLogger sets a context-aware logger. When both are set, it is used instead of WithLogger.
func WithContextualLogger(logger reservation.ContextualLogger) Option {
	return func(s *Store) error {
		s.contextualLogger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector for operation durations, database errors and concurrency conflicts.
func WithMetrics(collector reservation.MetricsCollector) Option {
	return func(s *Store) error {
		s.metricsCollector = collector
		return nil
	}
}

// WithTracing sets the tracing collector. Every store operation gets its own span.
func WithTracing(collector reservation.TracingCollector) Option {
	return func(s *Store) error {
		s.tracingCollector = collector
		return nil
	}
}
