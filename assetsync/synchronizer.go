package assetsync

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/equiprent/reservation-engine/reservation"
)

const (
	// StatusChangesMetric counts asset status writes. Labels: status.
	StatusChangesMetric = "assetsync_status_changes_total"

	// SyncFailuresMetric counts failed syncs of one asset. Labels: operation.
	SyncFailuresMetric = "assetsync_failures_total"

	// SweepDurationMetric tracks the duration of a SyncAll pass. Labels: status.
	SweepDurationMetric = "assetsync_sweep_duration_seconds"

	defaultInterval = time.Hour
)

// Store is what the Synchronizer reads and writes.
type Store interface {
	GetAsset(ctx context.Context, id uuid.UUID) (reservation.Asset, error)
	ListAssets(ctx context.Context) (reservation.Assets, error)
	SetAssetStatus(ctx context.Context, id uuid.UUID, status reservation.AssetStatus) error
	Find(ctx context.Context, filter reservation.ReservationFilter) (reservation.Reservations, error)
}

// Synchronizer re-derives asset statuses.
type Synchronizer struct {
	store            Store
	calendar         reservation.BusinessCalendar
	clock            reservation.Clock
	logger           reservation.Logger
	contextualLogger reservation.ContextualLogger
	metricsCollector reservation.MetricsCollector
}

// Option configures a Synchronizer.
type Option func(*Synchronizer)

// WithLogger sets the logger.
func WithLogger(logger reservation.Logger) Option {
	return func(s *Synchronizer) {
		s.logger = logger
	}
}

// WithContextualLogger sets the context-aware logger. It takes precedence over WithLogger.
func WithContextualLogger(logger reservation.ContextualLogger) Option {
	return func(s *Synchronizer) {
		s.contextualLogger = logger
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(collector reservation.MetricsCollector) Option {
	return func(s *Synchronizer) {
		s.metricsCollector = collector
	}
}

// NewSynchronizer creates a Synchronizer.
func NewSynchronizer(store Store, calendar reservation.BusinessCalendar, clock reservation.Clock, options ...Option) *Synchronizer {
	s := &Synchronizer{
		store:    store,
		calendar: calendar,
		clock:    clock,
	}

	for _, option := range options {
		option(s)
	}

	return s
}

// DeriveStatus returns the status an asset in status current should have, given its reservations.
// Non-derived statuses are returned unchanged.
func DeriveStatus(current reservation.AssetStatus, reservations reservation.Reservations, today reservation.Day) reservation.AssetStatus {
	if !current.IsDerived() {
		return current
	}

	for _, r := range reservations {
		switch r.Status {
		case reservation.StatusActive:
			return reservation.AssetRented
		case reservation.StatusConfirmed:
			if r.Dates.Covers(today) {
				return reservation.AssetRented
			}
		}
	}

	return reservation.AssetAvailable
}

// Sync re-derives one asset's status and writes it if it changed. It reports whether it wrote.
func (s *Synchronizer) Sync(ctx context.Context, assetID uuid.UUID) (bool, error) {
	changed, err := s.sync(ctx, assetID)
	if err != nil {
		s.incrementCounter(ctx, SyncFailuresMetric, map[string]string{"operation": "sync"})
		s.logError(ctx, "asset status sync failed", "asset_id", assetID.String(), "error", err.Error())
	}

	return changed, err
}

func (s *Synchronizer) sync(ctx context.Context, assetID uuid.UUID) (bool, error) {
	asset, err := s.store.GetAsset(ctx, assetID)
	if err != nil {
		return false, err
	}

	if !asset.Status.IsDerived() {
		return false, nil
	}

	reservations, err := s.store.Find(ctx, reservation.ReservationFilter{
		AssetID:  assetID,
		Statuses: []reservation.Status{reservation.StatusConfirmed, reservation.StatusActive},
	})
	if err != nil {
		return false, err
	}

	derived := DeriveStatus(asset.Status, reservations, s.calendar.Today(s.clock))
	if derived == asset.Status {
		return false, nil
	}

	if err = s.store.SetAssetStatus(ctx, assetID, derived); err != nil {
		return false, err
	}

	s.incrementCounter(ctx, StatusChangesMetric, map[string]string{"status": derived.String()})
	s.logInfo(ctx, "asset status changed", "asset_id", assetID.String(), "from", asset.Status.String(), "to", derived.String())

	return true, nil
}

// SyncAll re-derives every asset. It keeps going past failures and returns them joined.
func (s *Synchronizer) SyncAll(ctx context.Context) (int, error) {
	start := time.Now()

	assets, err := s.store.ListAssets(ctx)
	if err != nil {
		s.recordSweep(ctx, start, err)
		return 0, err
	}

	changed := 0
	var errs []error

	for _, asset := range assets {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}

		ok, syncErr := s.Sync(ctx, asset.ID)
		if syncErr != nil {
			errs = append(errs, syncErr)
			continue
		}

		if ok {
			changed++
		}
	}

	err = errors.Join(errs...)
	s.recordSweep(ctx, start, err)

	if changed > 0 || err != nil {
		s.logInfo(ctx, "asset status sweep finished", "assets", len(assets), "changed", changed, "failed", len(errs))
	}

	return changed, err
}

// Run sweeps all assets once immediately and then every interval until ctx is done.
func (s *Synchronizer) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = defaultInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	_, _ = s.SyncAll(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_, _ = s.SyncAll(ctx)
		}
	}
}

func (s *Synchronizer) recordSweep(ctx context.Context, start time.Time, err error) {
	if s.metricsCollector == nil {
		return
	}

	status := "success"
	if err != nil {
		status = "error"
	}

	labels := map[string]string{"status": status}

	if collector, ok := s.metricsCollector.(reservation.ContextualMetricsCollector); ok {
		collector.RecordDurationContext(ctx, SweepDurationMetric, time.Since(start), labels)
		return
	}

	s.metricsCollector.RecordDuration(SweepDurationMetric, time.Since(start), labels)
}

func (s *Synchronizer) incrementCounter(ctx context.Context, metric string, labels map[string]string) {
	if s.metricsCollector == nil {
		return
	}

	if collector, ok := s.metricsCollector.(reservation.ContextualMetricsCollector); ok {
		collector.IncrementCounterContext(ctx, metric, labels)
		return
	}

	s.metricsCollector.IncrementCounter(metric, labels)
}

func (s *Synchronizer) logInfo(ctx context.Context, msg string, args ...any) {
	switch {
	case s.contextualLogger != nil:
		s.contextualLogger.InfoContext(ctx, msg, args...)
	case s.logger != nil:
		s.logger.Info(msg, args...)
	}
}

func (s *Synchronizer) logError(ctx context.Context, msg string, args ...any) {
	switch {
	case s.contextualLogger != nil:
		s.contextualLogger.ErrorContext(ctx, msg, args...)
	case s.logger != nil:
		s.logger.Error(msg, args...)
	}
}
