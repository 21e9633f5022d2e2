package assetsync_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/equiprent/reservation-engine/assetsync"
	"github.com/equiprent/reservation-engine/reservation"
	"github.com/equiprent/reservation-engine/reservation/memengine"
	"github.com/equiprent/reservation-engine/testutil/fixtures"
	"github.com/equiprent/reservation-engine/testutil/spies"
)

func Test_DeriveStatus(t *testing.T) {
	today := reservation.MustParseDay(fixtures.Today)
	assetID := uuid.New()

	testCases := []struct {
		name         string
		current      reservation.AssetStatus
		reservations reservation.Reservations
		expected     reservation.AssetStatus
	}{
		{"no reservations", reservation.AssetRented, nil, reservation.AssetAvailable},
		{"active reservation", reservation.AssetAvailable, reservation.Reservations{
			fixtures.Reservation(assetID, uuid.New(), "2025-10-05", "2025-10-07", reservation.StatusActive),
		}, reservation.AssetRented},
		{"confirmed covering today", reservation.AssetAvailable, reservation.Reservations{
			fixtures.Reservation(assetID, uuid.New(), "2025-09-30", "2025-10-01", reservation.StatusConfirmed),
		}, reservation.AssetRented},
		{"confirmed in the future", reservation.AssetRented, reservation.Reservations{
			fixtures.Reservation(assetID, uuid.New(), "2025-10-02", "2025-10-04", reservation.StatusConfirmed),
		}, reservation.AssetAvailable},
		{"pending covering today", reservation.AssetAvailable, reservation.Reservations{
			fixtures.Reservation(assetID, uuid.New(), "2025-10-01", "2025-10-04", reservation.StatusPending),
		}, reservation.AssetAvailable},
		{"maintenance is left alone", reservation.AssetMaintenance, reservation.Reservations{
			fixtures.Reservation(assetID, uuid.New(), "2025-10-01", "2025-10-04", reservation.StatusActive),
		}, reservation.AssetMaintenance},
		{"draft is left alone", reservation.AssetDraft, nil, reservation.AssetDraft},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, assetsync.DeriveStatus(tc.current, tc.reservations, today))
		})
	}
}

func Test_Synchronizer_Sync(t *testing.T) {
	// arrange
	ctx := context.Background()
	store, asset := fixtures.MemStoreWithAsset(t, reservation.AssetAvailable)
	active := fixtures.Reservation(asset.ID, uuid.New(), "2025-10-01", "2025-10-03", reservation.StatusActive)
	fixtures.GivenStored(t, store, active)
	metrics := spies.NewMetricsCollectorSpy()
	syncer := assetsync.NewSynchronizer(store, fixtures.Calendar(), fixtures.Clock(), assetsync.WithMetrics(metrics))

	// act
	changed, err := syncer.Sync(ctx, asset.ID)
	require.NoError(t, err)
	unchanged, err := syncer.Sync(ctx, asset.ID)
	require.NoError(t, err)

	// assert
	assert.True(t, changed)
	assert.False(t, unchanged)

	got, err := store.GetAsset(ctx, asset.ID)
	require.NoError(t, err)
	assert.Equal(t, reservation.AssetRented, got.Status)
	assert.True(t, metrics.HasCounter(assetsync.StatusChangesMetric).WithStatus("rented").Assert())
}

func Test_Synchronizer_Sync_RestoresAvailableAfterCompletion(t *testing.T) {
	ctx := context.Background()
	store, asset := fixtures.MemStoreWithAsset(t, reservation.AssetRented)
	fixtures.GivenStored(t, store, fixtures.Reservation(asset.ID, uuid.New(), "2025-09-28", "2025-10-01", reservation.StatusCompleted))
	syncer := assetsync.NewSynchronizer(store, fixtures.Calendar(), fixtures.Clock())

	changed, err := syncer.Sync(ctx, asset.ID)

	require.NoError(t, err)
	assert.True(t, changed)
	got, err := store.GetAsset(ctx, asset.ID)
	require.NoError(t, err)
	assert.Equal(t, reservation.AssetAvailable, got.Status)
}

func Test_Synchronizer_SyncAll_FollowsTheClock(t *testing.T) {
	// arrange
	ctx := context.Background()
	store, asset := fixtures.MemStoreWithAsset(t, reservation.AssetAvailable)
	fixtures.GivenStored(t, store, fixtures.Reservation(asset.ID, uuid.New(), "2025-10-03", "2025-10-04", reservation.StatusConfirmed))
	clock := fixtures.Clock()
	syncer := assetsync.NewSynchronizer(store, fixtures.Calendar(), clock)

	// act + assert
	changed, err := syncer.SyncAll(ctx)
	require.NoError(t, err)
	assert.Zero(t, changed)

	clock.Advance(48 * time.Hour)
	changed, err = syncer.SyncAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, changed)

	clock.Advance(48 * time.Hour)
	changed, err = syncer.SyncAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, changed)

	got, err := store.GetAsset(ctx, asset.ID)
	require.NoError(t, err)
	assert.Equal(t, reservation.AssetAvailable, got.Status)
}

type failingStore struct {
	*memengine.Store
}

func (failingStore) SetAssetStatus(context.Context, uuid.UUID, reservation.AssetStatus) error {
	return errors.New("catalog unavailable")
}

func Test_Synchronizer_Sync_FailureIsLogged(t *testing.T) {
	ctx := context.Background()
	store, asset := fixtures.MemStoreWithAsset(t, reservation.AssetAvailable)
	fixtures.GivenStored(t, store, fixtures.Reservation(asset.ID, uuid.New(), "2025-10-01", "2025-10-02", reservation.StatusActive))
	logHandler := spies.NewLogHandlerSpy(false)
	metrics := spies.NewMetricsCollectorSpy()
	syncer := assetsync.NewSynchronizer(failingStore{Store: store}, fixtures.Calendar(), fixtures.Clock(),
		assetsync.WithLogger(slog.New(logHandler)), assetsync.WithMetrics(metrics))

	changed, err := syncer.Sync(ctx, asset.ID)

	assert.Error(t, err)
	assert.False(t, changed)
	assert.True(t, logHandler.HasError("asset status sync failed"))
	assert.Equal(t, 1, metrics.Count(spies.KindCounter, assetsync.SyncFailuresMetric))
}

func Test_Synchronizer_Run_StopsWithContext(t *testing.T) {
	store, asset := fixtures.MemStoreWithAsset(t, reservation.AssetAvailable)
	fixtures.GivenStored(t, store, fixtures.Reservation(asset.ID, uuid.New(), "2025-10-01", "2025-10-02", reservation.StatusActive))
	syncer := assetsync.NewSynchronizer(store, fixtures.Calendar(), fixtures.Clock())
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		syncer.Run(ctx, 10*time.Millisecond)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		got, err := store.GetAsset(context.Background(), asset.ID)
		return err == nil && got.Status == reservation.AssetRented
	}, time.Second, 5*time.Millisecond)

	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancellation")
	}
}
