package postgresengine_test

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/equiprent/reservation-engine/reservation"
	"github.com/equiprent/reservation-engine/reservation/postgresengine"
	"github.com/equiprent/reservation-engine/testutil/fixtures"
	"github.com/equiprent/reservation-engine/testutil/postgreswrapper"
	"github.com/equiprent/reservation-engine/testutil/spies"
)

func forEachAdapter(t *testing.T, test func(t *testing.T, store *postgresengine.Store)) {
	for _, adapterType := range postgreswrapper.AdapterTypes() {
		t.Run(adapterType, func(t *testing.T) {
			wrapper := postgreswrapper.CreateWrapper(t, adapterType)
			test(t, wrapper.Store())
		})
	}
}

func givenAsset(t *testing.T, store *postgresengine.Store, status reservation.AssetStatus) reservation.Asset {
	t.Helper()

	asset := fixtures.Asset(status)
	require.NoError(t, store.SaveAsset(context.Background(), asset))

	return asset
}

func Test_Store_CreateThenGet(t *testing.T) {
	forEachAdapter(t, func(t *testing.T, store *postgresengine.Store) {
		// arrange
		ctx := context.Background()
		asset := givenAsset(t, store, reservation.AssetAvailable)
		r := fixtures.Reservation(asset.ID, uuid.New(), "2025-10-03", "2025-10-05", reservation.StatusPending)
		r.Notes = "site B, gate 3"

		// act
		err := store.Create(ctx, 0, r)

		// assert
		require.NoError(t, err)

		got, version, err := store.Get(ctx, r.ID)
		require.NoError(t, err)
		assert.Equal(t, reservation.AssetVersion(1), version)
		assert.Equal(t, r.ID, got.ID)
		assert.Equal(t, r.AssetID, got.AssetID)
		assert.Equal(t, r.RequesterID, got.RequesterID)
		assert.True(t, r.Dates.Equal(got.Dates))
		assert.Equal(t, r.TotalCost, got.TotalCost)
		assert.Equal(t, r.Status, got.Status)
		assert.Equal(t, r.Notes, got.Notes)
		assert.True(t, r.CreatedAt.Equal(got.CreatedAt))
	})
}

func Test_Store_Create_WithStaleVersion_Conflicts(t *testing.T) {
	forEachAdapter(t, func(t *testing.T, store *postgresengine.Store) {
		// arrange
		ctx := context.Background()
		asset := givenAsset(t, store, reservation.AssetAvailable)
		first := fixtures.Reservation(asset.ID, uuid.New(), "2025-10-03", "2025-10-05", reservation.StatusPending)
		second := fixtures.Reservation(asset.ID, uuid.New(), "2025-10-10", "2025-10-12", reservation.StatusPending)
		require.NoError(t, store.Create(ctx, 0, first))

		// act
		err := store.Create(ctx, 0, second)

		// assert
		assert.ErrorIs(t, err, reservation.ErrConcurrencyConflict)

		_, _, err = store.Get(ctx, second.ID)
		assert.ErrorIs(t, err, reservation.ErrNotFound)
	})
}

func Test_Store_ListBlocking(t *testing.T) {
	forEachAdapter(t, func(t *testing.T, store *postgresengine.Store) {
		// arrange
		ctx := context.Background()
		asset := givenAsset(t, store, reservation.AssetAvailable)
		later := fixtures.Reservation(asset.ID, uuid.New(), "2025-10-20", "2025-10-22", reservation.StatusConfirmed)
		earlier := fixtures.Reservation(asset.ID, uuid.New(), "2025-10-03", "2025-10-05", reservation.StatusPending)
		cancelled := fixtures.Reservation(asset.ID, uuid.New(), "2025-10-10", "2025-10-12", reservation.StatusCancelled)

		empty, version, err := store.ListBlocking(ctx, asset.ID)
		require.NoError(t, err)
		assert.Empty(t, empty)
		assert.Zero(t, version)

		fixtures.GivenStored(t, store, later, earlier, cancelled)

		// act
		blocking, version, err := store.ListBlocking(ctx, asset.ID)

		// assert
		require.NoError(t, err)
		assert.Equal(t, reservation.AssetVersion(3), version)
		require.Len(t, blocking, 2)
		assert.Equal(t, earlier.ID, blocking[0].ID)
		assert.Equal(t, later.ID, blocking[1].ID)
	})
}

func Test_Store_ListBlocking_UnknownAsset(t *testing.T) {
	forEachAdapter(t, func(t *testing.T, store *postgresengine.Store) {
		_, _, err := store.ListBlocking(context.Background(), uuid.New())

		assert.ErrorIs(t, err, reservation.ErrNotFound)
	})
}

func Test_Store_UpdateAndDelete(t *testing.T) {
	forEachAdapter(t, func(t *testing.T, store *postgresengine.Store) {
		// arrange
		ctx := context.Background()
		asset := givenAsset(t, store, reservation.AssetAvailable)
		r := fixtures.Reservation(asset.ID, uuid.New(), "2025-10-03", "2025-10-05", reservation.StatusPending)
		fixtures.GivenStored(t, store, r)

		// act
		confirmed := r.WithStatus(reservation.StatusConfirmed, fixtures.Now().Add(time.Hour))
		errStale := store.Update(ctx, 0, confirmed)
		errUpdate := store.Update(ctx, 1, confirmed)
		errDelete := store.Delete(ctx, 2, asset.ID, r.ID)

		// assert
		assert.ErrorIs(t, errStale, reservation.ErrConcurrencyConflict)
		require.NoError(t, errUpdate)
		require.NoError(t, errDelete)

		_, _, err := store.Get(ctx, r.ID)
		assert.ErrorIs(t, err, reservation.ErrNotFound)

		_, version, err := store.ListBlocking(ctx, asset.ID)
		require.NoError(t, err)
		assert.Equal(t, reservation.AssetVersion(3), version)
	})
}

func Test_Store_Update_ReservationOfOtherAsset_Conflicts(t *testing.T) {
	forEachAdapter(t, func(t *testing.T, store *postgresengine.Store) {
		ctx := context.Background()
		asset := givenAsset(t, store, reservation.AssetAvailable)
		other := givenAsset(t, store, reservation.AssetAvailable)
		r := fixtures.Reservation(asset.ID, uuid.New(), "2025-10-03", "2025-10-05", reservation.StatusPending)
		fixtures.GivenStored(t, store, r)

		moved := r
		moved.AssetID = other.ID

		assert.ErrorIs(t, store.Update(ctx, 0, moved), reservation.ErrConcurrencyConflict)
	})
}

func Test_Store_Find(t *testing.T) {
	forEachAdapter(t, func(t *testing.T, store *postgresengine.Store) {
		// arrange
		ctx := context.Background()
		asset := givenAsset(t, store, reservation.AssetAvailable)
		alice, bob := uuid.New(), uuid.New()
		a1 := fixtures.Reservation(asset.ID, alice, "2025-10-03", "2025-10-05", reservation.StatusPending)
		b1 := fixtures.Reservation(asset.ID, bob, "2025-10-07", "2025-10-08", reservation.StatusConfirmed)
		a2 := fixtures.Reservation(asset.ID, alice, "2025-10-10", "2025-10-11", reservation.StatusCancelled)
		fixtures.GivenStored(t, store, a1, b1, a2)

		// act
		all, errAll := store.Find(ctx, reservation.ReservationFilter{AssetID: asset.ID})
		own, errOwn := store.Find(ctx, reservation.ReservationFilter{RequesterID: alice})
		pending, errPending := store.Find(ctx, reservation.ReservationFilter{
			AssetID:  asset.ID,
			Statuses: []reservation.Status{reservation.StatusPending, reservation.StatusConfirmed},
		})

		// assert
		require.NoError(t, errAll)
		require.NoError(t, errOwn)
		require.NoError(t, errPending)
		assert.Len(t, all, 3)
		assert.Equal(t, []uuid.UUID{a1.ID, a2.ID}, ids(own))
		assert.Equal(t, []uuid.UUID{a1.ID, b1.ID}, ids(pending))
	})
}

func Test_Store_Assets(t *testing.T) {
	forEachAdapter(t, func(t *testing.T, store *postgresengine.Store) {
		// arrange
		ctx := context.Background()
		asset := givenAsset(t, store, reservation.AssetAvailable)
		fixtures.GivenStored(t, store, fixtures.Reservation(asset.ID, uuid.New(), "2025-10-03", "2025-10-05", reservation.StatusPending))

		// act
		renamed := asset
		renamed.Name = "Excavator CAT 320 GC"
		renamed.DailyRate = reservation.MoneyFromMinor(30000)
		require.NoError(t, store.SaveAsset(ctx, renamed))
		require.NoError(t, store.SetAssetStatus(ctx, asset.ID, reservation.AssetMaintenance))
		errMissing := store.SetAssetStatus(ctx, uuid.New(), reservation.AssetRented)

		// assert
		assert.ErrorIs(t, errMissing, reservation.ErrNotFound)

		got, err := store.GetAsset(ctx, asset.ID)
		require.NoError(t, err)
		assert.Equal(t, "Excavator CAT 320 GC", got.Name)
		assert.Equal(t, reservation.MoneyFromMinor(30000), got.DailyRate)
		assert.Equal(t, reservation.AssetMaintenance, got.Status)

		_, version, err := store.ListBlocking(ctx, asset.ID)
		require.NoError(t, err)
		assert.Equal(t, reservation.AssetVersion(1), version, "saving an asset keeps its reservation version")

		assets, err := store.ListAssets(ctx)
		require.NoError(t, err)
		assert.Len(t, assets, 1)

		_, err = store.GetAsset(ctx, uuid.New())
		assert.ErrorIs(t, err, reservation.ErrNotFound)
	})
}

func Test_Store_ConcurrentCreates_OnlyOneWins(t *testing.T) {
	forEachAdapter(t, func(t *testing.T, store *postgresengine.Store) {
		// arrange
		ctx := context.Background()
		asset := givenAsset(t, store, reservation.AssetAvailable)
		const writers = 8

		var wins, conflicts atomic.Int32
		var wg sync.WaitGroup

		// act
		for i := 0; i < writers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()

				r := fixtures.Reservation(asset.ID, uuid.New(), "2025-10-03", "2025-10-05", reservation.StatusPending)
				err := store.Create(ctx, 0, r)

				switch {
				case err == nil:
					wins.Add(1)
				case errors.Is(err, reservation.ErrConcurrencyConflict):
					conflicts.Add(1)
				}
			}()
		}
		wg.Wait()

		// assert
		assert.Equal(t, int32(1), wins.Load())
		assert.Equal(t, int32(writers-1), conflicts.Load())
	})
}

func Test_Store_Observability(t *testing.T) {
	// arrange
	ctx := context.Background()
	metrics := spies.NewMetricsCollectorSpy()
	tracing := spies.NewTracingCollectorSpy()
	logHandler := spies.NewLogHandlerSpy(false)

	wrapper := postgreswrapper.CreateWrapper(t, postgreswrapper.TypePGXPool,
		postgresengine.WithMetrics(metrics),
		postgresengine.WithTracing(tracing),
		postgresengine.WithLogger(slog.New(logHandler)),
	)
	store := wrapper.Store()
	asset := givenAsset(t, store, reservation.AssetAvailable)
	r := fixtures.Reservation(asset.ID, uuid.New(), "2025-10-03", "2025-10-05", reservation.StatusPending)

	// act
	require.NoError(t, store.Create(ctx, 0, r))
	assert.ErrorIs(t, store.Create(ctx, 0, r), reservation.ErrConcurrencyConflict)

	// assert
	assert.True(t, metrics.HasDuration(postgresengine.MetricOperationDuration).
		WithLabel("operation", "create").WithStatus("success").Assert())
	assert.True(t, metrics.HasCounter(postgresengine.MetricConcurrencyConflicts).
		WithLabel("operation", "create").Assert())

	span, ok := tracing.FinishedSpan("reservationstore.create")
	require.True(t, ok)
	assert.Equal(t, "success", span.Status)

	assert.True(t, logHandler.HasInfo("reservationstore operation: concurrency conflict detected"))
	assert.True(t, logHandler.HasDebug("executed sql for: create"))
}

func Test_NewStore_RejectsInvalidInput(t *testing.T) {
	_, errPGX := postgresengine.NewStoreFromPGXPool(nil)
	_, errSQL := postgresengine.NewStoreFromSQLDB(nil)
	_, errSQLX := postgresengine.NewStoreFromSQLX(nil)

	assert.ErrorIs(t, errPGX, reservation.ErrNilDatabaseConnection)
	assert.ErrorIs(t, errSQL, reservation.ErrNilDatabaseConnection)
	assert.ErrorIs(t, errSQLX, reservation.ErrNilDatabaseConnection)
}

func ids(rs reservation.Reservations) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(rs))
	for _, r := range rs {
		out = append(out, r.ID)
	}

	return out
}
