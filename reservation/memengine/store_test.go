package memengine_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/equiprent/reservation-engine/reservation"
	"github.com/equiprent/reservation-engine/reservation/memengine"
)

func givenStoreWithAsset(t *testing.T) (*memengine.Store, reservation.Asset) {
	t.Helper()

	store := memengine.NewStore()
	asset := reservation.BuildAsset(uuid.New(), "Excavator CAT 320", reservation.MoneyFromMinor(25000), reservation.AssetAvailable)
	require.NoError(t, store.SaveAsset(context.Background(), asset))

	return store, asset
}

func newReservation(assetID uuid.UUID, start, end string, status reservation.Status) reservation.Reservation {
	now := time.Date(2025, 9, 1, 8, 0, 0, 0, time.UTC)

	return reservation.Reservation{
		ID:          uuid.New(),
		AssetID:     assetID,
		RequesterID: uuid.New(),
		Dates:       reservation.NewDateRange(reservation.MustParseDay(start), reservation.MustParseDay(end)),
		TotalCost:   reservation.MoneyFromMinor(75000),
		Status:      status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func Test_Store_Create_BumpsVersion(t *testing.T) {
	// arrange
	ctx := context.Background()
	store, asset := givenStoreWithAsset(t)
	r := newReservation(asset.ID, "2025-10-03", "2025-10-05", reservation.StatusPending)

	// act
	err := store.Create(ctx, 0, r)

	// assert
	require.NoError(t, err)

	blocking, version, err := store.ListBlocking(ctx, asset.ID)
	require.NoError(t, err)
	assert.Equal(t, reservation.AssetVersion(1), version)
	assert.Equal(t, reservation.Reservations{r}, blocking)

	got, gotVersion, err := store.Get(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, r, got)
	assert.Equal(t, version, gotVersion)
}

func Test_Store_Write_WithStaleVersion_IsConflict(t *testing.T) {
	// arrange
	ctx := context.Background()
	store, asset := givenStoreWithAsset(t)
	first := newReservation(asset.ID, "2025-10-03", "2025-10-05", reservation.StatusPending)
	require.NoError(t, store.Create(ctx, 0, first))

	// act
	errCreate := store.Create(ctx, 0, newReservation(asset.ID, "2025-11-01", "2025-11-02", reservation.StatusPending))
	errUpdate := store.Update(ctx, 0, first.WithStatus(reservation.StatusConfirmed, time.Now()))
	errDelete := store.Delete(ctx, 0, asset.ID, first.ID)

	// assert
	assert.ErrorIs(t, errCreate, reservation.ErrConcurrencyConflict)
	assert.ErrorIs(t, errUpdate, reservation.ErrConcurrencyConflict)
	assert.ErrorIs(t, errDelete, reservation.ErrConcurrencyConflict)
}

func Test_Store_ListBlocking_IgnoresNonBlockingStatuses(t *testing.T) {
	// arrange
	ctx := context.Background()
	store, asset := givenStoreWithAsset(t)
	pending := newReservation(asset.ID, "2025-10-01", "2025-10-02", reservation.StatusPending)
	cancelled := newReservation(asset.ID, "2025-10-03", "2025-10-04", reservation.StatusCancelled)
	require.NoError(t, store.Create(ctx, 0, pending))
	require.NoError(t, store.Create(ctx, 1, cancelled))

	// act
	blocking, version, err := store.ListBlocking(ctx, asset.ID)

	// assert
	require.NoError(t, err)
	assert.Equal(t, reservation.AssetVersion(2), version)
	assert.Equal(t, reservation.Reservations{pending}, blocking)
}

func Test_Store_Missing_IsNotFound(t *testing.T) {
	ctx := context.Background()
	store := memengine.NewStore()

	_, _, err := store.Get(ctx, uuid.New())
	assert.ErrorIs(t, err, reservation.ErrNotFound)

	_, _, err = store.ListBlocking(ctx, uuid.New())
	assert.ErrorIs(t, err, reservation.ErrNotFound)

	_, err = store.GetAsset(ctx, uuid.New())
	assert.ErrorIs(t, err, reservation.ErrNotFound)

	err = store.SetAssetStatus(ctx, uuid.New(), reservation.AssetRented)
	assert.ErrorIs(t, err, reservation.ErrNotFound)
}

func Test_Store_Find_FiltersAndOrdersByStartDate(t *testing.T) {
	// arrange
	ctx := context.Background()
	store, asset := givenStoreWithAsset(t)
	late := newReservation(asset.ID, "2025-12-01", "2025-12-02", reservation.StatusPending)
	early := newReservation(asset.ID, "2025-10-01", "2025-10-02", reservation.StatusConfirmed)
	require.NoError(t, store.Create(ctx, 0, late))
	require.NoError(t, store.Create(ctx, 1, early))

	// act
	all, err := store.Find(ctx, reservation.ReservationFilter{})
	require.NoError(t, err)
	confirmed, err := store.Find(ctx, reservation.ReservationFilter{Statuses: []reservation.Status{reservation.StatusConfirmed}})
	require.NoError(t, err)
	own, err := store.Find(ctx, reservation.ReservationFilter{RequesterID: late.RequesterID})
	require.NoError(t, err)

	// assert
	assert.Equal(t, reservation.Reservations{early, late}, all)
	assert.Equal(t, reservation.Reservations{early}, confirmed)
	assert.Equal(t, reservation.Reservations{late}, own)
}

func Test_Store_Delete_RemovesReservation(t *testing.T) {
	ctx := context.Background()
	store, asset := givenStoreWithAsset(t)
	r := newReservation(asset.ID, "2025-10-01", "2025-10-02", reservation.StatusCancelled)
	require.NoError(t, store.Create(ctx, 0, r))

	err := store.Delete(ctx, 1, asset.ID, r.ID)

	require.NoError(t, err)
	_, _, err = store.Get(ctx, r.ID)
	assert.ErrorIs(t, err, reservation.ErrNotFound)
}

func Test_Store_SaveAsset_KeepsVersion(t *testing.T) {
	ctx := context.Background()
	store, asset := givenStoreWithAsset(t)
	require.NoError(t, store.Create(ctx, 0, newReservation(asset.ID, "2025-10-01", "2025-10-02", reservation.StatusPending)))

	asset.DailyRate = reservation.MoneyFromMinor(30000)
	require.NoError(t, store.SaveAsset(ctx, asset))

	_, version, err := store.ListBlocking(ctx, asset.ID)
	require.NoError(t, err)
	assert.Equal(t, reservation.AssetVersion(1), version)

	got, err := store.GetAsset(ctx, asset.ID)
	require.NoError(t, err)
	assert.Equal(t, reservation.MoneyFromMinor(30000), got.DailyRate)
}

func Test_Store_ConcurrentWritesAtSameVersion_OnlyOneWins(t *testing.T) {
	// arrange
	ctx := context.Background()
	store, asset := givenStoreWithAsset(t)

	const writers = 20
	var wins atomic.Int32
	var wg sync.WaitGroup

	// act
	for i := 0; i < writers; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			r := newReservation(asset.ID, "2025-10-01", "2025-10-05", reservation.StatusPending)
			if err := store.Create(ctx, 0, r); err == nil {
				wins.Add(1)
			}
		}()
	}

	wg.Wait()

	// assert
	assert.Equal(t, int32(1), wins.Load())
}

func Test_Store_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	store := memengine.NewStore()

	_, err := store.ListAssets(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
