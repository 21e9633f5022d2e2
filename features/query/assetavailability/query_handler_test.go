package assetavailability_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/equiprent/reservation-engine/features/query/assetavailability"
	"github.com/equiprent/reservation-engine/reservation"
	"github.com/equiprent/reservation-engine/testutil/fixtures"
)

func Test_QueryHandler_HasConflict(t *testing.T) {
	// arrange
	ctx := context.Background()
	store, asset := fixtures.MemStoreWithAsset(t, reservation.AssetAvailable)
	booked := fixtures.Reservation(asset.ID, uuid.New(), "2025-10-03", "2025-10-05", reservation.StatusConfirmed)
	fixtures.GivenStored(t, store,
		booked,
		fixtures.Reservation(asset.ID, uuid.New(), "2025-10-10", "2025-10-12", reservation.StatusCancelled),
	)
	handler := assetavailability.NewQueryHandler(store, fixtures.Calendar())

	testCases := []struct {
		name     string
		start    string
		end      string
		exclude  *uuid.UUID
		conflict bool
	}{
		{"overlapping the start", "2025-10-01", "2025-10-04", nil, true},
		{"inside", "2025-10-03", "2025-10-04", nil, true},
		{"ending on its start date", "2025-10-01", "2025-10-03", nil, false},
		{"starting on its end date", "2025-10-05", "2025-10-07", nil, false},
		{"over a cancelled reservation", "2025-10-10", "2025-10-12", nil, false},
		{"excluding the overlapped reservation", "2025-10-02", "2025-10-04", &booked.ID, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// act
			conflict, err := handler.HasConflict(ctx, asset.ID, tc.start, tc.end, tc.exclude)

			// assert
			require.NoError(t, err)
			assert.Equal(t, tc.conflict, conflict)
		})
	}
}

func Test_QueryHandler_Handle_ListsBookedRanges(t *testing.T) {
	ctx := context.Background()
	store, asset := fixtures.MemStoreWithAsset(t, reservation.AssetAvailable)
	later := fixtures.Reservation(asset.ID, uuid.New(), "2025-11-01", "2025-11-03", reservation.StatusPending)
	earlier := fixtures.Reservation(asset.ID, uuid.New(), "2025-10-03", "2025-10-05", reservation.StatusActive)
	fixtures.GivenStored(t, store, later, earlier)
	handler := assetavailability.NewQueryHandler(store, fixtures.Calendar())

	availability, err := handler.Handle(ctx, assetavailability.BuildQuery(asset.ID, "", "", nil))

	require.NoError(t, err)
	assert.False(t, availability.Checked)
	require.Len(t, availability.BookedRanges, 2)
	assert.Equal(t, earlier.ID, availability.BookedRanges[0].ReservationID)
	assert.Equal(t, later.ID, availability.BookedRanges[1].ReservationID)
}

func Test_QueryHandler_Handle_ReportsConflictingReservation(t *testing.T) {
	ctx := context.Background()
	store, asset := fixtures.MemStoreWithAsset(t, reservation.AssetAvailable)
	booked := fixtures.Reservation(asset.ID, uuid.New(), "2025-10-03", "2025-10-05", reservation.StatusPending)
	fixtures.GivenStored(t, store, booked)
	handler := assetavailability.NewQueryHandler(store, fixtures.Calendar())

	availability, err := handler.Handle(ctx, assetavailability.BuildQuery(asset.ID, "2025-10-04", "2025-10-06", nil))

	require.NoError(t, err)
	assert.True(t, availability.Checked)
	assert.False(t, availability.Available)
	require.NotNil(t, availability.ConflictingReservationID)
	assert.Equal(t, booked.ID, *availability.ConflictingReservationID)
}

func Test_QueryHandler_Handle_Rejections(t *testing.T) {
	ctx := context.Background()
	store, asset := fixtures.MemStoreWithAsset(t, reservation.AssetAvailable)
	handler := assetavailability.NewQueryHandler(store, fixtures.Calendar())

	_, err := handler.HasConflict(ctx, asset.ID, "2025-10-3", "2025-10-05", nil)
	assert.ErrorIs(t, err, reservation.ErrInvalidDateFormat)

	_, err = handler.HasConflict(ctx, asset.ID, "2025-10-05", "2025-10-05", nil)
	assert.ErrorIs(t, err, reservation.ErrInvalidRange)

	_, err = handler.HasConflict(ctx, uuid.New(), "2025-10-03", "2025-10-05", nil)
	assert.ErrorIs(t, err, reservation.ErrNotFound)
}
