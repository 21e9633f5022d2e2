package editreservation_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/equiprent/reservation-engine/features/command/editreservation"
	"github.com/equiprent/reservation-engine/reservation"
	"github.com/equiprent/reservation-engine/testutil/fixtures"
)

func Test_CommandHandler_Handle_Success(t *testing.T) {
	// arrange
	ctx := context.Background()
	store, asset := fixtures.MemStoreWithAsset(t, reservation.AssetAvailable)
	owner := reservation.Owner(uuid.New())
	current := fixtures.Reservation(asset.ID, owner.ID, "2025-10-03", "2025-10-05", reservation.StatusPending)
	fixtures.GivenStored(t, store, current)
	handler := editreservation.NewCommandHandler(store, fixtures.Rules(), fixtures.Clock())

	// act
	result, err := handler.Handle(ctx, editreservation.BuildCommand(current.ID, owner, ptr("2025-10-04"), ptr("2025-10-08"), ptr("late pickup")))

	// assert
	require.NoError(t, err)
	assert.False(t, result.Idempotent)

	stored, version, err := store.Get(ctx, current.ID)
	require.NoError(t, err)
	assert.Equal(t, "2025-10-04..2025-10-08", stored.Dates.String())
	assert.Equal(t, reservation.MoneyFromMinor(125000), stored.TotalCost)
	assert.Equal(t, "late pickup", stored.Notes)
	assert.Equal(t, reservation.AssetVersion(2), version)
}

func Test_CommandHandler_Handle_ConflictWithOther(t *testing.T) {
	ctx := context.Background()
	store, asset := fixtures.MemStoreWithAsset(t, reservation.AssetAvailable)
	owner := reservation.Owner(uuid.New())
	current := fixtures.Reservation(asset.ID, owner.ID, "2025-10-03", "2025-10-05", reservation.StatusPending)
	other := fixtures.Reservation(asset.ID, uuid.New(), "2025-10-06", "2025-10-09", reservation.StatusPending)
	fixtures.GivenStored(t, store, current, other)
	handler := editreservation.NewCommandHandler(store, fixtures.Rules(), fixtures.Clock())

	result, err := handler.Handle(ctx, editreservation.BuildCommand(current.ID, owner, nil, ptr("2025-10-07"), nil))

	assert.ErrorIs(t, err, reservation.ErrDateConflict)
	assert.True(t, result.Rejected)

	stored, _, err := store.Get(ctx, current.ID)
	require.NoError(t, err)
	assert.Equal(t, current, stored)
}

func Test_CommandHandler_Handle_NoChange_DoesNotWrite(t *testing.T) {
	ctx := context.Background()
	store, asset := fixtures.MemStoreWithAsset(t, reservation.AssetAvailable)
	owner := reservation.Owner(uuid.New())
	current := fixtures.Reservation(asset.ID, owner.ID, "2025-10-03", "2025-10-05", reservation.StatusPending)
	fixtures.GivenStored(t, store, current)
	handler := editreservation.NewCommandHandler(store, fixtures.Rules(), fixtures.Clock())

	result, err := handler.Handle(ctx, editreservation.BuildCommand(current.ID, owner, nil, nil, nil))

	require.NoError(t, err)
	assert.True(t, result.Idempotent)

	_, version, err := store.Get(ctx, current.ID)
	require.NoError(t, err)
	assert.Equal(t, reservation.AssetVersion(1), version)
}

func Test_CommandHandler_Handle_Missing(t *testing.T) {
	store, _ := fixtures.MemStoreWithAsset(t, reservation.AssetAvailable)
	handler := editreservation.NewCommandHandler(store, fixtures.Rules(), fixtures.Clock())

	_, err := handler.Handle(context.Background(), editreservation.BuildCommand(uuid.New(), reservation.Owner(uuid.New()), nil, ptr("2025-10-07"), nil))

	assert.ErrorIs(t, err, reservation.ErrNotFound)
}
