package transitionreservation_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/equiprent/reservation-engine/features/command/transitionreservation"
	"github.com/equiprent/reservation-engine/reservation"
	"github.com/equiprent/reservation-engine/reservation/memengine"
	"github.com/equiprent/reservation-engine/shell"
	"github.com/equiprent/reservation-engine/testutil/fixtures"
)

type syncerSpy struct {
	mu     sync.Mutex
	assets []uuid.UUID
	err    error
}

func (s *syncerSpy) Sync(_ context.Context, assetID uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.assets = append(s.assets, assetID)

	return s.err == nil, s.err
}

func Test_CommandHandler_Handle_FullLifecycle(t *testing.T) {
	// arrange
	ctx := context.Background()
	store, asset := fixtures.MemStoreWithAsset(t, reservation.AssetAvailable)
	current := fixtures.Reservation(asset.ID, uuid.New(), "2025-10-03", "2025-10-05", reservation.StatusPending)
	fixtures.GivenStored(t, store, current)
	syncer := &syncerSpy{}
	handler := transitionreservation.NewCommandHandler(store, fixtures.Clock(), transitionreservation.WithAssetStatusSync(syncer))
	operator := reservation.Operator(uuid.New())

	// act
	for _, to := range []reservation.Status{reservation.StatusConfirmed, reservation.StatusActive, reservation.StatusCompleted} {
		result, err := handler.Handle(ctx, transitionreservation.BuildCommand(current.ID, operator, to))
		require.NoError(t, err)
		assert.Equal(t, to, result.Reservation.Status)
	}

	// assert
	stored, version, err := store.Get(ctx, current.ID)
	require.NoError(t, err)
	assert.Equal(t, reservation.StatusCompleted, stored.Status)
	assert.Equal(t, reservation.AssetVersion(4), version)
	assert.Equal(t, []uuid.UUID{asset.ID, asset.ID, asset.ID}, syncer.assets)

	_, err = handler.Handle(ctx, transitionreservation.BuildCommand(current.ID, operator, reservation.StatusActive))
	assert.ErrorIs(t, err, reservation.ErrInvalidTransition)
}

func Test_CommandHandler_Handle_SyncFailure_DoesNotFailCommand(t *testing.T) {
	ctx := context.Background()
	store, asset := fixtures.MemStoreWithAsset(t, reservation.AssetAvailable)
	current := fixtures.Reservation(asset.ID, uuid.New(), "2025-10-03", "2025-10-05", reservation.StatusPending)
	fixtures.GivenStored(t, store, current)
	handler := transitionreservation.NewCommandHandler(store, fixtures.Clock(),
		transitionreservation.WithAssetStatusSync(&syncerSpy{err: errors.New("catalog down")}))

	result, err := handler.Handle(ctx, transitionreservation.BuildCommand(current.ID, reservation.Operator(uuid.New()), reservation.StatusConfirmed))

	require.NoError(t, err)
	assert.Equal(t, reservation.StatusConfirmed, result.Reservation.Status)
}

func Test_CommandHandler_Handle_Rejected_DoesNotSync(t *testing.T) {
	ctx := context.Background()
	store, asset := fixtures.MemStoreWithAsset(t, reservation.AssetAvailable)
	current := fixtures.Reservation(asset.ID, uuid.New(), "2025-10-03", "2025-10-05", reservation.StatusPending)
	fixtures.GivenStored(t, store, current)
	syncer := &syncerSpy{}
	handler := transitionreservation.NewCommandHandler(store, fixtures.Clock(), transitionreservation.WithAssetStatusSync(syncer))

	_, err := handler.Handle(ctx, transitionreservation.BuildCommand(current.ID, reservation.Operator(uuid.New()), reservation.StatusActive))

	assert.ErrorIs(t, err, reservation.ErrInvalidTransition)
	assert.Empty(t, syncer.assets)
}

// bumpingStore makes every update lose against a concurrent writer.
type bumpingStore struct {
	*memengine.Store
}

func (s bumpingStore) Update(ctx context.Context, expected reservation.AssetVersion, r reservation.Reservation) error {
	current, _, err := s.Store.Get(ctx, r.ID)
	if err != nil {
		return err
	}

	if err = s.Store.Update(ctx, expected, current); err != nil {
		return err
	}

	return s.Store.Update(ctx, expected, r)
}

func Test_CommandHandler_Handle_LosingEveryRace_IsInvalidTransition(t *testing.T) {
	store, asset := fixtures.MemStoreWithAsset(t, reservation.AssetAvailable)
	current := fixtures.Reservation(asset.ID, uuid.New(), "2025-10-03", "2025-10-05", reservation.StatusPending)
	fixtures.GivenStored(t, store, current)
	handler := transitionreservation.NewCommandHandler(bumpingStore{Store: store}, fixtures.Clock(),
		transitionreservation.WithRetryOptions(shell.WithBaseDelay(time.Millisecond)))

	result, err := handler.Handle(context.Background(),
		transitionreservation.BuildCommand(current.ID, reservation.Operator(uuid.New()), reservation.StatusConfirmed))

	assert.ErrorIs(t, err, reservation.ErrInvalidTransition)
	assert.True(t, result.RetriesExhausted)
}
