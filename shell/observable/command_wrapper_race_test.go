package observable_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/equiprent/reservation-engine/features/command/createreservation"
	"github.com/equiprent/reservation-engine/reservation"
	"github.com/equiprent/reservation-engine/reservation/memengine"
	"github.com/equiprent/reservation-engine/shell"
	"github.com/equiprent/reservation-engine/shell/observable"
	"github.com/equiprent/reservation-engine/testutil/fixtures"
	"github.com/equiprent/reservation-engine/testutil/spies"
)

// contendedStore bumps the asset version right before every reservation write, so each write loses.
type contendedStore struct {
	*memengine.Store
}

func (s contendedStore) Create(ctx context.Context, expected reservation.AssetVersion, r reservation.Reservation) error {
	rival := fixtures.Reservation(r.AssetID, uuid.New(), "2026-01-01", "2026-01-02", reservation.StatusCancelled)
	if err := s.Store.Create(ctx, expected, rival); err != nil {
		return err
	}

	return s.Store.Create(ctx, expected, r)
}

func Test_CommandWrapper_Handle_CountsCommandsThatLoseEveryRace(t *testing.T) {
	// arrange
	store, asset := fixtures.MemStoreWithAsset(t, reservation.AssetAvailable)
	handler := createreservation.NewCommandHandler(contendedStore{Store: store}, fixtures.Rules(), fixtures.Clock(),
		createreservation.WithRetryOptions(shell.WithBaseDelay(time.Millisecond)))
	metrics := spies.NewMetricsCollectorSpy()

	wrapper, err := observable.NewCommandWrapper[createreservation.Command](
		handler,
		observable.WithCommandMetrics[createreservation.Command](metrics),
	)
	require.NoError(t, err)

	command := createreservation.BuildCommand(uuid.New(), asset.ID, reservation.Owner(uuid.New()), "2025-10-03", "2025-10-05", "")

	// act
	result, err := wrapper.Handle(context.Background(), command)

	// assert
	assert.ErrorIs(t, err, reservation.ErrDateConflict)
	assert.True(t, result.RetriesExhausted)
	assert.True(t, metrics.HasCounter(shell.CommandHandlerCallsMetric).WithStatus(shell.StatusRejected).Assert())
	assert.Equal(t, 1, metrics.Count(spies.KindCounter, shell.CommandHandlerConcurrencyConflictMetric))
}

func Test_CommandWrapper_Handle_PlainRejectionIsNoLostRace(t *testing.T) {
	// arrange
	handler := &handlerStub{
		result: shell.HandlerResult{Rejected: true, RetryAttempts: 1},
		err:    reservation.Reject(reservation.ErrDateConflict, "overlaps an existing reservation"),
	}
	metrics := spies.NewMetricsCollectorSpy()

	wrapper, err := observable.NewCommandWrapper[testCommand](handler, observable.WithCommandMetrics[testCommand](metrics))
	require.NoError(t, err)

	// act
	_, err = wrapper.Handle(context.Background(), testCommand{})

	// assert
	assert.ErrorIs(t, err, reservation.ErrDateConflict)
	assert.Equal(t, 0, metrics.Count(spies.KindCounter, shell.CommandHandlerConcurrencyConflictMetric))
}
