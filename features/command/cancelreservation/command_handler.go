package cancelreservation

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/equiprent/reservation-engine/reservation"
	"github.com/equiprent/reservation-engine/shell"
)

// Store is the persistence the CommandHandler needs.
type Store interface {
	Get(ctx context.Context, id uuid.UUID) (reservation.Reservation, reservation.AssetVersion, error)
	Update(ctx context.Context, expected reservation.AssetVersion, r reservation.Reservation) error
	Delete(ctx context.Context, expected reservation.AssetVersion, assetID uuid.UUID, id uuid.UUID) error
}

// CommandHandler runs read, decide and write for a cancel command.
type CommandHandler struct {
	store        Store
	clock        reservation.Clock
	syncer       shell.AssetStatusSyncer
	purge        bool
	retryOptions []shell.RetryOption
}

// Option configures a CommandHandler.
type Option func(*CommandHandler)

// WithRetryOptions replaces the default retry configuration.
func WithRetryOptions(opts ...shell.RetryOption) Option {
	return func(h *CommandHandler) {
		h.retryOptions = opts
	}
}

// WithAssetStatusSync re-derives the asset's status after every applied cancellation.
func WithAssetStatusSync(syncer shell.AssetStatusSyncer) Option {
	return func(h *CommandHandler) {
		h.syncer = syncer
	}
}

// WithPurgeCancelled deletes cancelled reservations instead of keeping them.
func WithPurgeCancelled(purge bool) Option {
	return func(h *CommandHandler) {
		h.purge = purge
	}
}

// NewCommandHandler creates a CommandHandler.
func NewCommandHandler(store Store, clock reservation.Clock, opts ...Option) CommandHandler {
	handler := CommandHandler{
		store: store,
		clock: clock,
	}

	for _, opt := range opts {
		opt(&handler)
	}

	return handler
}

// Handle cancels the reservation. The result carries the cancelled state even when the row was purged.
func (h CommandHandler) Handle(ctx context.Context, command Command) (shell.HandlerResult, error) {
	var result reservation.DecisionResult

	retryMetrics, err := shell.RetryWithExponentialBackoff(ctx, func(retryCtx context.Context) error {
		var execErr error
		result, execErr = h.executeCommand(retryCtx, command)

		return execErr
	}, h.retryOptions...)

	if err != nil {
		err = shell.RejectLostRace(err, reservation.ErrInvalidTransition, "reservation changed concurrently")
		return shell.NewErrorResult(err, retryMetrics), err
	}

	if h.syncer != nil {
		// best effort, the syncer logs its own failures
		_, _ = h.syncer.Sync(ctx, result.Reservation.AssetID)
	}

	return shell.NewSuccessResult(result.Reservation, retryMetrics), nil
}

func (h CommandHandler) executeCommand(ctx context.Context, command Command) (reservation.DecisionResult, error) {
	ctx = reservation.WithStrongConsistency(ctx)

	state := State{}

	current, version, err := h.store.Get(ctx, command.ReservationID)
	switch {
	case err == nil:
		state = State{Current: current, Found: true}
	case !errors.Is(err, reservation.ErrNotFound):
		return reservation.DecisionResult{}, err
	}

	result := Decide(state, command, h.clock.Now().UTC())
	if err = result.HasError(); err != nil {
		return result, err
	}

	if h.purge {
		return result, h.store.Delete(ctx, version, current.AssetID, current.ID)
	}

	return result, h.store.Update(ctx, version, result.Reservation)
}
