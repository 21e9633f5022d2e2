package createreservation

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/equiprent/reservation-engine/reservation"
	"github.com/equiprent/reservation-engine/shell"
)

// Store is the persistence the CommandHandler needs.
type Store interface {
	GetAsset(ctx context.Context, id uuid.UUID) (reservation.Asset, error)
	ListBlocking(ctx context.Context, assetID uuid.UUID) (reservation.Reservations, reservation.AssetVersion, error)
	Get(ctx context.Context, id uuid.UUID) (reservation.Reservation, reservation.AssetVersion, error)
	Create(ctx context.Context, expected reservation.AssetVersion, r reservation.Reservation) error
}

// CommandHandler runs read, decide and write for a create command.
type CommandHandler struct {
	store        Store
	rules        reservation.BookingRules
	clock        reservation.Clock
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

// NewCommandHandler creates a CommandHandler.
func NewCommandHandler(store Store, rules reservation.BookingRules, clock reservation.Clock, opts ...Option) CommandHandler {
	handler := CommandHandler{
		store: store,
		rules: rules,
		clock: clock,
	}

	for _, opt := range opts {
		opt(&handler)
	}

	return handler
}

// Handle creates the reservation. When another write for the same asset keeps winning the race,
// the command is rejected with ErrDateConflict.
func (h CommandHandler) Handle(ctx context.Context, command Command) (shell.HandlerResult, error) {
	var result reservation.DecisionResult

	retryMetrics, err := shell.RetryWithExponentialBackoff(ctx, func(retryCtx context.Context) error {
		var execErr error
		result, execErr = h.executeCommand(retryCtx, command)

		return execErr
	}, h.retryOptions...)

	if err != nil {
		err = shell.RejectLostRace(err, reservation.ErrDateConflict, "asset was booked concurrently")
		return shell.NewErrorResult(err, retryMetrics), err
	}

	if result.IsIdempotent() {
		return shell.NewIdempotentResult(result.Reservation, retryMetrics), nil
	}

	return shell.NewSuccessResult(result.Reservation, retryMetrics), nil
}

func (h CommandHandler) executeCommand(ctx context.Context, command Command) (reservation.DecisionResult, error) {
	ctx = reservation.WithStrongConsistency(ctx)

	state, version, err := h.readState(ctx, command)
	if err != nil {
		return reservation.DecisionResult{}, err
	}

	result := Decide(state, command, h.rules, h.clock.Now().UTC())
	if err = result.HasError(); err != nil {
		return result, err
	}

	if !result.HasChangeToWrite() {
		return result, nil
	}

	return result, h.store.Create(ctx, version, result.Reservation)
}

func (h CommandHandler) readState(ctx context.Context, command Command) (State, reservation.AssetVersion, error) {
	state := State{}

	existing, _, err := h.store.Get(ctx, command.ReservationID)
	switch {
	case err == nil:
		state.Existing = &existing
		return state, 0, nil
	case !errors.Is(err, reservation.ErrNotFound):
		return state, 0, err
	}

	asset, err := h.store.GetAsset(ctx, command.AssetID)
	switch {
	case errors.Is(err, reservation.ErrNotFound):
		return state, 0, nil
	case err != nil:
		return state, 0, err
	}

	state.Asset = asset
	state.AssetFound = true

	blocking, version, err := h.store.ListBlocking(ctx, command.AssetID)
	if err != nil {
		return state, 0, err
	}

	state.Blocking = blocking

	return state, version, nil
}
