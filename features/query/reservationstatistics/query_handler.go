package reservationstatistics

import (
	"context"

	"github.com/equiprent/reservation-engine/reservation"
)

// Store is the persistence the QueryHandler needs.
type Store interface {
	ListAssets(ctx context.Context) (reservation.Assets, error)
	Find(ctx context.Context, filter reservation.ReservationFilter) (reservation.Reservations, error)
}

// QueryHandler computes the dashboard.
type QueryHandler struct {
	store Store
}

// NewQueryHandler creates a QueryHandler.
func NewQueryHandler(store Store) QueryHandler {
	return QueryHandler{store: store}
}

// Handle returns the statistics. Non-operators get ErrForbidden.
func (h QueryHandler) Handle(ctx context.Context, query Query) (Statistics, error) {
	if !query.Actor.IsOperator() {
		return Statistics{}, reservation.Reject(reservation.ErrForbidden, "statistics are for operators")
	}

	ctx = reservation.WithEventualConsistency(ctx)

	assets, err := h.store.ListAssets(ctx)
	if err != nil {
		return Statistics{}, err
	}

	reservations, err := h.store.Find(ctx, reservation.ReservationFilter{})
	if err != nil {
		return Statistics{}, err
	}

	return ProjectStatistics(assets, reservations), nil
}
