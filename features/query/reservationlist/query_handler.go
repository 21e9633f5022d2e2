package reservationlist

import (
	"context"

	"github.com/google/uuid"

	"github.com/equiprent/reservation-engine/reservation"
)

// Store is the persistence the QueryHandler needs.
type Store interface {
	Find(ctx context.Context, filter reservation.ReservationFilter) (reservation.Reservations, error)
}

// QueryHandler lists reservations.
type QueryHandler struct {
	store Store
}

// NewQueryHandler creates a QueryHandler.
func NewQueryHandler(store Store) QueryHandler {
	return QueryHandler{store: store}
}

// Handle returns the visible reservations. Owners only ever see their own.
func (h QueryHandler) Handle(ctx context.Context, query Query) (ReservationList, error) {
	if _, err := reservation.ParseRole(string(query.Actor.Role)); err != nil {
		return ReservationList{}, err
	}

	for _, status := range query.Statuses {
		if _, err := reservation.ParseStatus(string(status)); err != nil {
			return ReservationList{}, err
		}
	}

	filter := reservation.ReservationFilter{
		AssetID:  query.AssetID,
		Statuses: query.Statuses,
	}

	if !query.Actor.IsOperator() {
		filter.RequesterID = query.Actor.ID

		if query.Actor.ID == uuid.Nil {
			return ReservationList{}, reservation.Reject(reservation.ErrForbidden, "owner without id")
		}
	}

	found, err := h.store.Find(reservation.WithEventualConsistency(ctx), filter)
	if err != nil {
		return ReservationList{}, err
	}

	return ReservationList{Reservations: found, Count: len(found)}, nil
}
