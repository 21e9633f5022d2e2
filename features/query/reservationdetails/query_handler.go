package reservationdetails

import (
	"context"

	"github.com/google/uuid"

	"github.com/equiprent/reservation-engine/reservation"
)

// Store is the persistence the QueryHandler needs.
type Store interface {
	Get(ctx context.Context, id uuid.UUID) (reservation.Reservation, reservation.AssetVersion, error)
}

// QueryHandler fetches a reservation and checks the actor may see it.
type QueryHandler struct {
	store Store
}

// NewQueryHandler creates a QueryHandler.
func NewQueryHandler(store Store) QueryHandler {
	return QueryHandler{store: store}
}

// Handle returns the reservation. Owners asking for someone else's reservation get ErrForbidden.
func (h QueryHandler) Handle(ctx context.Context, query Query) (reservation.Reservation, error) {
	if _, err := reservation.ParseRole(string(query.Actor.Role)); err != nil {
		return reservation.Reservation{}, err
	}

	r, _, err := h.store.Get(reservation.WithEventualConsistency(ctx), query.ReservationID)
	if err != nil {
		return reservation.Reservation{}, err
	}

	if !query.Actor.CanAccess(r.RequesterID) {
		return reservation.Reservation{}, reservation.Reject(reservation.ErrForbidden, "reservation belongs to another customer")
	}

	return r, nil
}
