package reservationdetails

import (
	"github.com/google/uuid"

	"github.com/equiprent/reservation-engine/reservation"
)

const (
	queryType = "reservation_details"
)

// Query asks for one reservation on behalf of an actor.
type Query struct {
	ReservationID uuid.UUID
	Actor         reservation.Actor
}

// BuildQuery creates a Query.
func BuildQuery(reservationID uuid.UUID, actor reservation.Actor) Query {
	return Query{
		ReservationID: reservationID,
		Actor:         actor,
	}
}

// QueryType returns the query type.
func (q Query) QueryType() string {
	return queryType
}
