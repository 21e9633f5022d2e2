package reservationlist

import (
	"github.com/google/uuid"

	"github.com/equiprent/reservation-engine/reservation"
)

const (
	queryType = "reservation_list"
)

// Query lists reservations visible to the actor, optionally narrowed to an asset and statuses.
type Query struct {
	Actor    reservation.Actor
	AssetID  uuid.UUID
	Statuses []reservation.Status
}

// BuildQuery creates a Query. A nil assetID and no statuses list everything visible.
func BuildQuery(actor reservation.Actor, assetID uuid.UUID, statuses ...reservation.Status) Query {
	return Query{
		Actor:    actor,
		AssetID:  assetID,
		Statuses: statuses,
	}
}

// QueryType returns the query type.
func (q Query) QueryType() string {
	return queryType
}
