package reservationstatistics

import (
	"github.com/equiprent/reservation-engine/reservation"
)

const (
	queryType = "reservation_statistics"
)

// Query asks for the dashboard figures. Only operators may ask.
type Query struct {
	Actor reservation.Actor
}

// BuildQuery creates a Query.
func BuildQuery(actor reservation.Actor) Query {
	return Query{Actor: actor}
}

// QueryType returns the query type.
func (q Query) QueryType() string {
	return queryType
}
