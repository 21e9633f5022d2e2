package reservationlist

import (
	"github.com/equiprent/reservation-engine/reservation"
)

// ReservationList is the query result, ordered by start date.
type ReservationList struct {
	Reservations reservation.Reservations
	Count        int
}
