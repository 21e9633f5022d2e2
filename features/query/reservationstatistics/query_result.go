package reservationstatistics

import (
	"github.com/equiprent/reservation-engine/reservation"
)

// Statistics is the query result.
type Statistics struct {
	TotalAssets           int
	AvailableAssets       int
	AssetsByStatus        map[reservation.AssetStatus]int
	TotalReservations     int
	ReservationsByStatus  map[reservation.Status]int
	BookedRevenueByStatus map[reservation.Status]reservation.Money
}
