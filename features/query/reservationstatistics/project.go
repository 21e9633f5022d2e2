package reservationstatistics

import (
	"github.com/equiprent/reservation-engine/reservation"
)

// ProjectStatistics tallies assets and reservations.
// Every reservation status appears in the maps, with zero when nothing is in it.
func ProjectStatistics(assets reservation.Assets, reservations reservation.Reservations) Statistics {
	stats := Statistics{
		TotalAssets:           len(assets),
		AssetsByStatus:        map[reservation.AssetStatus]int{},
		TotalReservations:     len(reservations),
		ReservationsByStatus:  reservations.CountByStatus(),
		BookedRevenueByStatus: make(map[reservation.Status]reservation.Money, len(reservation.AllStatuses)),
	}

	for _, asset := range assets {
		stats.AssetsByStatus[asset.Status]++
	}

	stats.AvailableAssets = stats.AssetsByStatus[reservation.AssetAvailable]

	for _, status := range reservation.AllStatuses {
		stats.BookedRevenueByStatus[status] = 0
	}

	for _, r := range reservations {
		stats.BookedRevenueByStatus[r.Status] += r.TotalCost
	}

	return stats
}
