package reservation

import (
	"time"

	"github.com/google/uuid"
)

// Reservation is a booking of one asset for an inclusive range of calendar days.
type Reservation struct {
	ID          uuid.UUID
	AssetID     uuid.UUID
	RequesterID uuid.UUID
	Dates       DateRange
	TotalCost   Money
	Status      Status
	Notes       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Reservations is a list of reservations.
type Reservations []Reservation

// WithStatus returns a copy of r moved to status at the given instant.
func (r Reservation) WithStatus(status Status, at time.Time) Reservation {
	r.Status = status
	r.UpdatedAt = at

	return r
}

// Blocking returns the reservations that occupy their asset's calendar.
func (rs Reservations) Blocking() Reservations {
	blocking := make(Reservations, 0, len(rs))

	for _, r := range rs {
		if r.Status.IsBlocking() {
			blocking = append(blocking, r)
		}
	}

	return blocking
}

// CountByStatus tallies the reservations per status. Every status is present in the result.
func (rs Reservations) CountByStatus() map[Status]int {
	counts := make(map[Status]int, len(AllStatuses))
	for _, status := range AllStatuses {
		counts[status] = 0
	}

	for _, r := range rs {
		counts[r.Status]++
	}

	return counts
}

// ReservationFilter narrows a store lookup. Zero fields do not filter.
type ReservationFilter struct {
	AssetID     uuid.UUID
	RequesterID uuid.UUID
	Statuses    []Status
}

// Matches reports whether r passes the filter.
func (f ReservationFilter) Matches(r Reservation) bool {
	if f.AssetID != uuid.Nil && r.AssetID != f.AssetID {
		return false
	}

	if f.RequesterID != uuid.Nil && r.RequesterID != f.RequesterID {
		return false
	}

	if len(f.Statuses) == 0 {
		return true
	}

	for _, status := range f.Statuses {
		if r.Status == status {
			return true
		}
	}

	return false
}
