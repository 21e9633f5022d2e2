package assetavailability

import (
	"github.com/google/uuid"

	"github.com/equiprent/reservation-engine/reservation"
)

// BookedRange is the date range one blocking reservation occupies.
type BookedRange struct {
	ReservationID uuid.UUID
	Dates         reservation.DateRange
	Status        reservation.Status
}

// Availability is the query result.
type Availability struct {
	AssetID      uuid.UUID
	BookedRanges []BookedRange

	// Checked is true when a date range was asked about; Available and ConflictingReservationID
	// are meaningful only then.
	Checked                  bool
	Requested                reservation.DateRange
	Available                bool
	ConflictingReservationID *uuid.UUID
}
