package assetavailability

import (
	"github.com/google/uuid"

	"github.com/equiprent/reservation-engine/reservation"
)

// ProjectAvailability builds the availability of an asset from its blocking reservations.
// requested is nil when no range was asked about.
//
// Query Logic:
//
//	GIVEN: the blocking reservations of an asset
//	WHEN: the availability query is executed
//	THEN: every blocking reservation's range is listed in start order
//	AND: for a requested range, the first overlapping reservation is reported, skipping the excluded one
func ProjectAvailability(
	calendar reservation.BusinessCalendar,
	assetID uuid.UUID,
	blocking reservation.Reservations,
	requested *reservation.DateRange,
	exclude *uuid.UUID,
) Availability {
	result := Availability{
		AssetID:      assetID,
		BookedRanges: make([]BookedRange, 0, len(blocking)),
	}

	for _, r := range blocking.Blocking() {
		result.BookedRanges = append(result.BookedRanges, BookedRange{
			ReservationID: r.ID,
			Dates:         r.Dates,
			Status:        r.Status,
		})
	}

	if requested == nil {
		return result
	}

	result.Checked = true
	result.Requested = *requested
	result.Available = true

	if conflict, found := reservation.FindConflict(calendar, blocking, *requested, exclude); found {
		result.Available = false
		result.ConflictingReservationID = &conflict.ID
	}

	return result
}
