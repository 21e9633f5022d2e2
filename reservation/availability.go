package reservation

import (
	"github.com/google/uuid"
)

// FindConflict returns the first reservation in existing whose blocking range overlaps candidate.
// Reservations that are not in a blocking status are ignored, as is the one with the excluded ID,
// which lets an edit be re-validated against everything but itself.
func FindConflict(calendar BusinessCalendar, existing Reservations, candidate DateRange, exclude *uuid.UUID) (Reservation, bool) {
	candidateRange := calendar.BlockingRange(candidate)

	for _, r := range existing {
		if !r.Status.IsBlocking() {
			continue
		}

		if exclude != nil && r.ID == *exclude {
			continue
		}

		if Overlaps(calendar.BlockingRange(r.Dates), candidateRange) {
			return r, true
		}
	}

	return Reservation{}, false
}

// HasConflict reports whether candidate overlaps any blocking reservation in existing.
func HasConflict(calendar BusinessCalendar, existing Reservations, candidate DateRange, exclude *uuid.UUID) bool {
	_, found := FindConflict(calendar, existing, candidate, exclude)

	return found
}
