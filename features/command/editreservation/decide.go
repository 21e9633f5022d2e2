package editreservation

import (
	"fmt"
	"time"

	"github.com/equiprent/reservation-engine/reservation"
)

// State is what Decide needs to know about the world.
type State struct {
	Current    reservation.Reservation
	Found      bool
	Asset      reservation.Asset
	AssetFound bool

	// Blocking holds the asset's blocking reservations, the edited one included.
	Blocking reservation.Reservations
}

// Decide determines the edited reservation.
//
// Business Rules:
//
//	GIVEN: a pending reservation owned by the actor
//	WHEN: an edit command is received
//	THEN: the reservation gets the new dates and notes, and the cost is recomputed when the dates changed
//	ERROR: NotFound if the reservation or its asset does not exist
//	ERROR: Forbidden if the actor is an owner of someone else's reservation
//	ERROR: InvalidTransition if the reservation is no longer pending or the actor is an operator
//	ERROR: InvalidDateFormat, InvalidRange or DateConflict if the new dates fail validation
//	IDEMPOTENCY: an edit that changes nothing writes nothing
func Decide(s State, command Command, rules reservation.BookingRules, now time.Time) reservation.DecisionResult {
	if !s.Found {
		return reservation.RejectedDecision(
			reservation.Reject(reservation.ErrNotFound, fmt.Sprintf("reservation %s does not exist", command.ReservationID)),
		)
	}

	if err := reservation.CheckEdit(s.Current, command.Actor); err != nil {
		return reservation.RejectedDecision(err)
	}

	dates, err := requestedDates(s.Current.Dates, command)
	if err != nil {
		return reservation.RejectedDecision(err)
	}

	notes := s.Current.Notes
	if command.Notes != nil {
		notes = *command.Notes
	}

	datesChanged := !dates.Equal(s.Current.Dates)
	if !datesChanged && notes == s.Current.Notes {
		return reservation.IdempotentDecision(s.Current)
	}

	edited := s.Current
	edited.Notes = notes
	edited.UpdatedAt = now

	if !datesChanged {
		return reservation.SuccessDecision(edited)
	}

	if !s.AssetFound {
		return reservation.RejectedDecision(
			reservation.Reject(reservation.ErrNotFound, fmt.Sprintf("asset %s does not exist", s.Current.AssetID)),
		)
	}

	if err = rules.ValidateRange(dates, rules.Calendar.DayOf(now)); err != nil {
		return reservation.RejectedDecision(err)
	}

	if conflict, found := reservation.FindConflict(rules.Calendar, s.Blocking, dates, &s.Current.ID); found {
		return reservation.RejectedDecision(
			reservation.Reject(reservation.ErrDateConflict, fmt.Sprintf("overlaps reservation %s (%s)", conflict.ID, conflict.Dates)),
		)
	}

	cost, err := reservation.Cost(rules.Calendar, dates, s.Asset.DailyRate)
	if err != nil {
		return reservation.RejectedDecision(err)
	}

	edited.Dates = dates
	edited.TotalCost = cost

	return reservation.SuccessDecision(edited)
}

func requestedDates(current reservation.DateRange, command Command) (reservation.DateRange, error) {
	dates := current

	if command.StartDate != nil {
		start, err := reservation.ParseDay(*command.StartDate)
		if err != nil {
			return reservation.DateRange{}, err
		}

		dates.Start = start
	}

	if command.EndDate != nil {
		end, err := reservation.ParseDay(*command.EndDate)
		if err != nil {
			return reservation.DateRange{}, err
		}

		dates.End = end
	}

	return dates, nil
}
