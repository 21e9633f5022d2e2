package createreservation

import (
	"fmt"
	"time"

	"github.com/equiprent/reservation-engine/reservation"
)

// State is what Decide needs to know about the world.
type State struct {
	Asset      reservation.Asset
	AssetFound bool
	Blocking   reservation.Reservations

	// Existing is the reservation already stored under the command's ID, if any.
	Existing *reservation.Reservation
}

// Decide determines whether a new reservation can be created.
//
// Business Rules:
//
//	GIVEN: an asset and its blocking reservations
//	WHEN: a create command is received
//	THEN: a pending reservation with the computed total cost is produced
//	ERROR: Forbidden if the actor's role is unknown
//	ERROR: NotFound if the asset does not exist
//	ERROR: AssetUnavailable if the asset's status does not accept bookings
//	ERROR: InvalidDateFormat if a date is not a real YYYY-MM-DD date
//	ERROR: InvalidRange if end is not after start, start is before today, or a booking limit is exceeded
//	ERROR: DateConflict if the range overlaps a blocking reservation
//	IDEMPOTENCY: if the reservation ID is already stored for the same asset and requester, nothing is written
func Decide(s State, command Command, rules reservation.BookingRules, now time.Time) reservation.DecisionResult {
	if err := reservation.CheckCreate(command.Actor); err != nil {
		return reservation.RejectedDecision(err)
	}

	if s.Existing != nil {
		if s.Existing.AssetID == command.AssetID && s.Existing.RequesterID == command.Actor.ID {
			return reservation.IdempotentDecision(*s.Existing)
		}

		return reservation.RejectedDecision(
			reservation.Reject(reservation.ErrInvalidTransition, fmt.Sprintf("reservation %s already exists", command.ReservationID)),
		)
	}

	if !s.AssetFound {
		return reservation.RejectedDecision(
			reservation.Reject(reservation.ErrNotFound, fmt.Sprintf("asset %s does not exist", command.AssetID)),
		)
	}

	if !rules.AcceptsAssetStatus(s.Asset.Status) {
		return reservation.RejectedDecision(
			reservation.Reject(reservation.ErrAssetUnavailable, fmt.Sprintf("asset is %s", s.Asset.Status)),
		)
	}

	dates, err := rules.Calendar.ParseDateRange(command.StartDate, command.EndDate)
	if err != nil {
		return reservation.RejectedDecision(err)
	}

	if err = rules.ValidateRange(dates, rules.Calendar.DayOf(now)); err != nil {
		return reservation.RejectedDecision(err)
	}

	if conflict, found := reservation.FindConflict(rules.Calendar, s.Blocking, dates, nil); found {
		return reservation.RejectedDecision(
			reservation.Reject(reservation.ErrDateConflict, fmt.Sprintf("overlaps reservation %s (%s)", conflict.ID, conflict.Dates)),
		)
	}

	cost, err := reservation.Cost(rules.Calendar, dates, s.Asset.DailyRate)
	if err != nil {
		return reservation.RejectedDecision(err)
	}

	return reservation.SuccessDecision(reservation.Reservation{
		ID:          command.ReservationID,
		AssetID:     command.AssetID,
		RequesterID: command.Actor.ID,
		Dates:       dates,
		TotalCost:   cost,
		Status:      reservation.StatusPending,
		Notes:       command.Notes,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
}
