package cancelreservation

import (
	"fmt"
	"time"

	"github.com/equiprent/reservation-engine/reservation"
)

// State is the reservation as currently stored.
type State struct {
	Current reservation.Reservation
	Found   bool
}

// Decide determines the cancelled reservation.
//
// Business Rules:
//
//	GIVEN: a pending, confirmed or active reservation
//	WHEN: a cancel command is received
//	THEN: the reservation becomes cancelled
//	ERROR: NotFound if the reservation does not exist
//	ERROR: Forbidden if the actor is an owner of someone else's reservation
//	ERROR: InvalidTransition for owners of confirmed or active reservations, and for terminal statuses
func Decide(s State, command Command, now time.Time) reservation.DecisionResult {
	if !s.Found {
		return reservation.RejectedDecision(
			reservation.Reject(reservation.ErrNotFound, fmt.Sprintf("reservation %s does not exist", command.ReservationID)),
		)
	}

	if err := reservation.CheckTransition(s.Current, command.Actor, reservation.StatusCancelled); err != nil {
		return reservation.RejectedDecision(err)
	}

	return reservation.SuccessDecision(s.Current.WithStatus(reservation.StatusCancelled, now))
}
