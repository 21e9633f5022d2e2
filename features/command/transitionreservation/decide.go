package transitionreservation

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

// Decide determines the reservation after the transition.
//
// Business Rules:
//
//	GIVEN: a stored reservation
//	WHEN: a transition command is received
//	THEN: the reservation moves to the target status
//	ERROR: NotFound if the reservation does not exist
//	ERROR: Forbidden if the actor is an owner of someone else's reservation, or the role is unknown
//	ERROR: InvalidTransition if the (from, role, to) combination is not permitted, including same-status moves
func Decide(s State, command Command, now time.Time) reservation.DecisionResult {
	if !s.Found {
		return reservation.RejectedDecision(
			reservation.Reject(reservation.ErrNotFound, fmt.Sprintf("reservation %s does not exist", command.ReservationID)),
		)
	}

	if _, err := reservation.ParseStatus(string(command.To)); err != nil {
		return reservation.RejectedDecision(err)
	}

	if err := reservation.CheckTransition(s.Current, command.Actor, command.To); err != nil {
		return reservation.RejectedDecision(err)
	}

	return reservation.SuccessDecision(s.Current.WithStatus(command.To, now))
}
