package transitionreservation

import (
	"github.com/google/uuid"

	"github.com/equiprent/reservation-engine/reservation"
)

const (
	commandType = "transition_reservation"
)

// Command is the intent to move a reservation to the target status.
type Command struct {
	ReservationID uuid.UUID
	Actor         reservation.Actor
	To            reservation.Status
}

// CommandType returns the type identifier used for observability.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a Command.
func BuildCommand(reservationID uuid.UUID, actor reservation.Actor, to reservation.Status) Command {
	return Command{
		ReservationID: reservationID,
		Actor:         actor,
		To:            to,
	}
}
