package cancelreservation

import (
	"github.com/google/uuid"

	"github.com/equiprent/reservation-engine/reservation"
)

const (
	commandType = "cancel_reservation"
)

// Command is the intent to cancel a reservation.
type Command struct {
	ReservationID uuid.UUID
	Actor         reservation.Actor
}

// CommandType returns the type identifier used for observability.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a Command.
func BuildCommand(reservationID uuid.UUID, actor reservation.Actor) Command {
	return Command{
		ReservationID: reservationID,
		Actor:         actor,
	}
}
