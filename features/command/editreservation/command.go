package editreservation

import (
	"github.com/google/uuid"

	"github.com/equiprent/reservation-engine/reservation"
)

const (
	commandType = "edit_reservation"
)

// Command is the intent to change a pending reservation. Nil fields stay as they are.
type Command struct {
	ReservationID uuid.UUID
	Actor         reservation.Actor
	StartDate     *string
	EndDate       *string
	Notes         *string
}

// CommandType returns the type identifier used for observability.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a Command.
func BuildCommand(reservationID uuid.UUID, actor reservation.Actor, startDate, endDate, notes *string) Command {
	return Command{
		ReservationID: reservationID,
		Actor:         actor,
		StartDate:     startDate,
		EndDate:       endDate,
		Notes:         notes,
	}
}
