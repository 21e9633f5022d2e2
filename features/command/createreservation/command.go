package createreservation

import (
	"github.com/google/uuid"

	"github.com/equiprent/reservation-engine/reservation"
)

const (
	commandType = "create_reservation"
)

// Command is the intent to reserve an asset for an inclusive range of calendar dates.
// The dates are raw YYYY-MM-DD strings so that malformed input is rejected by the engine.
type Command struct {
	ReservationID uuid.UUID
	AssetID       uuid.UUID
	Actor         reservation.Actor
	StartDate     string
	EndDate       string
	Notes         string
}

// CommandType returns the type identifier used for observability.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a Command. reservationID identifies the new reservation; repeating a command
// with the same ID after it succeeded is idempotent.
func BuildCommand(
	reservationID uuid.UUID,
	assetID uuid.UUID,
	actor reservation.Actor,
	startDate string,
	endDate string,
	notes string,
) Command {
	return Command{
		ReservationID: reservationID,
		AssetID:       assetID,
		Actor:         actor,
		StartDate:     startDate,
		EndDate:       endDate,
		Notes:         notes,
	}
}
