package assetavailability

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/equiprent/reservation-engine/reservation"
)

// Store is the persistence the QueryHandler needs.
type Store interface {
	ListBlocking(ctx context.Context, assetID uuid.UUID) (reservation.Reservations, reservation.AssetVersion, error)
}

// QueryHandler reads an asset's blocking reservations and projects its availability.
type QueryHandler struct {
	store    Store
	calendar reservation.BusinessCalendar
}

// NewQueryHandler creates a QueryHandler.
func NewQueryHandler(store Store, calendar reservation.BusinessCalendar) QueryHandler {
	return QueryHandler{
		store:    store,
		calendar: calendar,
	}
}

// Handle returns the availability of the asset. A requested range must consist of valid dates with the
// end after the start. A missing asset is reported with ErrNotFound.
func (h QueryHandler) Handle(ctx context.Context, query Query) (Availability, error) {
	var requested *reservation.DateRange

	if query.HasRange() {
		dates, err := h.parseRange(query.StartDate, query.EndDate)
		if err != nil {
			return Availability{}, err
		}

		requested = &dates
	}

	blocking, _, err := h.store.ListBlocking(reservation.WithEventualConsistency(ctx), query.AssetID)
	if err != nil {
		return Availability{}, err
	}

	return ProjectAvailability(h.calendar, query.AssetID, blocking, requested, query.ExcludeReservationID), nil
}

// HasConflict reports whether the range overlaps any blocking reservation of the asset other than
// the excluded one.
func (h QueryHandler) HasConflict(
	ctx context.Context,
	assetID uuid.UUID,
	startDate string,
	endDate string,
	excludeReservationID *uuid.UUID,
) (bool, error) {
	availability, err := h.Handle(ctx, BuildQuery(assetID, startDate, endDate, excludeReservationID))
	if err != nil {
		return false, err
	}

	return !availability.Available, nil
}

func (h QueryHandler) parseRange(startDate, endDate string) (reservation.DateRange, error) {
	dates, err := h.calendar.ParseDateRange(startDate, endDate)
	if err != nil {
		return reservation.DateRange{}, err
	}

	if !dates.End.After(dates.Start) {
		return reservation.DateRange{}, reservation.Reject(
			reservation.ErrInvalidRange,
			fmt.Sprintf("end date %s must be after start date %s", dates.End, dates.Start),
		)
	}

	return dates, nil
}
