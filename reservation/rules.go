package reservation

import (
	"fmt"
)

// BookingRules bundles the calendar with the limits every requested range must respect.
type BookingRules struct {
	Calendar BusinessCalendar

	// MaxRentalDays caps the inclusive length of a reservation. Zero disables the cap.
	MaxRentalDays int

	// MaxAdvanceDays caps how far after today a reservation may start. Zero disables the cap.
	MaxAdvanceDays int

	// RentedIsBookable lets new reservations target an asset whose status is rented.
	// The synchronized rented status only says the asset is out today, so operators may opt in to
	// booking later dates on it.
	RentedIsBookable bool
}

const (
	DefaultMaxRentalDays  = 90
	DefaultMaxAdvanceDays = 365
)

// DefaultBookingRules returns the standard limits for calendar.
func DefaultBookingRules(calendar BusinessCalendar) BookingRules {
	return BookingRules{
		Calendar:       calendar,
		MaxRentalDays:  DefaultMaxRentalDays,
		MaxAdvanceDays: DefaultMaxAdvanceDays,
	}
}

// AcceptsAssetStatus reports whether a new reservation may be requested for an asset in status.
func (b BookingRules) AcceptsAssetStatus(status AssetStatus) bool {
	return status == AssetAvailable || (b.RentedIsBookable && status == AssetRented)
}

// ValidateRange checks dates against today: the end must be strictly after the start,
// the start must not be in the past, and the configured limits must hold.
func (b BookingRules) ValidateRange(dates DateRange, today Day) error {
	if !dates.End.After(dates.Start) {
		return Reject(ErrInvalidRange, fmt.Sprintf("end date %s must be after start date %s", dates.End, dates.Start))
	}

	if dates.Start.Before(today) {
		return Reject(ErrInvalidRange, fmt.Sprintf("start date %s is before today %s", dates.Start, today))
	}

	if b.MaxRentalDays > 0 {
		if days := RentalDays(b.Calendar, dates); days > b.MaxRentalDays {
			return Reject(ErrInvalidRange, fmt.Sprintf("rental of %d days exceeds the maximum of %d", days, b.MaxRentalDays))
		}
	}

	if b.MaxAdvanceDays > 0 && today.DaysUntil(dates.Start) > b.MaxAdvanceDays {
		return Reject(ErrInvalidRange, fmt.Sprintf("start date %s is more than %d days ahead", dates.Start, b.MaxAdvanceDays))
	}

	return nil
}
