package reservation

import "fmt"

// Cost returns days × dailyRate for the inclusive calendar range dates.
// The day count comes from the business-timezone instant range, so a range across a DST switch
// still counts each calendar day exactly once.
func Cost(calendar BusinessCalendar, dates DateRange, dailyRate Money) (Money, error) {
	if dailyRate.IsNegative() {
		return 0, Reject(ErrInvalidRange, fmt.Sprintf("daily rate %s is negative", dailyRate))
	}

	days := calendar.DaysIn(calendar.InclusiveRange(dates))
	if days < 1 {
		return 0, Reject(ErrInvalidRange, fmt.Sprintf("range %s covers no days", dates))
	}

	return dailyRate.Times(days), nil
}

// RentalDays returns the number of inclusive calendar days in dates.
func RentalDays(calendar BusinessCalendar, dates DateRange) int {
	return calendar.DaysIn(calendar.InclusiveRange(dates))
}
