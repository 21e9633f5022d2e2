// Package reservation provides the core types and rules of the equipment reservation engine.
//
// It defines calendar-day handling in a fixed business timezone, half-open overlap detection,
// cost calculation, the reservation status state machine with its owner/operator permissions,
// the rejection kinds reported to callers, and the store contracts implemented by the
// postgresengine and memengine packages.
//
// Everything in this package is free of I/O. Command and query handlers in the features
// packages read state through the store contracts, call the pure functions defined here
// to decide, and write the outcome back.
//
// Common usage pattern:
//
//	calendar, err := reservation.NewBusinessCalendar("Europe/Vilnius")
//	if err != nil {
//		// handle error
//	}
//
//	dates, err := calendar.ParseDateRange("2025-10-03", "2025-10-05")
//	if err != nil {
//		// errors.Is(err, reservation.ErrInvalidDateFormat)
//	}
//
//	total, err := reservation.Cost(calendar, dates, reservation.MoneyFromMinor(25000))
//	conflict := reservation.FindConflict(calendar, blocking, dates, nil)
package reservation
