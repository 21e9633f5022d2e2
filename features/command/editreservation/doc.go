// Package editreservation changes the dates or notes of a pending reservation.
// New dates are validated and conflict-checked like a new request, ignoring the reservation itself,
// and the total cost is recomputed with the asset's current daily rate.
package editreservation
