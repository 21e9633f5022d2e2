// Package reservationlist lists reservations: every reservation for operators, their own for owners.
package reservationlist
