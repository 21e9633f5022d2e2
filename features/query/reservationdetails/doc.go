// Package reservationdetails returns a single reservation to an actor allowed to see it.
package reservationdetails
