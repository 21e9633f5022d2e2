// Package cancelreservation cancels a pending or confirmed reservation.
// Cancellation frees the asset's dates. With purging enabled the reservation row is deleted
// instead of being kept in the cancelled state.
package cancelreservation
