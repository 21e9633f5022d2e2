// Package reservationstatistics computes the operator dashboard: asset counts by status
// and reservation counts by status.
package reservationstatistics
