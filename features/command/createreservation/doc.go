// Package createreservation requests a new pending reservation for an asset.
//
// The pure Decide function validates the request against the asset, the booking rules and the asset's
// blocking reservations. The CommandHandler reads that state, decides and writes the reservation
// guarded by the asset's version, retrying once when another write for the same asset got in first.
package createreservation
