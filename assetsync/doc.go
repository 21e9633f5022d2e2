// Package assetsync maintains the derived available/rented status of catalog assets.
//
// An asset whose status is available or rented is rented exactly when it has an active reservation,
// or a confirmed one whose dates cover today in the business timezone. Maintenance and draft are set by
// operators and never touched. The status is a projection: reservations remain the source of truth,
// and a failed sync is logged and repaired by the next one.
package assetsync
