// Package postgresengine stores assets and reservations in PostgreSQL.
//
// Every reservation write carries the asset version read before the decision. The write and the
// version bump run as one statement: a data-modifying CTE increments assets.reservation_version
// only if it still equals the expected value, and the reservation row is touched only through that CTE.
// Zero affected rows means another writer got there first and the store returns
// reservation.ErrConcurrencyConflict.
//
// The store runs on pgxpool.Pool, sql.DB (lib/pq) or sqlx.DB. Reads made with
// reservation.WithEventualConsistency go to the replica when one is configured.
package postgresengine
