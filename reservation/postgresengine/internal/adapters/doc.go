// Package adapters lets the reservation store run on pgxpool.Pool, sql.DB or sqlx.DB.
//
// Every adapter routes writes to the primary. Reads go to the replica only when one is configured
// and the context asks for eventual consistency.
package adapters
