// Package memengine is an in-memory reservation store and asset catalog.
//
// It honours the same per-asset version contract as the PostgreSQL engine: a write is applied only if the
// asset's reservation version still equals the expected one, and each applied write increments it.
// All state sits behind one mutex, so the check and the write are atomic.
//
// It is used by unit tests, the HTTP layer tests and local runs without a database.
package memengine
