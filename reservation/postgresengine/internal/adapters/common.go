package adapters

import (
	"context"
	"database/sql"

	"github.com/equiprent/reservation-engine/reservation"
)

// DBAdapter is the database surface the reservation store needs.
type DBAdapter interface {
	Query(ctx context.Context, query string) (DBRows, error)
	Exec(ctx context.Context, query string) (DBResult, error)
}

// DBRows is an open result set.
type DBRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close() error
}

// DBResult reports the outcome of a statement.
type DBResult interface {
	RowsAffected() (int64, error)
}

func useReplica(ctx context.Context, hasReplica bool) bool {
	return hasReplica && reservation.GetConsistencyLevel(ctx) == reservation.EventualConsistency
}

// stdRows wraps sql.Rows for the sql.DB and sqlx.DB adapters.
type stdRows struct {
	rows *sql.Rows
}

func (s *stdRows) Next() bool {
	return s.rows.Next()
}

func (s *stdRows) Scan(dest ...any) error {
	return s.rows.Scan(dest...)
}

func (s *stdRows) Err() error {
	return s.rows.Err()
}

func (s *stdRows) Close() error {
	return s.rows.Close()
}

type stdResult struct {
	result sql.Result
}

func (s *stdResult) RowsAffected() (int64, error) {
	return s.result.RowsAffected()
}
