package reservation

import "context"

// ConsistencyLevel tells a store whether a read may be served by a replica.
type ConsistencyLevel int

const (
	// StrongConsistency reads from the primary database.
	// Command handlers use it for the read-decide-write cycle, which must see the latest asset version.
	StrongConsistency ConsistencyLevel = iota

	// EventualConsistency allows reads from a replica.
	// Availability lookups, listings and statistics tolerate slightly stale data.
	EventualConsistency
)

type contextKey string

// ConsistencyLevelKey is the context key carrying the requested ConsistencyLevel.
const ConsistencyLevelKey contextKey = "reservation.consistency_level"

// WithStrongConsistency returns a context that routes store reads to the primary database.
//
//	ctx = reservation.WithStrongConsistency(ctx)
//	blocking, version, err := store.ListBlocking(ctx, assetID)
func WithStrongConsistency(ctx context.Context) context.Context {
	return context.WithValue(ctx, ConsistencyLevelKey, StrongConsistency)
}

// WithEventualConsistency returns a context that allows store reads from a replica.
func WithEventualConsistency(ctx context.Context) context.Context {
	return context.WithValue(ctx, ConsistencyLevelKey, EventualConsistency)
}

// GetConsistencyLevel extracts the consistency level from the context.
// Without an explicit level it returns StrongConsistency.
func GetConsistencyLevel(ctx context.Context) ConsistencyLevel {
	if level, ok := ctx.Value(ConsistencyLevelKey).(ConsistencyLevel); ok {
		return level
	}

	return StrongConsistency
}

func (c ConsistencyLevel) String() string {
	switch c {
	case StrongConsistency:
		return "strong"
	case EventualConsistency:
		return "eventual"
	default:
		return "unknown"
	}
}
