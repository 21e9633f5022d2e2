package shell

import (
	"context"

	"github.com/google/uuid"
)

// Command is implemented by every command. CommandType labels logs, metrics and spans.
type Command interface {
	CommandType() string
}

// CommandHandler processes a command of type C: read, decide, write, retried on concurrency conflicts.
type CommandHandler[C Command] interface {
	Handle(ctx context.Context, command C) (HandlerResult, error)
}

// Query is implemented by every query. QueryType labels logs, metrics and spans.
type Query interface {
	QueryType() string
}

// QueryHandler answers a query of type Q with a result of type R.
type QueryHandler[Q Query, R any] interface {
	Handle(ctx context.Context, query Q) (R, error)
}

// AssetStatusSyncer recomputes an asset's derived availability after a reservation changed.
// Command handlers call it best-effort: failures never undo the reservation write.
type AssetStatusSyncer interface {
	Sync(ctx context.Context, assetID uuid.UUID) (bool, error)
}
