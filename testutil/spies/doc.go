// Package spies provides recording test doubles for the reservation engine's observability interfaces
// and a slog.Handler that captures records. Every spy is safe for concurrent use, so it can observe
// handlers racing against each other.
package spies
