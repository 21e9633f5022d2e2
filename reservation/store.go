package reservation

import (
	"context"

	"github.com/google/uuid"
)

// AssetCatalog is the asset collaborator. Missing assets are reported with an error matching ErrNotFound.
type AssetCatalog interface {
	GetAsset(ctx context.Context, id uuid.UUID) (Asset, error)
	ListAssets(ctx context.Context) (Assets, error)
	SaveAsset(ctx context.Context, asset Asset) error
	SetAssetStatus(ctx context.Context, id uuid.UUID, status AssetStatus) error
}

// ReservationStore is the reservation collaborator.
//
// Every write carries the AssetVersion read before the decision. The store applies the write only if
// the asset's version is still the expected one, increments it in the same atomic step, and otherwise
// fails with ErrConcurrencyConflict. This serializes all reservation writes per asset.
type ReservationStore interface {
	// ListBlocking returns the asset's reservations in a blocking status together with the asset's version.
	ListBlocking(ctx context.Context, assetID uuid.UUID) (Reservations, AssetVersion, error)

	// Get returns one reservation together with its asset's version.
	Get(ctx context.Context, id uuid.UUID) (Reservation, AssetVersion, error)

	// Find returns the reservations matching filter, ordered by start date.
	Find(ctx context.Context, filter ReservationFilter) (Reservations, error)

	Create(ctx context.Context, expected AssetVersion, r Reservation) error
	Update(ctx context.Context, expected AssetVersion, r Reservation) error
	Delete(ctx context.Context, expected AssetVersion, assetID uuid.UUID, id uuid.UUID) error
}
