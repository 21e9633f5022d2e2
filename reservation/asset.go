package reservation

import (
	"github.com/google/uuid"
)

// Asset is a rentable piece of equipment as seen by the engine.
type Asset struct {
	ID        uuid.UUID
	Name      string
	DailyRate Money
	Status    AssetStatus
}

// BuildAsset creates an Asset.
func BuildAsset(id uuid.UUID, name string, dailyRate Money, status AssetStatus) Asset {
	return Asset{
		ID:        id,
		Name:      name,
		DailyRate: dailyRate,
		Status:    status,
	}
}

// Assets is a list of catalog assets.
type Assets []Asset
