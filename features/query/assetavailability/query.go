package assetavailability

import (
	"github.com/google/uuid"
)

const (
	queryType = "asset_availability"
)

// Query asks for the availability of an asset. Without dates only the booked ranges are returned.
type Query struct {
	AssetID              uuid.UUID
	StartDate            string
	EndDate              string
	ExcludeReservationID *uuid.UUID
}

// BuildQuery creates a Query.
func BuildQuery(assetID uuid.UUID, startDate, endDate string, excludeReservationID *uuid.UUID) Query {
	return Query{
		AssetID:              assetID,
		StartDate:            startDate,
		EndDate:              endDate,
		ExcludeReservationID: excludeReservationID,
	}
}

// QueryType returns the query type.
func (q Query) QueryType() string {
	return queryType
}

// HasRange reports whether the query asks about a specific date range.
func (q Query) HasRange() bool {
	return q.StartDate != "" || q.EndDate != ""
}
