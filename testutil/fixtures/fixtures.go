package fixtures

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/equiprent/reservation-engine/reservation"
	"github.com/equiprent/reservation-engine/reservation/memengine"
)

// Today is the business date of Now.
const Today = "2025-10-01"

// DailyRate is the rate of the default fixture asset: 250.00.
var DailyRate = reservation.MoneyFromMinor(25000)

// Calendar returns the fixture business calendar.
func Calendar() reservation.BusinessCalendar {
	return reservation.MustBusinessCalendar(reservation.DefaultBusinessTimezone)
}

// Rules returns the default booking rules on the fixture calendar.
func Rules() reservation.BookingRules {
	return reservation.DefaultBookingRules(Calendar())
}

// Now is 09:00 local time on Today.
func Now() time.Time {
	return time.Date(2025, time.October, 1, 9, 0, 0, 0, Calendar().Location()).UTC()
}

// Clock returns a FixedClock standing at Now.
func Clock() *reservation.FixedClock {
	return reservation.NewFixedClock(Now())
}

// Dates parses an inclusive date range and panics on bad input.
func Dates(start, end string) reservation.DateRange {
	return reservation.NewDateRange(reservation.MustParseDay(start), reservation.MustParseDay(end))
}

// Asset builds an asset with DailyRate in the given status.
func Asset(status reservation.AssetStatus) reservation.Asset {
	return reservation.BuildAsset(uuid.New(), "Excavator CAT 320", DailyRate, status)
}

// Reservation builds a reservation whose cost is computed with DailyRate.
func Reservation(assetID, requesterID uuid.UUID, start, end string, status reservation.Status) reservation.Reservation {
	dates := Dates(start, end)

	cost, err := reservation.Cost(Calendar(), dates, DailyRate)
	if err != nil {
		panic(err)
	}

	return reservation.Reservation{
		ID:          uuid.New(),
		AssetID:     assetID,
		RequesterID: requesterID,
		Dates:       dates,
		TotalCost:   cost,
		Status:      status,
		CreatedAt:   Now(),
		UpdatedAt:   Now(),
	}
}

// MemStoreWithAsset returns a memory store holding one asset in the given status.
func MemStoreWithAsset(t testing.TB, status reservation.AssetStatus) (*memengine.Store, reservation.Asset) {
	t.Helper()

	store := memengine.NewStore()
	asset := Asset(status)
	require.NoError(t, store.SaveAsset(context.Background(), asset))

	return store, asset
}

// GivenStored writes reservations into store one after another, each at the asset's current version.
func GivenStored(t testing.TB, store reservation.ReservationStore, reservations ...reservation.Reservation) {
	t.Helper()

	ctx := context.Background()

	for _, r := range reservations {
		_, version, err := store.ListBlocking(ctx, r.AssetID)
		require.NoError(t, err)
		require.NoError(t, store.Create(ctx, version, r))
	}
}
