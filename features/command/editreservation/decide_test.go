package editreservation_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/equiprent/reservation-engine/features/command/editreservation"
	"github.com/equiprent/reservation-engine/reservation"
	"github.com/equiprent/reservation-engine/testutil/fixtures"
)

func ptr(s string) *string { return &s }

func givenState(current reservation.Reservation, asset reservation.Asset, others ...reservation.Reservation) editreservation.State {
	return editreservation.State{
		Current:    current,
		Found:      true,
		Asset:      asset,
		AssetFound: true,
		Blocking:   append(reservation.Reservations{current}, others...),
	}
}

func Test_Decide_NewDates_RecomputeCost(t *testing.T) {
	// arrange
	asset := fixtures.Asset(reservation.AssetAvailable)
	owner := reservation.Owner(uuid.New())
	current := fixtures.Reservation(asset.ID, owner.ID, "2025-10-03", "2025-10-05", reservation.StatusPending)
	command := editreservation.BuildCommand(current.ID, owner, nil, ptr("2025-10-07"), nil)

	// act
	result := editreservation.Decide(givenState(current, asset), command, fixtures.Rules(), fixtures.Now())

	// assert
	require.NoError(t, result.HasError())
	assert.True(t, result.HasChangeToWrite())
	assert.Equal(t, "2025-10-03..2025-10-07", result.Reservation.Dates.String())
	assert.Equal(t, reservation.MoneyFromMinor(125000), result.Reservation.TotalCost)
	assert.Equal(t, fixtures.Now(), result.Reservation.UpdatedAt)
}

func Test_Decide_CostUsesCurrentRate(t *testing.T) {
	asset := fixtures.Asset(reservation.AssetAvailable)
	owner := reservation.Owner(uuid.New())
	current := fixtures.Reservation(asset.ID, owner.ID, "2025-10-03", "2025-10-05", reservation.StatusPending)
	asset.DailyRate = reservation.MoneyFromMinor(30000)
	command := editreservation.BuildCommand(current.ID, owner, ptr("2025-10-04"), nil, nil)

	result := editreservation.Decide(givenState(current, asset), command, fixtures.Rules(), fixtures.Now())

	require.NoError(t, result.HasError())
	assert.Equal(t, reservation.MoneyFromMinor(60000), result.Reservation.TotalCost)
}

func Test_Decide_NotesOnly_KeepsDatesAndCost(t *testing.T) {
	asset := fixtures.Asset(reservation.AssetAvailable)
	owner := reservation.Owner(uuid.New())
	current := fixtures.Reservation(asset.ID, owner.ID, "2025-10-03", "2025-10-05", reservation.StatusPending)
	command := editreservation.BuildCommand(current.ID, owner, nil, nil, ptr("deliver to site B"))

	result := editreservation.Decide(givenState(current, asset), command, fixtures.Rules(), fixtures.Now())

	require.NoError(t, result.HasError())
	assert.Equal(t, "deliver to site B", result.Reservation.Notes)
	assert.Equal(t, current.Dates, result.Reservation.Dates)
	assert.Equal(t, current.TotalCost, result.Reservation.TotalCost)
}

func Test_Decide_NoChange_IsIdempotent(t *testing.T) {
	asset := fixtures.Asset(reservation.AssetAvailable)
	owner := reservation.Owner(uuid.New())
	current := fixtures.Reservation(asset.ID, owner.ID, "2025-10-03", "2025-10-05", reservation.StatusPending)
	command := editreservation.BuildCommand(current.ID, owner, ptr("2025-10-03"), ptr("2025-10-05"), nil)

	result := editreservation.Decide(givenState(current, asset), command, fixtures.Rules(), fixtures.Now())

	assert.True(t, result.IsIdempotent())
}

func Test_Decide_OwnOverlap_IsIgnored(t *testing.T) {
	asset := fixtures.Asset(reservation.AssetAvailable)
	owner := reservation.Owner(uuid.New())
	current := fixtures.Reservation(asset.ID, owner.ID, "2025-10-03", "2025-10-05", reservation.StatusPending)
	command := editreservation.BuildCommand(current.ID, owner, ptr("2025-10-04"), ptr("2025-10-06"), nil)

	result := editreservation.Decide(givenState(current, asset), command, fixtures.Rules(), fixtures.Now())

	assert.NoError(t, result.HasError())
}

func Test_Decide_Rejections(t *testing.T) {
	asset := fixtures.Asset(reservation.AssetAvailable)
	owner := reservation.Owner(uuid.New())
	current := fixtures.Reservation(asset.ID, owner.ID, "2025-10-03", "2025-10-05", reservation.StatusPending)
	confirmed := current.WithStatus(reservation.StatusConfirmed, fixtures.Now())
	other := fixtures.Reservation(asset.ID, uuid.New(), "2025-10-08", "2025-10-10", reservation.StatusConfirmed)

	testCases := []struct {
		name     string
		state    editreservation.State
		actor    reservation.Actor
		start    *string
		end      *string
		expected error
	}{
		{"missing reservation", editreservation.State{}, owner, nil, ptr("2025-10-06"), reservation.ErrNotFound},
		{"another owner", givenState(current, asset), reservation.Owner(uuid.New()), nil, ptr("2025-10-06"), reservation.ErrForbidden},
		{"operator", givenState(current, asset), reservation.Operator(uuid.New()), nil, ptr("2025-10-06"), reservation.ErrInvalidTransition},
		{"no longer pending", givenState(confirmed, asset), owner, nil, ptr("2025-10-06"), reservation.ErrInvalidTransition},
		{"malformed date", givenState(current, asset), owner, nil, ptr("06.10.2025"), reservation.ErrInvalidDateFormat},
		{"end before start", givenState(current, asset), owner, nil, ptr("2025-10-02"), reservation.ErrInvalidRange},
		{"start in the past", givenState(current, asset), owner, ptr("2025-09-29"), nil, reservation.ErrInvalidRange},
		{"overlapping another", givenState(current, asset, other), owner, nil, ptr("2025-10-09"), reservation.ErrDateConflict},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			command := editreservation.BuildCommand(current.ID, tc.actor, tc.start, tc.end, nil)

			result := editreservation.Decide(tc.state, command, fixtures.Rules(), fixtures.Now())

			assert.ErrorIs(t, result.HasError(), tc.expected)
		})
	}
}
