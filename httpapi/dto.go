package httpapi

import (
	"time"

	"github.com/google/uuid"

	"github.com/equiprent/reservation-engine/features/query/assetavailability"
	"github.com/equiprent/reservation-engine/features/query/reservationlist"
	"github.com/equiprent/reservation-engine/features/query/reservationstatistics"
	"github.com/equiprent/reservation-engine/reservation"
	"github.com/equiprent/reservation-engine/shell"
)

type createReservationRequest struct {
	// ID is optional. Clients that retry a request send the same ID to make it idempotent.
	ID        *uuid.UUID `json:"id"`
	AssetID   uuid.UUID  `json:"asset_id"`
	StartDate string     `json:"start_date"`
	EndDate   string     `json:"end_date"`
	Notes     string     `json:"notes"`
}

type editReservationRequest struct {
	StartDate *string `json:"start_date"`
	EndDate   *string `json:"end_date"`
	Notes     *string `json:"notes"`
}

type transitionRequest struct {
	Status string `json:"status"`
}

type reservationResponse struct {
	ID             uuid.UUID `json:"id"`
	AssetID        uuid.UUID `json:"asset_id"`
	RequesterID    uuid.UUID `json:"requester_id"`
	StartDate      string    `json:"start_date"`
	EndDate        string    `json:"end_date"`
	TotalCost      string    `json:"total_cost"`
	TotalCostMinor int64     `json:"total_cost_minor"`
	Status         string    `json:"status"`
	Notes          string    `json:"notes"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func toReservationResponse(r reservation.Reservation) reservationResponse {
	return reservationResponse{
		ID:             r.ID,
		AssetID:        r.AssetID,
		RequesterID:    r.RequesterID,
		StartDate:      r.Dates.Start.String(),
		EndDate:        r.Dates.End.String(),
		TotalCost:      r.TotalCost.String(),
		TotalCostMinor: r.TotalCost.Minor(),
		Status:         r.Status.String(),
		Notes:          r.Notes,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

type commandResponse struct {
	Reservation reservationResponse `json:"reservation"`
	Idempotent  bool                `json:"idempotent"`
}

func toCommandResponse(result shell.HandlerResult) commandResponse {
	return commandResponse{
		Reservation: toReservationResponse(result.Reservation),
		Idempotent:  result.Idempotent,
	}
}

type reservationListResponse struct {
	Reservations []reservationResponse `json:"reservations"`
	Count        int                   `json:"count"`
}

func toReservationListResponse(list reservationlist.ReservationList) reservationListResponse {
	response := reservationListResponse{
		Reservations: make([]reservationResponse, 0, len(list.Reservations)),
		Count:        list.Count,
	}

	for _, r := range list.Reservations {
		response.Reservations = append(response.Reservations, toReservationResponse(r))
	}

	return response
}

type bookedRangeResponse struct {
	ReservationID uuid.UUID `json:"reservation_id"`
	StartDate     string    `json:"start_date"`
	EndDate       string    `json:"end_date"`
	Status        string    `json:"status"`
}

type availabilityResponse struct {
	AssetID                  uuid.UUID             `json:"asset_id"`
	BookedRanges             []bookedRangeResponse `json:"booked_ranges"`
	StartDate                string                `json:"start_date,omitempty"`
	EndDate                  string                `json:"end_date,omitempty"`
	Available                *bool                 `json:"available,omitempty"`
	ConflictingReservationID *uuid.UUID            `json:"conflicting_reservation_id,omitempty"`
}

func toAvailabilityResponse(availability assetavailability.Availability) availabilityResponse {
	response := availabilityResponse{
		AssetID:      availability.AssetID,
		BookedRanges: make([]bookedRangeResponse, 0, len(availability.BookedRanges)),
	}

	for _, booked := range availability.BookedRanges {
		response.BookedRanges = append(response.BookedRanges, bookedRangeResponse{
			ReservationID: booked.ReservationID,
			StartDate:     booked.Dates.Start.String(),
			EndDate:       booked.Dates.End.String(),
			Status:        booked.Status.String(),
		})
	}

	if availability.Checked {
		available := availability.Available
		response.StartDate = availability.Requested.Start.String()
		response.EndDate = availability.Requested.End.String()
		response.Available = &available
		response.ConflictingReservationID = availability.ConflictingReservationID
	}

	return response
}

type statisticsResponse struct {
	TotalAssets           int               `json:"total_assets"`
	AvailableAssets       int               `json:"available_assets"`
	AssetsByStatus        map[string]int    `json:"assets_by_status"`
	TotalReservations     int               `json:"total_reservations"`
	ReservationsByStatus  map[string]int    `json:"reservations_by_status"`
	BookedRevenueByStatus map[string]string `json:"booked_revenue_by_status"`
}

func toStatisticsResponse(statistics reservationstatistics.Statistics) statisticsResponse {
	response := statisticsResponse{
		TotalAssets:           statistics.TotalAssets,
		AvailableAssets:       statistics.AvailableAssets,
		AssetsByStatus:        make(map[string]int, len(statistics.AssetsByStatus)),
		TotalReservations:     statistics.TotalReservations,
		ReservationsByStatus:  make(map[string]int, len(statistics.ReservationsByStatus)),
		BookedRevenueByStatus: make(map[string]string, len(statistics.BookedRevenueByStatus)),
	}

	for status, count := range statistics.AssetsByStatus {
		response.AssetsByStatus[status.String()] = count
	}

	for status, count := range statistics.ReservationsByStatus {
		response.ReservationsByStatus[status.String()] = count
	}

	for status, revenue := range statistics.BookedRevenueByStatus {
		response.BookedRevenueByStatus[status.String()] = revenue.String()
	}

	return response
}
