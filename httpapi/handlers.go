package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/equiprent/reservation-engine/features/command/cancelreservation"
	"github.com/equiprent/reservation-engine/features/command/createreservation"
	"github.com/equiprent/reservation-engine/features/command/editreservation"
	"github.com/equiprent/reservation-engine/features/command/transitionreservation"
	"github.com/equiprent/reservation-engine/features/query/assetavailability"
	"github.com/equiprent/reservation-engine/features/query/reservationdetails"
	"github.com/equiprent/reservation-engine/features/query/reservationlist"
	"github.com/equiprent/reservation-engine/features/query/reservationstatistics"
	"github.com/equiprent/reservation-engine/reservation"
)

const (
	paramID = "id"

	queryParamStart   = "start"
	queryParamEnd     = "end"
	queryParamExclude = "exclude"
	queryParamAssetID = "asset_id"
	queryParamStatus  = "status"
)

func (a *API) createReservation(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	var body createReservationRequest
	if err = decodeBody(w, r, &body); err != nil {
		a.writeError(w, r, err)
		return
	}

	reservationID, err := a.reservationIDFor(body)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	command := createreservation.BuildCommand(
		reservationID, body.AssetID, actor, body.StartDate, body.EndDate, body.Notes,
	)

	result, err := a.handlers.Create.Handle(r.Context(), command)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	status := http.StatusCreated
	if result.Idempotent {
		status = http.StatusOK
	}

	w.Header().Set("Location", "/reservations/"+result.Reservation.ID.String())
	writeJSON(w, status, toCommandResponse(result))
}

func (a *API) reservationIDFor(body createReservationRequest) (uuid.UUID, error) {
	if body.ID != nil {
		if *body.ID == uuid.Nil {
			return uuid.Nil, fmt.Errorf("%w: id must not be the nil UUID", ErrMalformedRequest)
		}

		return *body.ID, nil
	}

	return a.newID()
}

func (a *API) editReservation(w http.ResponseWriter, r *http.Request) {
	actor, reservationID, err := actorAndReservationID(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	var body editReservationRequest
	if err = decodeBody(w, r, &body); err != nil {
		a.writeError(w, r, err)
		return
	}

	command := editreservation.BuildCommand(reservationID, actor, body.StartDate, body.EndDate, body.Notes)

	result, err := a.handlers.Edit.Handle(r.Context(), command)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toCommandResponse(result))
}

func (a *API) transitionReservation(w http.ResponseWriter, r *http.Request) {
	actor, reservationID, err := actorAndReservationID(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	var body transitionRequest
	if err = decodeBody(w, r, &body); err != nil {
		a.writeError(w, r, err)
		return
	}

	command := transitionreservation.BuildCommand(reservationID, actor, reservation.Status(body.Status))

	result, err := a.handlers.Transition.Handle(r.Context(), command)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toCommandResponse(result))
}

func (a *API) cancelReservation(w http.ResponseWriter, r *http.Request) {
	actor, reservationID, err := actorAndReservationID(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	result, err := a.handlers.Cancel.Handle(r.Context(), cancelreservation.BuildCommand(reservationID, actor))
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toCommandResponse(result))
}

func (a *API) getReservation(w http.ResponseWriter, r *http.Request) {
	actor, reservationID, err := actorAndReservationID(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	found, err := a.handlers.Details.Handle(r.Context(), reservationdetails.BuildQuery(reservationID, actor))
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toReservationResponse(found))
}

func (a *API) listReservations(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	params := r.URL.Query()

	assetID := uuid.Nil
	if raw := params.Get(queryParamAssetID); raw != "" {
		if assetID, err = parseUUID(queryParamAssetID, raw); err != nil {
			a.writeError(w, r, err)
			return
		}
	}

	list, err := a.handlers.List.Handle(r.Context(), reservationlist.BuildQuery(actor, assetID, statusesFrom(params[queryParamStatus])...))
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toReservationListResponse(list))
}

// statusesFrom accepts both repeated parameters and comma separated lists.
func statusesFrom(values []string) []reservation.Status {
	var statuses []reservation.Status

	for _, value := range values {
		for _, name := range strings.Split(value, ",") {
			if name = strings.TrimSpace(name); name != "" {
				statuses = append(statuses, reservation.Status(name))
			}
		}
	}

	return statuses
}

func (a *API) assetAvailability(w http.ResponseWriter, r *http.Request) {
	assetID, err := parseUUID("asset id", chi.URLParam(r, paramID))
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	params := r.URL.Query()

	var exclude *uuid.UUID
	if raw := params.Get(queryParamExclude); raw != "" {
		excludeID, parseErr := parseUUID(queryParamExclude, raw)
		if parseErr != nil {
			a.writeError(w, r, parseErr)
			return
		}

		exclude = &excludeID
	}

	query := assetavailability.BuildQuery(assetID, params.Get(queryParamStart), params.Get(queryParamEnd), exclude)

	availability, err := a.handlers.Availability.Handle(r.Context(), query)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toAvailabilityResponse(availability))
}

func (a *API) statistics(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	statistics, err := a.handlers.Statistics.Handle(r.Context(), reservationstatistics.BuildQuery(actor))
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toStatisticsResponse(statistics))
}

func actorAndReservationID(r *http.Request) (reservation.Actor, uuid.UUID, error) {
	actor, err := actorFromRequest(r)
	if err != nil {
		return reservation.Actor{}, uuid.Nil, err
	}

	reservationID, err := uuid.Parse(chi.URLParam(r, paramID))
	if err != nil {
		// An identifier that cannot exist names no reservation.
		return reservation.Actor{}, uuid.Nil, reservation.Reject(reservation.ErrNotFound, "no reservation with this id")
	}

	return actor, reservationID, nil
}

func parseUUID(name, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, errors.Join(fmt.Errorf("%w: %s %q is not a UUID", ErrMalformedRequest, name, raw), err)
	}

	return id, nil
}
