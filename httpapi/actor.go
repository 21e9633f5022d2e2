package httpapi

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/equiprent/reservation-engine/reservation"
)

// Headers identifying the acting user. Authentication happens in front of this service.
const (
	HeaderActorID   = "X-Actor-ID"
	HeaderActorRole = "X-Actor-Role"
)

// actorFromRequest reads the actor from the request headers.
// A missing or malformed identity is forbidden rather than malformed: the caller may not act at all.
func actorFromRequest(r *http.Request) (reservation.Actor, error) {
	role, err := reservation.ParseRole(strings.ToLower(strings.TrimSpace(r.Header.Get(HeaderActorRole))))
	if err != nil {
		return reservation.Actor{}, err
	}

	id, err := uuid.Parse(strings.TrimSpace(r.Header.Get(HeaderActorID)))
	if err != nil || id == uuid.Nil {
		return reservation.Actor{}, reservation.Reject(reservation.ErrForbidden, "missing or malformed "+HeaderActorID)
	}

	return reservation.Actor{ID: id, Role: role}, nil
}
