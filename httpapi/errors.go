package httpapi

import (
	"errors"
	"net/http"

	"github.com/equiprent/reservation-engine/reservation"
)

var (
	// ErrMalformedRequest is returned for bodies, identifiers and parameters that cannot be decoded.
	ErrMalformedRequest = errors.New("malformed request")
)

const (
	errorCodeMalformedRequest = "malformed_request"
	errorCodeInternal         = "internal_error"

	internalErrorMessage = "internal error"
)

// StatusFor returns the HTTP status code for an error returned by a handler.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, ErrMalformedRequest):
		return http.StatusBadRequest
	case errors.Is(err, reservation.ErrInvalidDateFormat),
		errors.Is(err, reservation.ErrInvalidRange),
		errors.Is(err, reservation.ErrAssetUnavailable):
		return http.StatusBadRequest
	case errors.Is(err, reservation.ErrDateConflict),
		errors.Is(err, reservation.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, reservation.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, reservation.ErrForbidden):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// errorResponse is the body of every failed request.
// Infrastructure failures carry a generic message so that internals do not leak.
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func toErrorResponse(err error) errorResponse {
	if kind := reservation.RejectionKind(err); kind != nil {
		return errorResponse{Error: reservation.KindName(kind), Message: err.Error()}
	}

	if errors.Is(err, ErrMalformedRequest) {
		return errorResponse{Error: errorCodeMalformedRequest, Message: err.Error()}
	}

	return errorResponse{Error: errorCodeInternal, Message: internalErrorMessage}
}
