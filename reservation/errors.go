package reservation

import (
	"errors"
)

// Rejection kinds. Every expected, recoverable refusal of an action is a Rejection wrapping one of these,
// so callers classify outcomes with errors.Is.
var (
	ErrInvalidDateFormat = errors.New("invalid date format")
	ErrInvalidRange      = errors.New("invalid range")
	ErrAssetUnavailable  = errors.New("asset unavailable")
	ErrDateConflict      = errors.New("date conflict")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrNotFound          = errors.New("not found")
	ErrForbidden         = errors.New("forbidden")
)

var rejectionKinds = []error{
	ErrInvalidDateFormat,
	ErrInvalidRange,
	ErrAssetUnavailable,
	ErrDateConflict,
	ErrInvalidTransition,
	ErrNotFound,
	ErrForbidden,
}

// Rejection is a structured refusal: a kind plus a human-readable reason.
type Rejection struct {
	Kind   error
	Reason string
}

// Reject builds a Rejection of the given kind.
func Reject(kind error, reason string) error {
	return &Rejection{Kind: kind, Reason: reason}
}

func (r *Rejection) Error() string {
	if r.Reason == "" {
		return r.Kind.Error()
	}

	return r.Kind.Error() + ": " + r.Reason
}

func (r *Rejection) Unwrap() error {
	return r.Kind
}

// IsRejection reports whether err is an expected business refusal rather than an infrastructure failure.
func IsRejection(err error) bool {
	return RejectionKind(err) != nil
}

// RejectionKind returns the rejection kind err matches, or nil.
func RejectionKind(err error) error {
	if err == nil {
		return nil
	}

	for _, kind := range rejectionKinds {
		if errors.Is(err, kind) {
			return kind
		}
	}

	return nil
}

// KindName returns a stable snake_case name for a rejection kind, used in logs, metrics and HTTP bodies.
func KindName(kind error) string {
	switch kind {
	case ErrInvalidDateFormat:
		return "invalid_date_format"
	case ErrInvalidRange:
		return "invalid_range"
	case ErrAssetUnavailable:
		return "asset_unavailable"
	case ErrDateConflict:
		return "date_conflict"
	case ErrInvalidTransition:
		return "invalid_transition"
	case ErrNotFound:
		return "not_found"
	case ErrForbidden:
		return "forbidden"
	default:
		return "unknown"
	}
}
