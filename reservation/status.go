package reservation

import (
	"fmt"
)

// Status is a reservation's lifecycle state.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusRejected  Status = "rejected"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// AllStatuses lists every reservation status in lifecycle order.
var AllStatuses = []Status{
	StatusPending,
	StatusConfirmed,
	StatusActive,
	StatusCompleted,
	StatusRejected,
	StatusCancelled,
}

// BlockingStatuses are the states that occupy an asset's calendar.
var BlockingStatuses = []Status{StatusPending, StatusConfirmed, StatusActive}

// ParseStatus validates a status name.
func ParseStatus(s string) (Status, error) {
	for _, status := range AllStatuses {
		if string(status) == s {
			return status, nil
		}
	}

	return "", Reject(ErrInvalidTransition, fmt.Sprintf("unknown status %q", s))
}

// IsBlocking reports whether a reservation in this status counts toward conflict detection.
func (s Status) IsBlocking() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusActive:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no further transition may leave this status.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusCancelled, StatusRejected:
		return true
	default:
		return false
	}
}

func (s Status) String() string {
	return string(s)
}

// AssetStatus is the availability field of a catalog asset.
type AssetStatus string

const (
	AssetAvailable   AssetStatus = "available"
	AssetRented      AssetStatus = "rented"
	AssetMaintenance AssetStatus = "maintenance"
	AssetDraft       AssetStatus = "draft"
)

// ParseAssetStatus validates an asset status name.
func ParseAssetStatus(s string) (AssetStatus, error) {
	switch AssetStatus(s) {
	case AssetAvailable, AssetRented, AssetMaintenance, AssetDraft:
		return AssetStatus(s), nil
	default:
		return "", fmt.Errorf("unknown asset status %q", s)
	}
}

// IsDerived reports whether the status is maintained by the asset synchronizer.
// Maintenance and draft are set by operators and left alone.
func (s AssetStatus) IsDerived() bool {
	return s == AssetAvailable || s == AssetRented
}

func (s AssetStatus) String() string {
	return string(s)
}
