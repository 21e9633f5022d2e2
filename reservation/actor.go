package reservation

import (
	"fmt"

	"github.com/google/uuid"
)

// Role is the capacity in which an actor acts on a reservation.
type Role string

const (
	// RoleOwner is a customer acting on reservations they requested.
	RoleOwner Role = "owner"

	// RoleOperator is staff managing every reservation.
	RoleOperator Role = "operator"
)

// ParseRole validates a role name.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleOwner, RoleOperator:
		return Role(s), nil
	default:
		return "", Reject(ErrForbidden, fmt.Sprintf("unknown role %q", s))
	}
}

// Actor identifies who requests an action.
type Actor struct {
	ID   uuid.UUID
	Role Role
}

// Owner builds an owner-role actor.
func Owner(id uuid.UUID) Actor {
	return Actor{ID: id, Role: RoleOwner}
}

// Operator builds an operator-role actor.
func Operator(id uuid.UUID) Actor {
	return Actor{ID: id, Role: RoleOperator}
}

// IsOperator reports whether the actor acts as staff.
func (a Actor) IsOperator() bool {
	return a.Role == RoleOperator
}

// CanAccess reports whether the actor may see or act on a reservation requested by requesterID.
func (a Actor) CanAccess(requesterID uuid.UUID) bool {
	switch a.Role {
	case RoleOperator:
		return true
	case RoleOwner:
		return a.ID == requesterID
	default:
		return false
	}
}
