package reservation

import (
	"fmt"
)

// StatusNone is the pseudo-state a reservation is in before it is created.
const StatusNone Status = ""

type transitionKey struct {
	from Status
	role Role
	to   Status
}

// transitions is the complete set of permitted (from, role, to) moves.
// Anything not listed fails with ErrInvalidTransition.
var transitions = map[transitionKey]struct{}{
	{StatusNone, RoleOwner, StatusPending}:    {},
	{StatusNone, RoleOperator, StatusPending}: {},

	{StatusPending, RoleOperator, StatusConfirmed}: {},
	{StatusPending, RoleOperator, StatusRejected}:  {},
	{StatusPending, RoleOwner, StatusCancelled}:    {},
	{StatusPending, RoleOperator, StatusCancelled}: {},

	{StatusConfirmed, RoleOperator, StatusActive}:    {},
	{StatusConfirmed, RoleOperator, StatusCancelled}: {},

	{StatusActive, RoleOperator, StatusCompleted}: {},
	{StatusActive, RoleOperator, StatusCancelled}: {},

	// date and notes edit
	{StatusPending, RoleOwner, StatusPending}: {},
}

// IsTransitionAllowed reports whether role may move a reservation from one status to another.
func IsTransitionAllowed(from Status, role Role, to Status) bool {
	_, ok := transitions[transitionKey{from: from, role: role, to: to}]

	return ok
}

// CheckCreate validates that actor may request a new reservation.
func CheckCreate(actor Actor) error {
	if _, err := ParseRole(string(actor.Role)); err != nil {
		return err
	}

	if !IsTransitionAllowed(StatusNone, actor.Role, StatusPending) {
		return Reject(ErrInvalidTransition, fmt.Sprintf("%s may not create reservations", actor.Role))
	}

	return nil
}

// CheckTransition validates moving r to the target status on behalf of actor.
// Owners acting on someone else's reservation are refused with ErrForbidden before the table is consulted.
func CheckTransition(r Reservation, actor Actor, to Status) error {
	if err := checkAccess(r, actor); err != nil {
		return err
	}

	if r.Status == to {
		return Reject(ErrInvalidTransition, fmt.Sprintf("reservation is already %s", to))
	}

	if !IsTransitionAllowed(r.Status, actor.Role, to) {
		return Reject(ErrInvalidTransition, fmt.Sprintf("%s may not move a reservation from %s to %s", actor.Role, r.Status, to))
	}

	return nil
}

// CheckEdit validates changing dates or notes of r on behalf of actor.
func CheckEdit(r Reservation, actor Actor) error {
	if err := checkAccess(r, actor); err != nil {
		return err
	}

	if !IsTransitionAllowed(r.Status, actor.Role, StatusPending) || r.Status != StatusPending {
		return Reject(ErrInvalidTransition, fmt.Sprintf("%s may not edit a %s reservation", actor.Role, r.Status))
	}

	return nil
}

func checkAccess(r Reservation, actor Actor) error {
	if _, err := ParseRole(string(actor.Role)); err != nil {
		return err
	}

	if !actor.CanAccess(r.RequesterID) {
		return Reject(ErrForbidden, "reservation belongs to another customer")
	}

	return nil
}
