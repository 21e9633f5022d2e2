// Package transitionreservation moves a reservation along its lifecycle:
// confirm, reject, activate or complete, subject to the actor's role.
package transitionreservation
