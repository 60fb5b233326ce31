// Package lifecycle defines the order status state machine: which statuses
// exist, which transitions between them are legal, and whether an order in a
// given status may still be edited. It is pure decision logic; persistence of
// the resulting status is the caller's concern.
package lifecycle

import (
	"errors"
	"fmt"
)

// Status enumerates the fulfillment stages of an order.
type Status string

const (
	StatusNew        Status = "new"
	StatusInProgress Status = "in_progress"
	StatusShipped    Status = "shipped"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// ErrIllegalTransition is returned when a requested status change is not
// permitted from the order's current status.
var ErrIllegalTransition = errors.New("illegal status transition")

// ErrOrderLocked is returned when an edit is attempted on an order that has
// already entered warehouse processing.
var ErrOrderLocked = errors.New("order locked for editing")

// forward maps each status to its single designated successor. Terminal
// statuses have no entry.
var forward = map[Status]Status{
	StatusNew:        StatusInProgress,
	StatusInProgress: StatusShipped,
	StatusShipped:    StatusCompleted,
}

// ParseStatus validates a raw status string.
func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	switch s {
	case StatusNew, StatusInProgress, StatusShipped, StatusCompleted, StatusCancelled:
		return s, nil
	default:
		return "", fmt.Errorf("unknown order status %q", raw)
	}
}

// Valid reports whether s is one of the defined statuses.
func (s Status) Valid() bool {
	_, err := ParseStatus(string(s))
	return err == nil
}

// Terminal reports whether no further transitions are permitted from s.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// String returns the wire representation of the status.
func (s Status) String() string { return string(s) }

// CanTransition reports whether an order may move from current to target.
// Legal moves are the single forward step in the chain
// new -> in_progress -> shipped -> completed, plus cancellation from any
// non-terminal status. Everything else, including skips and backward moves,
// is illegal.
func CanTransition(current, target Status) bool {
	if !current.Valid() || !target.Valid() {
		return false
	}
	if target == StatusCancelled {
		return !current.Terminal()
	}
	return forward[current] == target
}

// Targets returns the set of statuses legally reachable from current, so a
// caller can render or role-gate the available actions. The result is empty
// for terminal statuses.
func Targets(current Status) []Status {
	var targets []Status
	if next, ok := forward[current]; ok {
		targets = append(targets, next)
	}
	if current.Valid() && !current.Terminal() {
		targets = append(targets, StatusCancelled)
	}
	return targets
}

// Apply validates the transition and returns the resulting status. The
// current status is returned unchanged alongside ErrIllegalTransition when
// the move is not permitted.
func Apply(current, target Status) (Status, error) {
	if !CanTransition(current, target) {
		return current, fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, current, target)
	}
	return target, nil
}

// CanEdit reports whether an order's customer, items, delivery date, and
// notes may still be changed. Edits are only allowed before warehouse
// processing begins.
func CanEdit(status Status) bool {
	return status == StatusNew
}
