// Package auth holds the access-gate primitives: actor roles, time-limited
// sessions, the session store, and the bearer-token and password helpers the
// auth service builds on.
package auth

import "fmt"

// Role identifies what an actor is allowed to do in the system.
type Role string

const (
	// RoleFieldAgent creates and edits orders while they are still new.
	RoleFieldAgent Role = "field_agent"
	// RoleWarehouse advances orders through the fulfillment statuses.
	RoleWarehouse Role = "warehouse"
	// RoleAdmin is a superset role authorized for everything.
	RoleAdmin Role = "admin"
)

// ParseRole validates a raw role string.
func ParseRole(raw string) (Role, error) {
	r := Role(raw)
	switch r {
	case RoleFieldAgent, RoleWarehouse, RoleAdmin:
		return r, nil
	default:
		return "", fmt.Errorf("unknown role %q", raw)
	}
}

// Valid reports whether r is one of the defined roles.
func (r Role) Valid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}

// String returns the wire representation of the role.
func (r Role) String() string { return string(r) }
