// Package actor identifies the user performing actions in the system.
//
// Authentication itself lives in the auth service; this package only carries
// the identity it established: audit rows, stock movements and branch scoping
// all hang off the Actor.
package actor

import (
	"context"
	"fmt"
)

// Role names with system-wide meaning
const (
	RoleAdministrador = "Administrador"
	RoleFarmaceutico  = "Farmacéutico"
	RoleAuxiliar      = "Auxiliar"
	RoleAuditor       = "Auditor"
)

// Actor represents the entity performing an action in the system.
type Actor struct {
	// ID is the unique identifier of the actor (user UUID)
	ID string `json:"id"`

	// Email is the actor's email address
	Email string `json:"email"`

	// RoleName is the actor's role
	RoleName string `json:"role_name,omitempty"`

	// IDSucursal is the branch the actor is scoped to. Nil for admins,
	// who see every branch.
	IDSucursal *int64 `json:"id_sucursal,omitempty"`

	// Superuser marks platform operators, who bypass branch scoping like admins.
	Superuser bool `json:"superuser,omitempty"`
}

// IsAdmin reports whether the actor has full cross-branch access.
func (a *Actor) IsAdmin() bool {
	if a == nil {
		return false
	}
	return a.Superuser || a.RoleName == RoleAdministrador
}

// InBranch reports whether the actor may operate on the given branch.
func (a *Actor) InBranch(idSucursal int64) bool {
	if a.IsAdmin() {
		return true
	}
	if a == nil || a.IDSucursal == nil {
		return false
	}
	return *a.IDSucursal == idSucursal
}

// String returns a string representation of the actor for logging
func (a *Actor) String() string {
	if a == nil {
		return "system"
	}
	return fmt.Sprintf("%s (%s)", a.Email, a.RoleName)
}

// contextKey is the type for context keys to avoid collisions
type contextKey string

const actorContextKey contextKey = "actor"

// FromContext retrieves the Actor from the context.
// Returns nil if no actor is present (e.g., system operations).
func FromContext(ctx context.Context) *Actor {
	if ctx == nil {
		return nil
	}
	a, ok := ctx.Value(actorContextKey).(*Actor)
	if !ok {
		return nil
	}
	return a
}

// WithActor returns a new context with the Actor attached.
func WithActor(ctx context.Context, a *Actor) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, actorContextKey, a)
}

// SystemActor returns an Actor representing the system itself.
// Use this for background jobs and system-initiated operations.
func SystemActor() *Actor {
	return &Actor{
		ID:        "00000000-0000-0000-0000-000000000000",
		Email:     "system@farmatrack.local",
		Superuser: true,
	}
}
