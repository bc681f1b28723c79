// Package auth implements role-based access control, bearer tokens and
// password hashing.
package auth

import (
	"context"
	"fmt"

	"github.com/sidesales/sidesales-backend/internal/apperrors"
	"github.com/sidesales/sidesales-backend/internal/model"
)

// Action is a permission checked against a role.
type Action string

const (
	// ActionRead covers every read-only view, including the dashboard.
	ActionRead Action = "read"
	// ActionWrite covers creating, updating and deleting purchases, sales and their children.
	ActionWrite Action = "write"
	// ActionManageUsers covers creating users, changing roles and setting passwords.
	ActionManageUsers Action = "manage_users"
)

// Allowed reports whether role may perform action.
//
//	ADMIN:   read, write, manage_users
//	MANAGER: read, write
//	VIEWER:  read
//
// Unknown roles and actions are denied.
func Allowed(role model.Role, action Action) bool {
	switch role {
	case model.RoleAdmin:
		return action == ActionRead || action == ActionWrite || action == ActionManageUsers
	case model.RoleManager:
		return action == ActionRead || action == ActionWrite
	case model.RoleViewer:
		return action == ActionRead
	}
	return false
}

// Actor is the authenticated caller of a service operation.
type Actor struct {
	UserID string
	Role   model.Role
}

// NewActor builds an Actor from a user record.
func NewActor(u model.User) Actor {
	return Actor{UserID: u.ID, Role: u.Role}
}

// Require returns apperrors.ErrPermissionDenied when actor may not perform action.
func Require(actor Actor, action Action) error {
	if !Allowed(actor.Role, action) {
		return fmt.Errorf("%w: role %q cannot %s", apperrors.ErrPermissionDenied, actor.Role, action)
	}
	return nil
}

type actorKey struct{}

// WithActor returns a copy of ctx carrying actor.
func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFromContext returns the actor stored by WithActor.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	actor, ok := ctx.Value(actorKey{}).(Actor)
	return actor, ok
}
