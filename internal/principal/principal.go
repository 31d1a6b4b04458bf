// Package principal carries the authenticated caller through the request
// context. Identity and session management live in the surrounding gateway;
// the commerce core only consumes the resolved {id, org, role} triple.
package principal

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type Role string

const (
	RoleUser    Role = "user"
	RoleManager Role = "manager"
	RoleAdmin   Role = "admin"
)

func ParseRole(value string) (Role, bool) {
	switch Role(value) {
	case RoleUser, RoleManager, RoleAdmin:
		return Role(value), true
	default:
		return "", false
	}
}

type Principal struct {
	ID    snowflake.ID
	OrgID *snowflake.ID
	Role  Role
}

type contextKey struct{}

func WithContext(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, contextKey{}, p)
}

func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(contextKey{}).(Principal)
	return p, ok
}
