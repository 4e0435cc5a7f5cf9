package auth

import (
	"context"

	"github.com/goliatone/go-router"
)

var userCtxKey = &contextKey{"user"}
var claimsCtxKey = &contextKey{"claims"}

type contextKey struct {
	name string
}

// WithContext sets the resolved User in the given context
func WithContext(r context.Context, user *User) context.Context {
	return context.WithValue(r, userCtxKey, user)
}

// FromContext finds the user from the context.
func FromContext(ctx context.Context) (*User, bool) {
	raw, ok := ctx.Value(userCtxKey).(*User)
	return raw, ok
}

// WithClaimsContext sets the AuthClaims in the given context
func WithClaimsContext(r context.Context, claims AuthClaims) context.Context {
	return context.WithValue(r, claimsCtxKey, claims)
}

// GetClaims extracts the AuthClaims from the standard context
func GetClaims(ctx context.Context) (AuthClaims, bool) {
	raw, ok := ctx.Value(claimsCtxKey).(AuthClaims)
	return raw, ok
}

// GetRouterClaims extracts the AuthClaims from the router context
func GetRouterClaims(ctx router.Context, key string) (AuthClaims, bool) {
	if key == "" {
		key = "user" // Default key used by the guard middleware
	}
	raw := ctx.Locals(key)
	if raw == nil {
		return nil, false
	}
	claims, ok := raw.(AuthClaims)
	return claims, ok
}

// GetRouterUser extracts the resolved user record attached by the guard
func GetRouterUser(ctx router.Context) (*User, bool) {
	raw := ctx.Locals(currentUserKey)
	if raw == nil {
		return nil, false
	}
	user, ok := raw.(*User)
	return user, ok
}

// currentUserKey is where guards park the resolved record in router locals.
const currentUserKey = "current_user"

// IsAtLeastFromContext checks role dominance for the user attached to
// the standard context. Missing identity never dominates anything.
func IsAtLeastFromContext(ctx context.Context, minRole UserRole) bool {
	if user, ok := FromContext(ctx); ok && user != nil {
		return user.Role.IsAtLeast(minRole)
	}

	if claims, ok := GetClaims(ctx); ok {
		return claims.IsAtLeast(string(minRole))
	}

	return false
}
