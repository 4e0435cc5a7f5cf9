package auth_test

import (
	"context"
	"testing"

	auth "github.com/BrayanMorningstar237/waiter-backend-sub001"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserContextRoundTrip(t *testing.T) {
	user := &auth.User{ID: uuid.New(), Role: auth.RoleAdmin, Active: true}

	ctx := auth.WithContext(context.Background(), user)
	got, ok := auth.FromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, user, got)

	_, ok = auth.FromContext(context.Background())
	assert.False(t, ok)
}

func TestClaimsContextRoundTrip(t *testing.T) {
	claims := makeClaims()

	ctx := auth.WithClaimsContext(context.Background(), claims)
	got, ok := auth.GetClaims(ctx)
	require.True(t, ok)
	assert.Equal(t, claims.UserID(), got.UserID())

	_, ok = auth.GetClaims(context.Background())
	assert.False(t, ok)
}

func TestIsAtLeastFromContext(t *testing.T) {
	t.Run("uses the resolved user first", func(t *testing.T) {
		user := &auth.User{ID: uuid.New(), Role: auth.RoleAdmin}
		ctx := auth.WithContext(context.Background(), user)

		assert.True(t, auth.IsAtLeastFromContext(ctx, auth.RoleUser))
		assert.True(t, auth.IsAtLeastFromContext(ctx, auth.RoleAdmin))
		assert.False(t, auth.IsAtLeastFromContext(ctx, auth.RoleSuperAdmin))
	})

	t.Run("falls back to claims", func(t *testing.T) {
		ctx := auth.WithClaimsContext(context.Background(), makeClaims())

		assert.True(t, auth.IsAtLeastFromContext(ctx, auth.RoleAdmin))
		assert.False(t, auth.IsAtLeastFromContext(ctx, auth.RoleSuperAdmin))
	})

	t.Run("empty context never dominates", func(t *testing.T) {
		assert.False(t, auth.IsAtLeastFromContext(context.Background(), auth.RoleUser))
	})
}

func TestGetRouterClaims(t *testing.T) {
	claims := makeClaims()

	mctx := new(MockContext)
	mctx.On("Locals", "user").Return(claims)

	got, ok := auth.GetRouterClaims(mctx, "")
	require.True(t, ok)
	assert.Equal(t, claims.UserID(), got.UserID())
}

func TestGetRouterUser(t *testing.T) {
	user := &auth.User{ID: uuid.New(), Role: auth.RoleUser}

	mctx := new(MockContext)
	mctx.On("Locals", "current_user").Return(user)

	got, ok := auth.GetRouterUser(mctx)
	require.True(t, ok)
	assert.Equal(t, user, got)

	empty := new(MockContext)
	empty.On("Locals", "current_user").Return(nil)
	_, ok = auth.GetRouterUser(empty)
	assert.False(t, ok)
}
