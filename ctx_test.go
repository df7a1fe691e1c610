package auth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auth "github.com/goliatone/go-bearer"
)

func TestAuthenticationContext(t *testing.T) {
	ctx := context.Background()

	_, ok := auth.AuthenticationFromContext(ctx)
	assert.False(t, ok)
	assert.False(t, auth.IsAuthenticated(ctx))
	assert.False(t, auth.AlreadyFiltered(ctx))

	_, ok = auth.PrincipalFromContext(ctx)
	assert.False(t, ok)

	user := &auth.User{Email: "alice@example.com", Role: auth.RoleAdmin}
	authentication := &auth.Authentication{
		Principal:   user,
		Authorities: user.Authorities(),
	}
	ctx = auth.WithAuthentication(ctx, authentication)

	got, ok := auth.AuthenticationFromContext(ctx)
	require.True(t, ok)
	assert.Same(t, authentication, got)
	assert.Equal(t, "alice@example.com", got.Name())
	assert.True(t, got.HasAuthority("ADMIN"))
	assert.True(t, got.HasAuthority("USER"))

	principal, ok := auth.PrincipalFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, user, principal)
}

func TestAuthentication_NilSafe(t *testing.T) {
	var a *auth.Authentication
	assert.Empty(t, a.Name())
	assert.False(t, a.HasAuthority("USER"))

	ctx := auth.WithAuthentication(context.Background(), nil)
	assert.False(t, auth.IsAuthenticated(ctx))
}
