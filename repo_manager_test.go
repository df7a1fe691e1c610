package auth_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"

	auth "github.com/goliatone/go-bearer"
)

func TestRepositoryManager(t *testing.T) {
	ctx := context.Background()
	repos := auth.NewRepositoryManager(newTestDB(t))
	require.NoError(t, repos.Validate())
	require.NoError(t, repos.Migrate(ctx))
	// migrations are idempotent
	require.NoError(t, repos.Migrate(ctx))

	encoder := newTestEncoder()

	t.Run("commit", func(t *testing.T) {
		err := repos.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			_, err := repos.Users().SaveTx(ctx, tx, newTestUser(t, encoder, "alice@example.com", "secret-password"))
			return err
		})
		require.NoError(t, err)

		found, err := repos.Users().FindByIdentifier(ctx, "alice@example.com")
		require.NoError(t, err)
		assert.Equal(t, "alice@example.com", found.Email)
	})

	t.Run("rollback", func(t *testing.T) {
		boom := errors.New("boom")
		err := repos.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := repos.Users().SaveTx(ctx, tx, newTestUser(t, encoder, "bob@example.com", "secret-password")); err != nil {
				return err
			}
			found, err := repos.Users().FindByIdentifierTx(ctx, tx, "bob@example.com")
			if err != nil {
				return err
			}
			assert.Equal(t, "bob@example.com", found.Email)
			return boom
		})
		assert.ErrorIs(t, err, boom)

		_, err = repos.Users().FindByIdentifier(ctx, "bob@example.com")
		assert.True(t, auth.IsPrincipalNotFoundError(err))
	})

	t.Run("cancelled context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		err := repos.RunInTx(cctx, nil, func(ctx context.Context, tx bun.Tx) error {
			t.Fatal("must not run")
			return nil
		})
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestRepositoryManager_Validate(t *testing.T) {
	repos := auth.NewRepositoryManager(nil)
	assert.Error(t, repos.Validate())
	assert.Panics(t, repos.MustValidate)
}
