package sqlite

import (
	"context"
	"testing"

	"github.com/rpggio/gantt/internal/repository"
	"github.com/stretchr/testify/require"
)

func TestAPIKeyRepository(t *testing.T) {
	db := NewTestDB(t)
	repo := NewAPIKeyRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, "tenant1", "secret-token", "laptop"))
	require.ErrorIs(t, repo.Create(ctx, "tenant2", "secret-token", "dup"), repository.ErrConflict)
	require.ErrorIs(t, repo.Create(ctx, "", "x", ""), repository.ErrInvalidInput)

	tenantID, err := repo.ResolveTenant(ctx, "secret-token")
	require.NoError(t, err)
	require.Equal(t, "tenant1", tenantID)

	var stored string
	require.NoError(t, db.QueryRowContext(ctx, `SELECT key_hash FROM api_keys`).Scan(&stored))
	require.Equal(t, HashToken("secret-token"), stored)
	require.NotContains(t, stored, "secret")

	_, err = repo.ResolveTenant(ctx, "wrong")
	require.ErrorIs(t, err, repository.ErrNotFound)
}
