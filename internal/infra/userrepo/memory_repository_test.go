package userrepo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/seoulfit/seoulfit-api/internal/domain/auth"
)

func TestMemoryRepository_UniqueIndexes(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	first, err := repo.Create(ctx, "a@example.com", "alpha", "hash")
	require.NoError(t, err)
	_, err = repo.Create(ctx, "a@example.com", "beta", "hash")
	require.ErrorIs(t, err, auth.ErrEmailExists)
	_, err = repo.Create(ctx, "b@example.com", "alpha", "hash")
	require.ErrorIs(t, err, auth.ErrNicknameExists)

	second, err := repo.Create(ctx, "b@example.com", "beta", "hash")
	require.NoError(t, err)

	_, err = repo.UpdateNickname(ctx, first.ID, "beta")
	require.ErrorIs(t, err, auth.ErrNicknameExists)

	renamed, err := repo.UpdateNickname(ctx, first.ID, "gamma")
	require.NoError(t, err)
	require.Equal(t, "gamma", renamed.Nickname)

	_, found, err := repo.GetByNickname(ctx, "alpha")
	require.NoError(t, err)
	require.False(t, found, "old nickname is released")

	got, found, err := repo.GetByNickname(ctx, "beta")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, second.ID, got.ID)
}

func TestMemoryRepository_UpsertIdentityKeepsToken(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	created, err := repo.UpsertIdentity(ctx, auth.Identity{UserID: 7, Provider: "google", ProviderSubject: "sub", RefreshToken: "tok"})
	require.NoError(t, err)
	require.NotZero(t, created.ID)

	updated, err := repo.UpsertIdentity(ctx, auth.Identity{UserID: 7, Provider: "google", ProviderSubject: "sub", ProviderEmail: "a@example.com"})
	require.NoError(t, err)
	require.Equal(t, created.ID, updated.ID)
	require.Equal(t, "tok", updated.RefreshToken)

	byUser, found, err := repo.GetIdentityByUser(ctx, 7, "google")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "a@example.com", byUser.ProviderEmail)

	_, err = repo.UpsertIdentity(ctx, auth.Identity{Provider: "google", ProviderSubject: "x"})
	require.Error(t, err)
}
