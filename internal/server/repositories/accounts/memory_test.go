package accounts

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/securelogin/internal/common"
	"github.com/dmitrijs2005/securelogin/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepository_SaveAndFind(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	saved, err := repo.Save(ctx, &models.Account{Username: "alice", Email: "alice@example.com", Roles: []string{"USER"}, Active: true})
	require.NoError(t, err)
	require.NotEmpty(t, saved.ID)

	byName, err := repo.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, saved.ID, byName.ID)

	byEmail, err := repo.FindByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, saved.ID, byEmail.ID)

	ok, err := repo.ExistsByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.ExistsByEmail(ctx, "other@example.com")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = repo.FindByID(ctx, "ghost")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestMemoryRepository_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	saved, err := repo.Save(ctx, &models.Account{Username: "alice", Email: "a@x", Roles: []string{"USER"}})
	require.NoError(t, err)

	saved.Roles[0] = "ADMIN"
	got, err := repo.FindByID(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"USER"}, got.Roles)
}

func TestMemoryRepository_Uniqueness(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	alice, err := repo.Save(ctx, &models.Account{Username: "alice", Email: "alice@x"})
	require.NoError(t, err)
	_, err = repo.Save(ctx, &models.Account{Username: "bob", Email: "bob@x"})
	require.NoError(t, err)

	_, err = repo.Save(ctx, &models.Account{Username: "alice", Email: "new@x"})
	assert.ErrorIs(t, err, common.ErrorDuplicateUsername)

	_, err = repo.Save(ctx, &models.Account{Username: "carol", Email: "bob@x"})
	assert.ErrorIs(t, err, common.ErrorDuplicateEmail)

	alice.Email = "bob@x"
	_, err = repo.Save(ctx, alice)
	assert.ErrorIs(t, err, common.ErrorDuplicateEmail)

	alice.Email = "alice@x"
	alice.FullName = "Alice"
	_, err = repo.Save(ctx, alice)
	assert.NoError(t, err, "saving an account over itself is not a collision")

	_, err = repo.Save(ctx, &models.Account{ID: "ghost", Username: "ghost"})
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestMemoryRepository_Lists(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	for _, a := range []*models.Account{
		{Username: "admin", Email: "admin@x", Active: true, Roles: []string{"ADMIN", "USER"}},
		{Username: "alice", Email: "alice@x", Active: true, Roles: []string{"USER"}},
		{Username: "bob", Email: "bob@x", Active: false, Roles: []string{"USER"}},
	} {
		_, err := repo.Save(ctx, a)
		require.NoError(t, err)
	}

	all, _ := repo.FindAll(ctx)
	active, _ := repo.FindActive(ctx)
	admins, _ := repo.FindByRole(ctx, "ADMIN")
	users, _ := repo.FindByRole(ctx, "USER")

	assert.Len(t, all, 3)
	assert.Equal(t, "admin", all[0].Username, "insertion order is kept")
	assert.Len(t, active, 2)
	assert.Len(t, admins, 1)
	assert.Len(t, users, 3)
}
