package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"songbox/internal/domain"
	"songbox/internal/repository"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func newTestUserRepo(t *testing.T) repository.UserRepository {
	t.Helper()
	repo := NewUserRepository(openTestDB(t))
	require.NoError(t, repo.Init(context.Background()))
	return repo
}

func TestUserRepository_CreateAndGet(t *testing.T) {
	t.Parallel()

	repo := newTestUserRepo(t)
	ctx := context.Background()

	user := &domain.User{
		Username:     "alice",
		Email:        "alice@example.com",
		FullName:     "Alice A",
		PasswordHash: "hash",
	}
	id, err := repo.Create(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, id, user.ID)

	byName, err := repo.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, id, byName.ID)
	assert.Equal(t, "alice@example.com", byName.Email)
	assert.Equal(t, "hash", byName.PasswordHash)
	assert.False(t, byName.Disabled)

	byEmail, err := repo.GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, id, byEmail.ID)

	byID, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "alice", byID.Username)
}

func TestUserRepository_NotFound(t *testing.T) {
	t.Parallel()

	repo := newTestUserRepo(t)
	ctx := context.Background()

	_, err := repo.GetByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = repo.GetByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = repo.GetByID(ctx, 42)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestUserRepository_DuplicateUsername(t *testing.T) {
	t.Parallel()

	repo := newTestUserRepo(t)
	ctx := context.Background()

	_, err := repo.Create(ctx, &domain.User{Username: "alice", PasswordHash: "h1"})
	require.NoError(t, err)

	_, err = repo.Create(ctx, &domain.User{Username: "alice", PasswordHash: "h2"})
	assert.ErrorIs(t, err, repository.ErrDuplicate)
}

func TestUserRepository_DuplicateEmail(t *testing.T) {
	t.Parallel()

	repo := newTestUserRepo(t)
	ctx := context.Background()

	_, err := repo.Create(ctx, &domain.User{Username: "alice", Email: "shared@example.com", PasswordHash: "h"})
	require.NoError(t, err)

	_, err = repo.Create(ctx, &domain.User{Username: "bob", Email: "shared@example.com", PasswordHash: "h"})
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	// empty emails are not unique among themselves
	_, err = repo.Create(ctx, &domain.User{Username: "carol", PasswordHash: "h"})
	require.NoError(t, err)
	_, err = repo.Create(ctx, &domain.User{Username: "dave", PasswordHash: "h"})
	require.NoError(t, err)
}

func TestUserRepository_Update(t *testing.T) {
	t.Parallel()

	repo := newTestUserRepo(t)
	ctx := context.Background()

	user := &domain.User{Username: "alice", PasswordHash: "h"}
	_, err := repo.Create(ctx, user)
	require.NoError(t, err)

	user.Email = "alice@example.com"
	user.FullName = "Alice A"
	user.Disabled = true
	require.NoError(t, repo.Update(ctx, user))

	got, err := repo.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", got.Email)
	assert.Equal(t, "Alice A", got.FullName)
	assert.True(t, got.Disabled)

	err = repo.Update(ctx, &domain.User{ID: 999, Username: "ghost", PasswordHash: "h"})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
