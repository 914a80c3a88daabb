package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"songbox/internal/auth"
	"songbox/internal/domain"
	"songbox/internal/repository"
)

type memUserRepo struct {
	byUsername map[string]*domain.User
	nextID     int64
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{byUsername: make(map[string]*domain.User), nextID: 1}
}

func (r *memUserRepo) Init(ctx context.Context) error { return nil }

func (r *memUserRepo) Create(ctx context.Context, user *domain.User) (int64, error) {
	if _, ok := r.byUsername[user.Username]; ok {
		return 0, repository.ErrDuplicate
	}
	user.ID = r.nextID
	r.nextID++
	clone := *user
	r.byUsername[user.Username] = &clone
	return user.ID, nil
}

func (r *memUserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	user, ok := r.byUsername[username]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *user
	return &clone, nil
}

func (r *memUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if email == "" {
		return nil, repository.ErrNotFound
	}
	for _, u := range r.byUsername {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	for _, u := range r.byUsername {
		if u.ID == id {
			clone := *u
			return &clone, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memUserRepo) Update(ctx context.Context, user *domain.User) error {
	if _, ok := r.byUsername[user.Username]; !ok {
		return repository.ErrNotFound
	}
	clone := *user
	r.byUsername[user.Username] = &clone
	return nil
}

var _ repository.UserRepository = (*memUserRepo)(nil)

func TestUserService_RegisterAndAuthenticate(t *testing.T) {
	t.Parallel()

	repo := newMemUserRepo()
	svc := NewUserService(repo, bcrypt.MinCost)

	user, err := svc.Register(context.Background(), RegisterInput{
		Username: "alice",
		Password: "sekret-pw-1",
		Email:    "alice@example.com",
		FullName: "Alice A",
	})
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.Empty(t, user.PasswordHash, "hash must not leave the service")
	assert.False(t, user.Disabled)

	stored, err := repo.GetByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.NotEmpty(t, stored.PasswordHash)
	assert.NotEqual(t, "sekret-pw-1", stored.PasswordHash)
	assert.True(t, auth.CheckPassword("sekret-pw-1", stored.PasswordHash))

	// verification keeps holding after unrelated attempts
	for i := 0; i < 3; i++ {
		_, err := svc.Authenticate(context.Background(), "alice", "wrong")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	}
	authed, err := svc.Authenticate(context.Background(), "alice", "sekret-pw-1")
	require.NoError(t, err)
	assert.Equal(t, user.ID, authed.ID)
}

func TestUserService_RegisterValidation(t *testing.T) {
	t.Parallel()

	svc := NewUserService(newMemUserRepo(), bcrypt.MinCost)

	tests := []struct {
		name string
		in   RegisterInput
	}{
		{name: "missing username", in: RegisterInput{Password: "sekret-pw-1"}},
		{name: "missing password", in: RegisterInput{Username: "alice"}},
		{name: "short password", in: RegisterInput{Username: "alice", Password: "short"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tt.in)
			assert.Error(t, err)
		})
	}
}

func TestUserService_RegisterDuplicateUsername(t *testing.T) {
	t.Parallel()

	repo := newMemUserRepo()
	svc := NewUserService(repo, bcrypt.MinCost)

	_, err := svc.Register(context.Background(), RegisterInput{Username: "alice", Password: "sekret-pw-1"})
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), RegisterInput{Username: "alice", Password: "other-pw-22"})
	assert.ErrorIs(t, err, ErrUsernameTaken)
	assert.Len(t, repo.byUsername, 1, "no second record may be created")
}

func TestUserService_RegisterDuplicateEmail(t *testing.T) {
	t.Parallel()

	repo := newMemUserRepo()
	svc := NewUserService(repo, bcrypt.MinCost)

	_, err := svc.Register(context.Background(), RegisterInput{
		Username: "alice", Password: "sekret-pw-1", Email: "shared@example.com",
	})
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), RegisterInput{
		Username: "bob", Password: "sekret-pw-1", Email: "shared@example.com",
	})
	assert.ErrorIs(t, err, ErrEmailTaken)
	assert.Len(t, repo.byUsername, 1)
}

func TestUserService_AuthenticateGenericFailure(t *testing.T) {
	t.Parallel()

	repo := newMemUserRepo()
	svc := NewUserService(repo, bcrypt.MinCost)

	_, err := svc.Register(context.Background(), RegisterInput{Username: "alice", Password: "sekret-pw-1"})
	require.NoError(t, err)

	// unknown username and wrong password must be indistinguishable
	_, errUnknown := svc.Authenticate(context.Background(), "nobody", "sekret-pw-1")
	_, errWrongPw := svc.Authenticate(context.Background(), "alice", "wrong-pw-123")

	assert.ErrorIs(t, errUnknown, ErrInvalidCredentials)
	assert.ErrorIs(t, errWrongPw, ErrInvalidCredentials)
	assert.Equal(t, errUnknown.Error(), errWrongPw.Error())
}

func TestUserService_UpdateProfile(t *testing.T) {
	t.Parallel()

	repo := newMemUserRepo()
	svc := NewUserService(repo, bcrypt.MinCost)

	_, err := svc.Register(context.Background(), RegisterInput{Username: "alice", Password: "sekret-pw-1"})
	require.NoError(t, err)
	_, err = svc.Register(context.Background(), RegisterInput{
		Username: "bob", Password: "sekret-pw-1", Email: "bob@example.com",
	})
	require.NoError(t, err)

	updated, err := svc.UpdateProfile(context.Background(), "alice", "alice@example.com", "Alice A")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", updated.Email)
	assert.Equal(t, "Alice A", updated.FullName)

	_, err = svc.UpdateProfile(context.Background(), "alice", "bob@example.com", "")
	assert.ErrorIs(t, err, ErrEmailTaken)
}
