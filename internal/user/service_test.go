// AngelaMos | 2026
// service_test.go

package user_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Deeazer/company-crm/internal/core"
	"github.com/Deeazer/company-crm/internal/user"
	"github.com/Deeazer/company-crm/internal/user/usertest"
)

func newService(t *testing.T) (*user.Service, *usertest.MemoryRepository) {
	t.Helper()
	hasher, err := core.NewPasswordHasher(core.MinBcryptCost)
	require.NoError(t, err)

	repo := usertest.NewMemoryRepository()
	return user.NewService(repo, hasher), repo
}

func register(t *testing.T, svc *user.Service, email, password string) *user.User {
	t.Helper()
	u, err := svc.Register(context.Background(), user.RegisterInput{
		Email:     email,
		Password:  password,
		FirstName: "Bob",
		LastName:  "Builder",
	})
	require.NoError(t, err)
	return u
}

func TestRegister_HashesAndDefaultsRole(t *testing.T) {
	svc, repo := newService(t)

	u := register(t, svc, "Bob@Ex.com", "Secret123")

	stored, ok := repo.Stored(u.ID)
	require.True(t, ok)
	assert.Equal(t, "bob@ex.com", stored.Email)
	assert.Equal(t, user.RoleUser, stored.Role)
	assert.NotEqual(t, "Secret123", stored.PasswordHash)
	assert.NotContains(t, stored.PasswordHash, "Secret123")
	assert.Nil(t, stored.ResetTokenHash)
	assert.Nil(t, stored.ResetTokenExpiry)
}

func TestRegister_LegacyExecutorRole(t *testing.T) {
	svc, _ := newService(t)

	u, err := svc.Register(context.Background(), user.RegisterInput{
		Email:    "exec@ex.com",
		Password: "Secret123",
		Role:     "executor",
	})
	require.NoError(t, err)
	assert.Equal(t, user.RoleUser, u.Role)

	_, err = svc.Register(context.Background(), user.RegisterInput{
		Email:    "root@ex.com",
		Password: "Secret123",
		Role:     "superuser",
	})
	assert.ErrorIs(t, err, user.ErrInvalidRole)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _ := newService(t)
	register(t, svc, "bob@ex.com", "Secret123")

	_, err := svc.Register(context.Background(), user.RegisterInput{
		Email:    "BOB@ex.com",
		Password: "Other1234",
	})
	assert.ErrorIs(t, err, user.ErrEmailExists)
}

func TestRegister_ConcurrentSameEmail(t *testing.T) {
	svc, _ := newService(t)

	const attempts = 8
	var wg sync.WaitGroup
	errs := make([]error, attempts)

	for i := range attempts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = svc.Register(context.Background(), user.RegisterInput{
				Email:    "race@ex.com",
				Password: "Secret123",
			})
		}()
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		default:
			assert.ErrorIs(t, err, user.ErrEmailExists)
		}
	}
	assert.Equal(t, 1, succeeded)
}

func TestVerifyCredentials(t *testing.T) {
	svc, _ := newService(t)
	registered := register(t, svc, "bob@ex.com", "Secret123")
	ctx := context.Background()

	u, err := svc.VerifyCredentials(ctx, "BOB@ex.com", "Secret123")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, u.ID)

	_, wrongPassword := svc.VerifyCredentials(ctx, "bob@ex.com", "Secret124")
	_, unknownEmail := svc.VerifyCredentials(ctx, "nobody@ex.com", "Secret123")

	require.ErrorIs(t, wrongPassword, user.ErrInvalidCredentials)
	require.ErrorIs(t, unknownEmail, user.ErrInvalidCredentials)
	assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())
}

func TestUpdateUser_PartialFields(t *testing.T) {
	svc, repo := newService(t)
	u := register(t, svc, "bob@ex.com", "Secret123")
	before, _ := repo.Stored(u.ID)
	ctx := context.Background()

	lastName := "Marley"
	updated, err := svc.UpdateUser(ctx, u.ID, user.UpdateUserRequest{
		LastName: &lastName,
	})
	require.NoError(t, err)

	assert.Equal(t, "Bob", updated.FirstName)
	assert.Equal(t, "Marley", updated.LastName)
	assert.Equal(t, "bob@ex.com", updated.Email)
	assert.Equal(t, user.RoleUser, updated.Role)

	after, _ := repo.Stored(u.ID)
	assert.Equal(t, before.PasswordHash, after.PasswordHash)
}

func TestUpdateUser_PasswordRehashed(t *testing.T) {
	svc, repo := newService(t)
	u := register(t, svc, "bob@ex.com", "Secret123")
	ctx := context.Background()

	password := "NewPass12"
	_, err := svc.UpdateUser(ctx, u.ID, user.UpdateUserRequest{Password: &password})
	require.NoError(t, err)

	stored, _ := repo.Stored(u.ID)
	assert.NotEqual(t, password, stored.PasswordHash)

	_, err = svc.VerifyCredentials(ctx, "bob@ex.com", "NewPass12")
	require.NoError(t, err)
	_, err = svc.VerifyCredentials(ctx, "bob@ex.com", "Secret123")
	assert.ErrorIs(t, err, user.ErrInvalidCredentials)
}

func TestUpdateUser_Errors(t *testing.T) {
	svc, _ := newService(t)
	register(t, svc, "alice@ex.com", "Secret123")
	bob := register(t, svc, "bob@ex.com", "Secret123")
	ctx := context.Background()

	taken := "ALICE@ex.com"
	_, err := svc.UpdateUser(ctx, bob.ID, user.UpdateUserRequest{Email: &taken})
	assert.ErrorIs(t, err, user.ErrEmailExists)

	_, err = svc.UpdateUser(ctx, "missing", user.UpdateUserRequest{})
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestDeleteUser(t *testing.T) {
	svc, repo := newService(t)
	admin := register(t, svc, "root@ex.com", "Secret123")
	bob := register(t, svc, "bob@ex.com", "Secret123")
	carol := register(t, svc, "carol@ex.com", "Secret123")
	ctx := context.Background()

	assert.ErrorIs(t, svc.DeleteUser(ctx, admin.ID, admin.ID), user.ErrCannotDeleteSelf)

	repo.Referenced[carol.ID] = true
	assert.ErrorIs(t, svc.DeleteUser(ctx, admin.ID, carol.ID), user.ErrUserHasReferences)

	require.NoError(t, svc.DeleteUser(ctx, admin.ID, bob.ID))
	_, err := svc.GetByID(ctx, bob.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestResetPassword_SingleUse(t *testing.T) {
	svc, repo := newService(t)
	u := register(t, svc, "bob@ex.com", "Secret123")
	ctx := context.Background()

	tokenHash := core.HashToken("raw-token")
	require.NoError(t, svc.SetResetToken(ctx, u.ID, tokenHash, time.Now().Add(time.Hour)))

	_, err := svc.ResetPassword(ctx, tokenHash, "NewPass1")
	require.NoError(t, err)

	stored, _ := repo.Stored(u.ID)
	assert.Nil(t, stored.ResetTokenHash)
	assert.Nil(t, stored.ResetTokenExpiry)

	_, err = svc.ResetPassword(ctx, tokenHash, "NewPass2")
	assert.ErrorIs(t, err, core.ErrNotFound)

	_, err = svc.VerifyCredentials(ctx, "bob@ex.com", "NewPass1")
	assert.NoError(t, err)
}

func TestResetPassword_Expired(t *testing.T) {
	svc, _ := newService(t)
	u := register(t, svc, "bob@ex.com", "Secret123")
	ctx := context.Background()

	tokenHash := core.HashToken("old-token")
	require.NoError(t, svc.SetResetToken(ctx, u.ID, tokenHash, time.Now().Add(-time.Second)))

	_, err := svc.ResetPassword(ctx, tokenHash, "NewPass1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrNotFound))
}
