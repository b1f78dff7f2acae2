// AngelaMos | 2026
// reset_test.go

package auth

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Deeazer/company-crm/internal/core"
)

func TestResetFlow_RoundTripSingleUse(t *testing.T) {
	env := newTestEnv(t)
	u := env.register(t, "a@x.com", "OldPass1", "")
	ctx := context.Background()

	require.NoError(t, env.reset.RequestReset(ctx, "a@x.com"))

	token := env.mailer.lastToken(t)
	assert.Len(t, token, 64)
	assert.Equal(t, "a@x.com", env.mailer.sent[0].To)
	assert.Equal(t,
		"http://localhost:3000/reset-password/"+token,
		env.mailer.sent[0].ResetURL,
	)

	stored, _ := env.repo.Stored(u.ID)
	require.NotNil(t, stored.ResetTokenHash)
	assert.Equal(t, core.HashToken(token), *stored.ResetTokenHash)
	assert.NotEqual(t, token, *stored.ResetTokenHash)

	require.NoError(t, env.reset.ResetPassword(ctx, token, "NewPass1"))
	assert.ErrorIs(t,
		env.reset.ResetPassword(ctx, token, "NewPass2"),
		ErrInvalidOrExpiredToken,
	)

	stored, _ = env.repo.Stored(u.ID)
	assert.Nil(t, stored.ResetTokenHash)
	assert.Nil(t, stored.ResetTokenExpiry)

	_, err := env.users.VerifyCredentials(ctx, "a@x.com", "NewPass1")
	assert.NoError(t, err)
}

func TestResetFlow_ConcurrentUseSucceedsOnce(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "a@x.com", "OldPass1", "")
	ctx := context.Background()

	require.NoError(t, env.reset.RequestReset(ctx, "a@x.com"))
	token := env.mailer.lastToken(t)

	var wg sync.WaitGroup
	errs := make([]error, 4)
	for i := range errs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = env.reset.ResetPassword(ctx, token, "NewPass1")
		}()
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, ErrInvalidOrExpiredToken)
	}
	assert.Equal(t, 1, ok)
}

func TestResetFlow_ExpiredToken(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "a@x.com", "OldPass1", "")
	ctx := context.Background()

	env.reset.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	require.NoError(t, env.reset.RequestReset(ctx, "a@x.com"))

	err := env.reset.ResetPassword(ctx, env.mailer.lastToken(t), "NewPass1")
	assert.ErrorIs(t, err, ErrInvalidOrExpiredToken)
}

func TestResetFlow_NewRequestOverwritesOldToken(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "a@x.com", "OldPass1", "")
	ctx := context.Background()

	require.NoError(t, env.reset.RequestReset(ctx, "a@x.com"))
	first := env.mailer.lastToken(t)
	require.NoError(t, env.reset.RequestReset(ctx, "a@x.com"))
	second := env.mailer.lastToken(t)

	assert.NotEqual(t, first, second)
	assert.ErrorIs(t,
		env.reset.ResetPassword(ctx, first, "NewPass1"),
		ErrInvalidOrExpiredToken,
	)
	assert.NoError(t, env.reset.ResetPassword(ctx, second, "NewPass1"))
}

func TestResetFlow_UnknownEmail(t *testing.T) {
	env := newTestEnv(t)

	err := env.reset.RequestReset(context.Background(), "ghost@x.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.Empty(t, env.mailer.sent)
}

func TestResetFlow_DeliveryFailureKeepsToken(t *testing.T) {
	env := newTestEnv(t)
	u := env.register(t, "a@x.com", "OldPass1", "")
	env.mailer.err = errors.New("smtp: 421 try later")

	err := env.reset.RequestReset(context.Background(), "a@x.com")
	require.ErrorIs(t, err, ErrDeliveryFailed)
	assert.NotErrorIs(t, err, ErrInvalidOrExpiredToken)

	stored, _ := env.repo.Stored(u.ID)
	assert.NotNil(t, stored.ResetTokenHash)
	assert.NotNil(t, stored.ResetTokenExpiry)
}

func TestResetFlow_EmptyToken(t *testing.T) {
	env := newTestEnv(t)

	err := env.reset.ResetPassword(context.Background(), "", "NewPass1")
	assert.ErrorIs(t, err, ErrInvalidOrExpiredToken)
}
