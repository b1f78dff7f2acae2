// AngelaMos | 2026
// helpers_test.go

package auth

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/Deeazer/company-crm/internal/core"
	"github.com/Deeazer/company-crm/internal/mail"
	"github.com/Deeazer/company-crm/internal/middleware"
	"github.com/Deeazer/company-crm/internal/user"
	"github.com/Deeazer/company-crm/internal/user/usertest"
)

type capturingMailer struct {
	mu   sync.Mutex
	sent []mail.PasswordResetMessage
	err  error
}

func (c *capturingMailer) SendPasswordReset(
	_ context.Context,
	msg mail.PasswordResetMessage,
) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.sent = append(c.sent, msg)
	return nil
}

// lastToken extracts the raw reset token from the most recent link.
func (c *capturingMailer) lastToken(t *testing.T) string {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	require.NotEmpty(t, c.sent)
	link := c.sent[len(c.sent)-1].ResetURL
	idx := strings.LastIndex(link, "/reset-password/")
	require.GreaterOrEqual(t, idx, 0)
	return link[idx+len("/reset-password/"):]
}

type testEnv struct {
	repo     *usertest.MemoryRepository
	users    *user.Service
	clock    *fakeClock
	jwt      *JWTManager
	redis    *miniredis.Miniredis
	denylist *RedisDenylist
	mailer   *capturingMailer
	reset    *ResetFlow
	service  *Service
	router   chi.Router
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	hasher, err := core.NewPasswordHasher(core.MinBcryptCost)
	require.NoError(t, err)

	repo := usertest.NewMemoryRepository()
	users := user.NewService(repo, hasher)

	clock := newFakeClock()
	clock.now = time.Now().UTC()
	jwtManager := newTestJWT(t, clock)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	denylist := NewRedisDenylist(client)
	denylist.now = clock.Now

	mailer := &capturingMailer{}
	reset := NewResetFlow(users, mailer, ResetConfig{
		TokenTTL:  time.Hour,
		ClientURL: "http://localhost:3000/",
	})

	service := NewService(users, jwtManager, denylist, ServiceConfig{
		AllowRoleOnRegister: true,
	})

	router := chi.NewRouter()
	passthrough := func(next http.Handler) http.Handler { return next }
	NewHandler(service, reset).RegisterRoutes(
		router,
		middleware.Authenticator(service),
		passthrough,
	)
	user.NewHandler(users).RegisterRoutes(router, middleware.Authenticator(service))

	return &testEnv{
		repo:     repo,
		users:    users,
		clock:    clock,
		jwt:      jwtManager,
		redis:    mr,
		denylist: denylist,
		mailer:   mailer,
		reset:    reset,
		service:  service,
		router:   router,
	}
}

func (e *testEnv) register(t *testing.T, email, password, role string) *user.User {
	t.Helper()
	u, err := e.users.Register(context.Background(), user.RegisterInput{
		Email:     email,
		Password:  password,
		FirstName: "Test",
		LastName:  "User",
		Role:      role,
	})
	require.NoError(t, err)
	return u
}
