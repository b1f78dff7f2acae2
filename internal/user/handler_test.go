// AngelaMos | 2026
// handler_test.go

package user_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-chi/chi/v5"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Deeazer/company-crm/internal/core"
	"github.com/Deeazer/company-crm/internal/middleware"
	"github.com/Deeazer/company-crm/internal/user"
)

// asUser stands in for the authenticator with a fixed identity.
func asUser(id, role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := middleware.WithIdentity(r.Context(), &middleware.Identity{
				UserID: id,
				Role:   role,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func newRouter(h *user.Handler, id, role string) http.Handler {
	r := chi.NewRouter()
	h.RegisterRoutes(r, asUser(id, role))
	return r
}

func TestHandler_StandardUserForbidden(t *testing.T) {
	svc, _ := newService(t)
	bob := register(t, svc, "bob@ex.com", "Secret123")
	router := newRouter(user.NewHandler(svc), bob.ID, bob.Role)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users", nil))

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestHandler_AdminCreateAndList(t *testing.T) {
	svc, _ := newService(t)
	router := newRouter(user.NewHandler(svc), "admin-id", user.RoleAdmin)

	body := `{"email":"Mia@Ex.com","password":"Secret123","firstName":"Mia","lastName":"M","role":"manager"}`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(body)))
	require.Equal(t, http.StatusCreated, rec.Code)

	var created user.Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&created))
	assert.Equal(t, "mia@ex.com", created.Email)
	assert.Equal(t, user.RoleManager, created.Role)
	assert.NotContains(t, rec.Body.String(), "password")

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(body)))
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users?role=manager", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var page core.PaginatedResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&page))
	assert.Equal(t, 1, page.Total)
}

func TestHandler_UpdateValidation(t *testing.T) {
	svc, _ := newService(t)
	bob := register(t, svc, "bob@ex.com", "Secret123")
	router := newRouter(user.NewHandler(svc), "admin-id", user.RoleAdmin)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(
		http.MethodPut,
		"/users/"+bob.ID,
		strings.NewReader(`{"role":"overlord"}`),
	))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(
		http.MethodPut,
		"/users/"+bob.ID,
		strings.NewReader(`{"firstName":"Robert"}`),
	))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"firstName":"Robert"`)
	assert.Contains(t, rec.Body.String(), `"lastName":"Builder"`)
}

func TestHandler_DeleteConflicts(t *testing.T) {
	svc, repo := newService(t)
	admin := register(t, svc, "root@ex.com", "Secret123")
	owner := register(t, svc, "owner@ex.com", "Secret123")
	repo.Referenced[owner.ID] = true
	router := newRouter(user.NewHandler(svc), admin.ID, user.RoleAdmin)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/users/"+owner.ID, nil))
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/users/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler_NonUUIDIDIsNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	hasher, err := core.NewPasswordHasher(core.MinBcryptCost)
	require.NoError(t, err)
	svc := user.NewService(user.NewRepository(sqlx.NewDb(db, "sqlmock")), hasher)
	router := newRouter(user.NewHandler(svc), "admin-id", user.RoleAdmin)

	requests := []*http.Request{
		httptest.NewRequest(http.MethodGet, "/users/abc", nil),
		httptest.NewRequest(http.MethodPut, "/users/abc", strings.NewReader(`{"firstName":"X"}`)),
		httptest.NewRequest(http.MethodDelete, "/users/abc", nil),
	}
	for _, req := range requests {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code, req.Method)
		assert.Contains(t, rec.Body.String(), "NOT_FOUND", req.Method)
	}

	assert.NoError(t, mock.ExpectationsWereMet())
}
