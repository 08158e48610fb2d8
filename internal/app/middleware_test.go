package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/familyhub/familyhub/pkg/user"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRouter(t *testing.T) (*mux.Router, *string) {
	users := user.NewUserService(user.NewStubUserRepository())
	_, err := users.CreateUser(context.Background(), user.User{Uid: "sarah-uid", Username: "sarah", DisplayName: "Sarah"})
	require.NoError(t, err)

	seen := new(string)
	router := mux.NewRouter()
	router.Use(userContextMiddleware(users))
	router.HandleFunc("/api/probe", func(w http.ResponseWriter, r *http.Request) {
		if current, err := user.CurrentUser(r.Context()); err == nil {
			*seen = current.Username
		}
		w.WriteHeader(http.StatusOK)
	})
	return router, seen
}

func TestUserContextMiddleware(t *testing.T) {

	t.Run("should put the user of the header into the context", func(t *testing.T) {
		// given
		router, seen := setupRouter(t)
		req := httptest.NewRequest(http.MethodGet, "/api/probe", nil)
		req.Header.Set("X-User-Id", "sarah-uid")
		rr := httptest.NewRecorder()

		// when
		router.ServeHTTP(rr, req)

		// then
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "sarah", *seen)
	})

	t.Run("should reject unknown users", func(t *testing.T) {
		// given
		router, seen := setupRouter(t)
		req := httptest.NewRequest(http.MethodGet, "/api/probe", nil)
		req.Header.Set("X-User-Id", "unknown")
		rr := httptest.NewRecorder()

		// when
		router.ServeHTTP(rr, req)

		// then
		assert.Equal(t, http.StatusForbidden, rr.Code)
		assert.Empty(t, *seen)
	})

	t.Run("should pass requests without the header", func(t *testing.T) {
		router, seen := setupRouter(t)
		req := httptest.NewRequest(http.MethodGet, "/api/probe", nil)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Empty(t, *seen)
	})
}
