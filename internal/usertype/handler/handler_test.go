package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"storefront-auth/backend/internal/server/httpx"
	"storefront-auth/backend/internal/usertype/domain"
	usertyperepo "storefront-auth/backend/internal/usertype/repository"
	"storefront-auth/backend/internal/usertype/service"
)

const prefix = "/api/v1/user_type"

func newTestServer(t *testing.T, svc UserTypeService, logger *zap.Logger) *httptest.Server {
	t.Helper()
	r := chi.NewRouter()
	r.Route(prefix, New(svc, logger).MountRoutes)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func call(t *testing.T, srv *httptest.Server, method, path, body string) (int, httpx.Envelope) {
	t.Helper()
	req, err := http.NewRequest(method, srv.URL+prefix+path, bytes.NewBufferString(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env httpx.Envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func TestUserTypeRoutes(t *testing.T) {
	srv := newTestServer(t, service.New(usertyperepo.NewMemoryRepository()), nil)

	status, env := call(t, srv, http.MethodGet, "/getAllUserTypes", "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "No User Type Found.", env.Message)

	status, env = call(t, srv, http.MethodPost, "/newUserType", `{"name":" Buyer "}`)
	require.Equal(t, http.StatusCreated, status)
	assert.True(t, env.Success)
	assert.Equal(t, "New user type created successfully.", env.Message)
	data := env.Data.(map[string]any)
	assert.Equal(t, "Buyer", data["name"])
	assert.NotEmpty(t, data["id"])
	assert.Contains(t, data, "createdAt")

	status, env = call(t, srv, http.MethodPost, "/newUserType", `{"name":"buyer"}`)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, `User type "buyer" already exists.`, env.Message)

	status, _ = call(t, srv, http.MethodPost, "/newUserType", `{"name":"Seller"}`)
	require.Equal(t, http.StatusCreated, status)

	status, env = call(t, srv, http.MethodGet, "/getAllUserTypes", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "User Types Found.", env.Message)
	items := env.Data.([]any)
	require.Len(t, items, 2)
	assert.Equal(t, "Buyer", items[0].(map[string]any)["name"])
	assert.Equal(t, "Seller", items[1].(map[string]any)["name"])
}

func TestNewUserType_Validation(t *testing.T) {
	srv := newTestServer(t, service.New(usertyperepo.NewMemoryRepository()), nil)

	for _, body := range []string{"", `{}`, `{"name":"   "}`} {
		status, env := call(t, srv, http.MethodPost, "/newUserType", body)
		require.Equal(t, http.StatusBadRequest, status, body)
		require.Len(t, env.Errors, 1)
		assert.Equal(t, httpx.FieldError{Msg: "Name is required", Param: "name", Location: "body"}, env.Errors[0])
	}

	status, env := call(t, srv, http.MethodPost, "/newUserType", "{")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "body", env.Errors[0].Param)
}

type brokenService struct{}

func (brokenService) Create(ctx context.Context, name string) (domain.UserType, error) {
	return domain.UserType{}, errors.New("pq: connection refused to 10.0.0.5")
}

func (brokenService) List(ctx context.Context) ([]domain.UserType, error) {
	return nil, errors.New("pq: connection refused to 10.0.0.5")
}

func TestUnexpectedErrorIsOpaque(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	srv := newTestServer(t, brokenService{}, zap.New(core))

	for _, c := range []struct{ method, path, body string }{
		{http.MethodPost, "/newUserType", `{"name":"Buyer"}`},
		{http.MethodGet, "/getAllUserTypes", ""},
	} {
		status, env := call(t, srv, c.method, c.path, c.body)
		assert.Equal(t, http.StatusInternalServerError, status)
		assert.Equal(t, "Internal Server Error", env.Message)
		assert.False(t, strings.Contains(env.Error, "10.0.0.5"))
	}
	assert.Equal(t, 2, logs.FilterMessage("user type operation failed").Len())
}
