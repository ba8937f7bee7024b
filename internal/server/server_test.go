// internal/server/server_test.go
package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"biblioteca/internal/catalog"
	"biblioteca/internal/httpapi"
	"biblioteca/internal/membership"
	"biblioteca/internal/server"
	"biblioteca/internal/storage/memory"
)

type testAPI struct {
	t      *testing.T
	server *httptest.Server
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	userStore := memory.NewUserStore()
	require.NoError(t, membership.Seed(context.Background(), userStore))

	members := membership.NewService(userStore, membership.NewSessionManager(time.Hour))
	items := catalog.NewService(memory.NewItemStore())

	ts := httptest.NewServer(server.New(members, items))
	t.Cleanup(ts.Close)

	return &testAPI{t: t, server: ts}
}

// do issues a request and decodes the envelope, returning the status.
func (a *testAPI) do(method, path, token string, payload any) (int, httpapi.Response) {
	a.t.Helper()

	var body *bytes.Buffer
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(a.t, err)
		body = bytes.NewBuffer(raw)
	} else {
		body = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequest(method, a.server.URL+path, body)
	require.NoError(a.t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := a.server.Client().Do(req)
	require.NoError(a.t, err)
	defer resp.Body.Close()

	var envelope httpapi.Response
	require.NoError(a.t, json.NewDecoder(resp.Body).Decode(&envelope))
	return resp.StatusCode, envelope
}

func (a *testAPI) login(email, password string) string {
	a.t.Helper()

	status, envelope := a.do(http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    email,
		"password": password,
	})
	require.Equal(a.t, http.StatusOK, status)
	require.True(a.t, envelope.Success)

	data, ok := envelope.Data.(map[string]any)
	require.True(a.t, ok)
	token, ok := data["token"].(string)
	require.True(a.t, ok)
	return token
}

func TestHealth(t *testing.T) {
	api := newTestAPI(t)

	status, envelope := api.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.True(t, envelope.Success)
}

func TestLoginResponseCarriesNoCredential(t *testing.T) {
	api := newTestAPI(t)

	req, err := http.NewRequest(http.MethodPost, api.server.URL+"/api/auth/login",
		bytes.NewBufferString(`{"email":"admin@biblioteca.com","password":"admin123"}`))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := api.server.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var raw bytes.Buffer
	_, err = raw.ReadFrom(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotContains(t, raw.String(), "admin123")
	assert.NotContains(t, raw.String(), "password")
	assert.NotContains(t, raw.String(), "credential")
}

func TestLoginFailure(t *testing.T) {
	api := newTestAPI(t)

	status, envelope := api.do(http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "admin@biblioteca.com",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.False(t, envelope.Success)
	assert.Equal(t, "AUTHENTICATION_ERROR", envelope.Code)
	assert.Equal(t, "invalid email or password", envelope.Message)
}

func TestUnauthenticatedRequestsRejected(t *testing.T) {
	api := newTestAPI(t)

	status, envelope := api.do(http.MethodGet, "/api/items", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.False(t, envelope.Success)

	status, _ = api.do(http.MethodGet, "/api/items", "bogus-token", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestItemLendReturnFlow(t *testing.T) {
	api := newTestAPI(t)
	librarian := api.login("bibliotecario@biblioteca.com", "senha123")
	member := api.login("usuario@biblioteca.com", "senha123")

	book := map[string]any{
		"code":       "LIV001",
		"title":      "O Senhor dos Anéis",
		"kind":       "BOOK",
		"author":     "J.R.R. Tolkien",
		"page_count": 1200,
	}

	// Members may not create items.
	status, envelope := api.do(http.MethodPost, "/api/items", member, book)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "PERMISSION_DENIED", envelope.Code)

	status, envelope = api.do(http.MethodPost, "/api/items", librarian, book)
	require.Equal(t, http.StatusCreated, status)
	require.True(t, envelope.Success)

	status, envelope = api.do(http.MethodPost, "/api/items", librarian, book)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "ITEM_ALREADY_EXISTS", envelope.Code)

	// Members may list and lend.
	status, _ = api.do(http.MethodGet, "/api/items", member, nil)
	assert.Equal(t, http.StatusOK, status)

	status, envelope = api.do(http.MethodPost, "/api/items/LIV001/lend", member, nil)
	require.Equal(t, http.StatusOK, status)
	data := envelope.Data.(map[string]any)
	assert.Equal(t, true, data["borrowed"])

	status, envelope = api.do(http.MethodPost, "/api/items/LIV001/lend", member, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, "INVALID_OPERATION", envelope.Code)

	status, _ = api.do(http.MethodPost, "/api/items/LIV001/return", member, nil)
	assert.Equal(t, http.StatusOK, status)

	status, envelope = api.do(http.MethodPost, "/api/items/LIV001/return", member, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, "INVALID_OPERATION", envelope.Code)

	status, envelope = api.do(http.MethodPost, "/api/items/NOPE/lend", member, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "ITEM_NOT_FOUND", envelope.Code)
}

func TestItemFilters(t *testing.T) {
	api := newTestAPI(t)
	librarian := api.login("bibliotecario@biblioteca.com", "senha123")

	_, _ = api.do(http.MethodPost, "/api/items", librarian, map[string]any{
		"code": "LIV001", "title": "Livro", "kind": "BOOK", "author": "A", "page_count": 100,
	})
	_, _ = api.do(http.MethodPost, "/api/items", librarian, map[string]any{
		"code": "REV001", "title": "Revista", "kind": "PERIODICAL", "issue_number": 1, "issue_date": "2025-01-01",
	})
	_, _ = api.do(http.MethodPost, "/api/items/LIV001/lend", librarian, nil)

	status, envelope := api.do(http.MethodGet, "/api/items?filter=borrowed", librarian, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, envelope.Data.([]any), 1)

	status, envelope = api.do(http.MethodGet, "/api/items?kind=PERIODICAL", librarian, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, envelope.Data.([]any), 1)

	status, envelope = api.do(http.MethodGet, "/api/items?filter=bogus", librarian, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_ERROR", envelope.Code)
}

func TestStatisticsGatedByRole(t *testing.T) {
	api := newTestAPI(t)
	librarian := api.login("bibliotecario@biblioteca.com", "senha123")
	member := api.login("usuario@biblioteca.com", "senha123")

	_, _ = api.do(http.MethodPost, "/api/items", librarian, map[string]any{
		"code": "LIV001", "title": "Livro", "kind": "BOOK", "author": "A", "page_count": 100,
	})

	status, envelope := api.do(http.MethodGet, "/api/stats", librarian, nil)
	require.Equal(t, http.StatusOK, status)
	data := envelope.Data.(map[string]any)
	assert.Equal(t, float64(1), data["total"])

	status, _ = api.do(http.MethodGet, "/api/stats", member, nil)
	assert.Equal(t, http.StatusForbidden, status)
}

func TestUserAdministrationFlow(t *testing.T) {
	api := newTestAPI(t)
	admin := api.login("admin@biblioteca.com", "admin123")
	member := api.login("usuario@biblioteca.com", "senha123")

	// Only admins may create accounts.
	status, envelope := api.do(http.MethodPost, "/api/users", member, map[string]string{
		"name": "Novo", "email": "novo@biblioteca.com", "password": "senha123", "role": "MEMBER",
	})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "PERMISSION_DENIED", envelope.Code)

	status, envelope = api.do(http.MethodPost, "/api/users", admin, map[string]string{
		"name": "Novo", "email": "novo@biblioteca.com", "password": "senha123", "role": "MEMBER",
	})
	require.Equal(t, http.StatusCreated, status)
	created := envelope.Data.(map[string]any)
	id := created["id"].(string)
	require.NotEmpty(t, id)

	status, _ = api.do(http.MethodPost, fmt.Sprintf("/api/users/%s/deactivate", id), admin, nil)
	require.Equal(t, http.StatusOK, status)

	status, envelope = api.do(http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "novo@biblioteca.com", "password": "senha123",
	})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "account is inactive", envelope.Message)

	status, _ = api.do(http.MethodDelete, "/api/users/"+id, admin, nil)
	assert.Equal(t, http.StatusOK, status)

	status, envelope = api.do(http.MethodGet, "/api/users/"+id, admin, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "USER_NOT_FOUND", envelope.Code)
}

func TestLogoutEndsSession(t *testing.T) {
	api := newTestAPI(t)
	admin := api.login("admin@biblioteca.com", "admin123")

	status, _ := api.do(http.MethodGet, "/api/auth/me", admin, nil)
	require.Equal(t, http.StatusOK, status)

	status, _ = api.do(http.MethodPost, "/api/auth/logout", admin, nil)
	require.Equal(t, http.StatusOK, status)

	status, envelope := api.do(http.MethodGet, "/api/auth/me", admin, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "AUTHENTICATION_ERROR", envelope.Code)
}
