// internal/httpapi/response_test.go
package httpapi_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"biblioteca/internal/apperr"
	"biblioteca/internal/httpapi"
)

func TestStatusOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", apperr.Validation("code", "must not be empty"), http.StatusBadRequest},
		{"not found", apperr.ItemNotFound("LIV001"), http.StatusNotFound},
		{"conflict", apperr.UserAlreadyExists("ana@biblioteca.com"), http.StatusConflict},
		{"invalid operation", apperr.InvalidOperation("item is already borrowed"), http.StatusUnprocessableEntity},
		{"authentication", apperr.Authentication("invalid email or password"), http.StatusUnauthorized},
		{"permission denied", apperr.PermissionDenied("no"), http.StatusForbidden},
		{"internal", apperr.Internal("boom", errors.New("cause")), http.StatusInternalServerError},
		{"foreign error", errors.New("plain"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, httpapi.StatusOf(tt.err))
		})
	}
}

func TestWriteSuccessEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	httpapi.WriteSuccess(rec, http.StatusCreated, map[string]string{"id": "u1"}, "user created")

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body httpapi.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, "user created", body.Message)
	assert.Empty(t, body.Code)
	assert.NotZero(t, body.Timestamp)
}

func TestWriteErrorEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	httpapi.WriteError(rec, apperr.ItemNotFound("LIV001"))

	assert.Equal(t, http.StatusNotFound, rec.Code)

	var body httpapi.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, apperr.CodeItemNotFound, body.Code)
	assert.Equal(t, "item not found: LIV001", body.Message)
	assert.Nil(t, body.Data)
}

func TestWriteErrorHidesInternalCause(t *testing.T) {
	rec := httptest.NewRecorder()
	httpapi.WriteError(rec, apperr.Internal("failed to save item", errors.New("pq: connection refused")))

	var body httpapi.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "failed to save item", body.Message)
	assert.NotContains(t, rec.Body.String(), "connection refused")
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"missing", "", ""},
		{"bearer prefix", "Bearer abc123", "abc123"},
		{"raw token", "abc123", "abc123"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			assert.Equal(t, tt.want, httpapi.BearerToken(r))
		})
	}
}
