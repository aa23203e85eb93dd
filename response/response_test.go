package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"shop-api/services"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestJSONAddsSuccess(t *testing.T) {
	rec := httptest.NewRecorder()
	Created(rec, Fields{"token": "abc"})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "abc", body["token"])
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		err    error
		status int
		msg    string
	}{
		{services.Validation("Name is required"), http.StatusBadRequest, "Name is required"},
		{services.Conflict("User already exists"), http.StatusBadRequest, "User already exists"},
		{services.InvalidTransition("Cannot cancel a delivered order"), http.StatusBadRequest, "Cannot cancel a delivered order"},
		{services.Unauthenticated("Invalid email or password"), http.StatusUnauthorized, "Invalid email or password"},
		{services.Forbidden("Admins only"), http.StatusForbidden, "Admins only"},
		{services.NotFound("Order not found"), http.StatusNotFound, "Order not found"},
		{services.RateLimited("Too many requests"), http.StatusTooManyRequests, "Too many requests"},
		{services.Internal(errors.New("socket closed")), http.StatusInternalServerError, "Server error"},
		{errors.New("raw"), http.StatusInternalServerError, "Server error"},
	}
	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			rec := httptest.NewRecorder()
			Error(rec, httptest.NewRequest(http.MethodGet, "/", nil), tt.err)

			assert.Equal(t, tt.status, rec.Code)
			body := decode(t, rec)
			assert.Equal(t, false, body["success"])
			assert.Equal(t, tt.msg, body["error"])
		})
	}
}
