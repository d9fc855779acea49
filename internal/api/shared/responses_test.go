package shared

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondWithJSON(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	RespondWithJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"status": "ok"}`, w.Body.String())
}

func TestRespondWithErrorIncludesTraceID(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest(http.MethodPost, "/api/v1/plants/detail", nil)
	r = r.WithContext(SetTraceID(r.Context()))
	w := httptest.NewRecorder()

	RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid request body")
	assert.Contains(t, w.Body.String(), "trace_id")
}

func TestRespondWithErrorAndLogHidesRawError(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest(http.MethodPost, "/api/v1/plants/detail", nil)
	w := httptest.NewRecorder()

	rawErr := errors.New("pq: connection to postgres://user:hunter2@db failed")
	RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Failed to resolve plant details", rawErr)

	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Failed to resolve plant details")
	assert.NotContains(t, w.Body.String(), "hunter2")
	assert.NotContains(t, w.Body.String(), "postgres://")
}

func TestGetTraceIDMissing(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	assert.Empty(t, GetTraceID(r.Context()))
}

func TestSetTraceIDGeneratesUniqueIDs(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	first := GetTraceID(SetTraceID(r.Context()))
	second := GetTraceID(SetTraceID(r.Context()))

	assert.Len(t, first, 32)
	assert.NotEqual(t, first, second)
}
