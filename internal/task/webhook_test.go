package task

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verdantlabs/flora-api/internal/config"
)

func TestWebhookNotifyTaskPostsPayload(t *testing.T) {
	var received WebhookPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	payload := WebhookPayload{Species: "Rosa canina", Locales: []string{"fr", "en"}, ImageCount: 3}
	task := NewWebhookNotifyTask(logger, config.WebhookConfig{URL: srv.URL, TimeoutSeconds: 2}, payload)

	assert.Equal(t, TaskTypeWebhookNotify, task.Type())
	assert.NotEqual(t, "00000000-0000-0000-0000-000000000000", task.ID().String())

	require.NoError(t, task.Execute(context.Background()))
	assert.Equal(t, payload, received)
}

func TestWebhookNotifyTaskNonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	task := NewWebhookNotifyTask(logger, config.WebhookConfig{URL: srv.URL}, WebhookPayload{Species: "Rosa canina"})

	err := task.Execute(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestWebhookNotifyTaskUnreachableEndpoint(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	task := NewWebhookNotifyTask(logger,
		config.WebhookConfig{URL: "http://127.0.0.1:1", TimeoutSeconds: 1},
		WebhookPayload{Species: "Rosa canina"})

	assert.Error(t, task.Execute(context.Background()))
}
