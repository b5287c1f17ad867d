package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/telhawk-systems/eventpipe/common/models"
)

func alertEnvelope(t *testing.T) *models.Envelope {
	t.Helper()
	env, err := models.NewEnvelope(map[string]any{
		"event_type": "security_alert",
		"source":     "ids",
		"severity":   "critical",
		"message":    "brute force attempt",
	})
	require.NoError(t, err)
	return env
}

func TestWebhookChannel_Send(t *testing.T) {
	var received map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	ch := NewWebhookChannel(srv.URL, 5*time.Second)
	assert.Equal(t, "webhook", ch.Type())

	require.NoError(t, ch.Send(context.Background(), alertEnvelope(t)))
	assert.Equal(t, "security_alert", received["event_type"])
	assert.Equal(t, "critical", received["severity"])
	assert.Equal(t, "brute force attempt", received["message"])
}

func TestWebhookChannel_SendNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	ch := NewWebhookChannel(srv.URL, 5*time.Second)
	err := ch.Send(context.Background(), alertEnvelope(t))
	assert.ErrorContains(t, err, "502")
}

func TestWebhookChannel_SendUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	ch := NewWebhookChannel(srv.URL, time.Second)
	assert.Error(t, ch.Send(context.Background(), alertEnvelope(t)))
}

func TestLogChannel_Send(t *testing.T) {
	ch := &LogChannel{}
	assert.Equal(t, "log", ch.Type())
	assert.NoError(t, ch.Send(context.Background(), alertEnvelope(t)))
}
