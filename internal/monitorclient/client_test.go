package monitorclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCapturePostsRecord(t *testing.T) {
	var got Record
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := New(srv.URL)
	err := client.Capture(context.Background(), Record{
		Sender:    "alice",
		SenderID:  1,
		ChatID:    3,
		Text:      "hi",
		Encrypted: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "/api/log", path)
	assert.Equal(t, "alice", got.Sender)
	assert.Equal(t, int64(3), got.ChatID)
	assert.True(t, got.Encrypted)
}

func TestCaptureNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := New(srv.URL)
	err := client.Capture(context.Background(), Record{Sender: "alice", Text: "hi"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}

func TestCaptureDisabledClient(t *testing.T) {
	client := New("")
	require.NoError(t, client.Capture(context.Background(), Record{Sender: "alice", Text: "hi"}))
}

func TestCaptureUnreachableMonitor(t *testing.T) {
	client := New("http://127.0.0.1:1")
	require.Error(t, client.Capture(context.Background(), Record{Sender: "alice", Text: "hi"}))
}
