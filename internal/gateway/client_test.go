package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timmy/sentencebot/internal/domain"
)

func TestGetContacts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/contacts", r.URL.Path)
		assert.Equal(t, "Bearer token", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"contacts":[{"id":"1@c.us","name":"Maria","is_my_contact":true},{"id":"g@g.us","name":"Family","is_group":true}]}`))
	}))
	defer srv.Close()

	client, err := NewClient(&Config{BaseURL: srv.URL, APIKey: "token"})
	require.NoError(t, err)

	contacts, err := client.GetContacts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []domain.Contact{
		{ID: "1@c.us", Name: "Maria", IsMyContact: true},
		{ID: "g@g.us", Name: "Family", IsGroup: true},
	}, contacts)
}

func TestGetContactsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"error":"session not ready"}`))
	}))
	defer srv.Close()

	client, err := NewClient(&Config{BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = client.GetContacts(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "session not ready")
}

func TestReply(t *testing.T) {
	var got mediaRequest
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	client, err := NewClient(&Config{BaseURL: srv.URL})
	require.NoError(t, err)

	event := domain.MessageEvent{ID: "m1", SenderID: "1@c.us", Chat: domain.Chat{ID: "g@g.us"}}
	media := domain.NewEncodedImage(domain.MimeTypePNG, []byte{1, 2, 3})
	require.NoError(t, client.Reply(context.Background(), event, media))

	assert.Equal(t, "/messages/g@g.us/media", path)
	assert.Equal(t, "m1", got.ReplyTo)
	assert.Equal(t, "image/png", got.MimeType)
	assert.Equal(t, media.Payload, got.Data)
}

func TestNewClientRequiresBaseURL(t *testing.T) {
	_, err := NewClient(&Config{})
	assert.Error(t, err)
}

func TestGetContactsRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"error":"warming up"}`))
			return
		}
		w.Write([]byte(`{"contacts":[{"id":"1@c.us","name":"Maria","is_my_contact":true}]}`))
	}))
	defer srv.Close()

	client, err := NewClient(&Config{BaseURL: srv.URL, RetryCount: 2, RetryWaitTime: 10 * time.Millisecond})
	require.NoError(t, err)

	contacts, err := client.GetContacts(context.Background())
	require.NoError(t, err)
	assert.Len(t, contacts, 1)
	assert.Equal(t, int32(2), calls.Load())
}

func TestReplyIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`{"error":"upstream timeout"}`))
	}))
	defer srv.Close()

	client, err := NewClient(&Config{BaseURL: srv.URL, RetryCount: 3, RetryWaitTime: 10 * time.Millisecond})
	require.NoError(t, err)

	event := domain.MessageEvent{ID: "m1", SenderID: "1@c.us"}
	err = client.Reply(context.Background(), event, domain.NewEncodedImage(domain.MimeTypePNG, []byte{1}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upstream timeout")
	assert.Equal(t, int32(1), calls.Load(), "a media send reaches the gateway exactly once")
}
