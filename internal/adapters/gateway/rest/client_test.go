package rest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bnema/qrchat-cli/internal/domain"
	"github.com/bnema/qrchat-cli/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(Options{BaseURL: server.URL, HTTPClient: server.Client(), RequestTimeout: time.Second})
	require.NoError(t, err)
	return client
}

func TestListRoomsPreservesServerOrder(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/rooms", r.URL.Path)
		assert.NotEmpty(t, r.Header.Get(requestIDHeader))
		_, _ = w.Write([]byte(`[{"id":"r2","name":"Ops","users":1,"messages":0},{"id":"r1","name":"Team","users":3,"messages":12}]`))
	})

	rooms, err := client.ListRooms(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []domain.RoomSummary{
		{ID: "r2", Name: "Ops", UserCount: 1, MessageCount: 0},
		{ID: "r1", Name: "Team", UserCount: 3, MessageCount: 12},
	}, rooms)
}

func TestListMessagesAndPresence(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/rooms/r1/messages":
			_, _ = w.Write([]byte(`[{"userId":"u2","name":"Bora","text":"second"},{"userId":"u1","name":"Ayşe","text":"first"}]`))
		case "/rooms/r1/users":
			_, _ = w.Write([]byte(`{"u1":{"name":"Ayşe"},"u2":{"name":"Bora"}}`))
		default:
			http.NotFound(w, r)
		}
	})

	messages, err := client.ListMessages(context.Background(), "r1")
	require.NoError(t, err)
	assert.Equal(t, []domain.Message{
		{SenderID: "u2", SenderName: "Bora", Text: "second"},
		{SenderID: "u1", SenderName: "Ayşe", Text: "first"},
	}, messages)

	presence, err := client.ListPresence(context.Background(), "r1")
	require.NoError(t, err)
	assert.Equal(t, domain.Presence{"u1": {DisplayName: "Ayşe"}, "u2": {DisplayName: "Bora"}}, presence)
}

func TestJoinCreateSendsNullRoomID(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/join-room", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Ayşe", body["name"])
		assert.Contains(t, body, "roomId")
		assert.Nil(t, body["roomId"])
		assert.Equal(t, "Team", body["roomName"])

		_, _ = w.Write([]byte(`{"userId":"u1","roomId":"r1","roomName":"Team"}`))
	})

	result, err := client.Join(context.Background(), ports.JoinRequest{DisplayName: "Ayşe", RoomName: "Team"})
	require.NoError(t, err)
	assert.Equal(t, ports.JoinResult{SelfID: "u1", RoomID: "r1", RoomName: "Team"}, result)
}

func TestJoinExistingRoomUsesServerRoomName(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "r7", body["roomId"])
		assert.Nil(t, body["roomName"])

		_, _ = w.Write([]byte(`{"userId":"u9","roomId":"r7","roomName":"Lobby"}`))
	})

	result, err := client.Join(context.Background(), ports.JoinRequest{DisplayName: "Ayşe", RoomID: "r7"})
	require.NoError(t, err)
	assert.Equal(t, "Lobby", result.RoomName)
	assert.Equal(t, domain.UserID("u9"), result.SelfID)
}

func TestJoinRejectsIncompleteResponse(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"roomId":"r1"}`))
	})

	_, err := client.Join(context.Background(), ports.JoinRequest{DisplayName: "Ayşe", RoomID: "r1"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrTransport))
}

func TestPostMessageLeaveAndCloseBodies(t *testing.T) {
	t.Parallel()

	type call struct {
		path string
		body string
	}
	calls := make(chan call, 3)

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		data, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		calls <- call{path: r.URL.Path, body: string(data)}
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, client.PostMessage(context.Background(), "r1", "u1", "merhaba"))
	require.NoError(t, client.Leave(context.Background(), "r1", "u2"))
	require.NoError(t, client.CloseRoom(context.Background(), "r1"))

	first := <-calls
	assert.Equal(t, "/rooms/r1/message", first.path)
	assert.JSONEq(t, `{"userId":"u1","text":"merhaba"}`, first.body)

	second := <-calls
	assert.Equal(t, "/rooms/r1/leave", second.path)
	assert.JSONEq(t, `{"userId":"u2"}`, second.body)

	third := <-calls
	assert.Equal(t, "/rooms/r1/close", third.path)
	assert.Empty(t, third.body)
}

func TestRoomIDIsPathEscaped(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rooms/a%2Fb/messages", r.URL.EscapedPath())
		_, _ = w.Write([]byte(`[]`))
	})

	messages, err := client.ListMessages(context.Background(), "a/b")
	require.NoError(t, err)
	assert.Empty(t, messages)
}

func TestErrorsMapToTransportError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		handler    http.HandlerFunc
		wantStatus int
	}{
		{
			name: "non success status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
			wantStatus: http.StatusInternalServerError,
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{not json`))
			},
			wantStatus: http.StatusOK,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			client := newTestClient(t, tc.handler)

			_, err := client.ListRooms(context.Background())
			require.Error(t, err)

			var te *domain.TransportError
			require.True(t, errors.As(err, &te))
			assert.Equal(t, opListRooms, te.Op)
			assert.Equal(t, tc.wantStatus, te.Status)
		})
	}
}

func TestRequestTimeoutIsTransportError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(500 * time.Millisecond):
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(server.Close)

	client, err := NewClient(Options{BaseURL: server.URL, HTTPClient: server.Client(), RequestTimeout: 20 * time.Millisecond})
	require.NoError(t, err)

	_, err = client.ListPresence(context.Background(), "r1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrTransport))
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestUnreachableServerIsTransportError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.NotFoundHandler())
	baseURL := server.URL
	server.Close()

	client, err := NewClient(Options{BaseURL: baseURL, RequestTimeout: time.Second})
	require.NoError(t, err)

	err = client.CloseRoom(context.Background(), "r1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrTransport))
}

func TestNewClientValidatesBaseURL(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"", "ftp://example.com", "http://", "://bad"} {
		_, err := NewClient(Options{BaseURL: raw})
		assert.Error(t, err, "base url %q", raw)
	}
}

func TestBaseURLWithPathPrefix(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/rooms", r.URL.Path)
		_, _ = w.Write([]byte(`[]`))
	}))
	t.Cleanup(server.Close)

	client, err := NewClient(Options{BaseURL: server.URL + "/api", HTTPClient: server.Client()})
	require.NoError(t, err)

	_, err = client.ListRooms(context.Background())
	require.NoError(t, err)
}
