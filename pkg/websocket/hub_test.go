package websocket

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dial(t *testing.T, srv *httptest.Server, header http.Header) (*websocket.Conn, *http.Response, error) {
	t.Helper()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	return websocket.DefaultDialer.Dial(url, header)
}

func TestHubBroadcast(t *testing.T) {
	hub := NewHub(&HubConfig{})
	srv := httptest.NewServer(hub)
	defer srv.Close()
	defer hub.Close()

	conns := make([]*websocket.Conn, 2)
	for i := range conns {
		conn, _, err := dial(t, srv, nil)
		require.NoError(t, err)
		defer conn.Close()
		conns[i] = conn
	}

	require.Eventually(t, func() bool { return hub.ClientCount() == 2 }, time.Second, 5*time.Millisecond)

	hub.Broadcast("opportunity", map[string]any{"market": "1X2", "profitPercent": 6.94})

	for _, conn := range conns {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		_, payload, err := conn.ReadMessage()
		require.NoError(t, err)

		var msg struct {
			Type      string         `json:"type"`
			Data      map[string]any `json:"data"`
			Timestamp time.Time      `json:"timestamp"`
		}
		require.NoError(t, json.Unmarshal(payload, &msg))
		assert.Equal(t, "opportunity", msg.Type)
		assert.Equal(t, "1X2", msg.Data["market"])
		assert.False(t, msg.Timestamp.IsZero())
	}
}

func TestHubClientDisconnect(t *testing.T) {
	hub := NewHub(&HubConfig{})
	srv := httptest.NewServer(hub)
	defer srv.Close()
	defer hub.Close()

	conn, _, err := dial(t, srv, nil)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return hub.ClientCount() == 0 }, 2*time.Second, 5*time.Millisecond)

	// Broadcasting with nobody connected is a no-op.
	hub.Broadcast("opportunity", nil)
}

func TestHubCloseDisconnectsClients(t *testing.T) {
	hub := NewHub(&HubConfig{})
	srv := httptest.NewServer(hub)
	defer srv.Close()

	conn, _, err := dial(t, srv, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, hub.Close())
	assert.Equal(t, 0, hub.ClientCount())

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err = conn.ReadMessage()
	assert.Error(t, err)

	require.NoError(t, hub.Close())
}

func TestHubRejectsAfterClose(t *testing.T) {
	hub := NewHub(&HubConfig{})
	require.NoError(t, hub.Close())

	srv := httptest.NewServer(hub)
	defer srv.Close()

	conn, _, err := dial(t, srv, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err = conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway))
	assert.Equal(t, 0, hub.ClientCount())
}

func TestHubOriginCheck(t *testing.T) {
	tests := []struct {
		name    string
		allowed []string
		origin  string
		wantOK  bool
	}{
		{name: "any-origin-by-default", origin: "https://evil.example", wantOK: true},
		{name: "wildcard", allowed: []string{"*"}, origin: "https://evil.example", wantOK: true},
		{name: "allowed-origin", allowed: []string{"https://app.example"}, origin: "https://app.example", wantOK: true},
		{name: "rejected-origin", allowed: []string{"https://app.example"}, origin: "https://evil.example"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hub := NewHub(&HubConfig{AllowedOrigins: tt.allowed})
			srv := httptest.NewServer(hub)
			defer srv.Close()
			defer hub.Close()

			header := http.Header{}
			header.Set("Origin", tt.origin)

			conn, resp, err := dial(t, srv, header)
			if tt.wantOK {
				require.NoError(t, err)
				conn.Close()
				return
			}

			require.Error(t, err)
			require.NotNil(t, resp)
			assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		})
	}
}
