package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakura24999/data-analysis-dashboard/internal/config"
	"github.com/sakura24999/data-analysis-dashboard/internal/session"
	ws "github.com/sakura24999/data-analysis-dashboard/internal/websocket"
	"github.com/sakura24999/data-analysis-dashboard/pkg/contracts/events"
)

func TestWebSocketHandler_CheckOrigin(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := NewWebSocketHandler(nil, config.WebSocketConfig{}, []string{"http://localhost:3000"}, logger)

	tests := []struct {
		name   string
		origin string
		host   string
		want   bool
	}{
		{"no origin", "", "localhost:8501", true},
		{"same origin", "http://localhost:8501", "localhost:8501", true},
		{"allowed origin", "http://localhost:3000", "localhost:8501", true},
		{"foreign origin", "http://evil.example", "localhost:8501", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/ws", nil)
			r.Host = tt.host
			if tt.origin != "" {
				r.Header.Set("Origin", tt.origin)
			}
			assert.Equal(t, tt.want, h.checkOrigin(r))
		})
	}
}

func TestWebSocketHandler_SessionEvents(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := config.Default()

	hub := ws.NewHub(logger, nil)
	hub.Start()
	defer hub.Stop()

	store := session.NewStore(cfg.Session)
	sess := store.Create()

	r := chi.NewRouter()
	r.With(SessionMiddleware(store, cfg.Session, logger)).
		Handle("/ws", NewWebSocketHandler(hub, cfg.WebSocket, nil, logger))
	srv := httptest.NewServer(r)
	defer srv.Close()

	header := http.Header{}
	header.Set("Cookie", cfg.Session.CookieName+"="+sess.ID)
	conn, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", header)
	require.NoError(t, err)
	defer conn.Close()
	defer resp.Body.Close()

	read := func() events.WebSocketMessage {
		t.Helper()
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)
		var msg events.WebSocketMessage
		require.NoError(t, json.Unmarshal(data, &msg))
		return msg
	}

	connected := read()
	assert.Equal(t, events.MessageTypeConnect, connected.Type)

	hub.Publish(context.Background(), "other-session", events.MessageTypeDatasetUpdated, events.DatasetUpdated{Rows: 1})
	hub.Publish(context.Background(), sess.ID, events.MessageTypeDatasetUpdated, events.DatasetUpdated{Reason: events.ReasonLoaded, Rows: 365})

	msg := read()
	assert.Equal(t, events.MessageTypeDatasetUpdated, msg.Type)
	assert.Contains(t, string(mustJSON(t, msg.Data)), `"rows":365`)
}

func mustJSON(t *testing.T, v interface{}) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}
