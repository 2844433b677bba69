package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/guessbets/guessbets/internal/game"
	"github.com/guessbets/guessbets/internal/questions"
	"github.com/guessbets/guessbets/internal/randutil"
)

const readTimeout = 2 * time.Second

// newTestServer spins up a full server on an httptest listener. Connections
// made with dial speak the real WebSocket protocol end to end.
func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()

	logger := zerolog.Nop()
	bank, err := questions.Load()
	require.NoError(t, err)

	store := game.NewStore(logger, quartz.NewReal())
	engine := game.NewEngine(logger, bank, randutil.New(42), game.DefaultConfig())

	s := NewServer(logger, store, engine)
	go s.run()

	ts := httptest.NewServer(http.HandlerFunc(s.handleWebSocket))
	t.Cleanup(func() {
		ts.Close()
		_ = s.Shutdown(context.Background())
	})
	return s, ts
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(ts.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, msgType MessageType, data interface{}) {
	t.Helper()

	msg, err := NewMessage(msgType, data)
	require.NoError(t, err)
	require.NoError(t, conn.WriteJSON(msg))
}

// waitFor reads frames until one of the wanted type arrives, skipping
// unrelated broadcasts along the way
func waitFor(t *testing.T, conn *websocket.Conn, msgType MessageType) *Message {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(readTimeout)))
	for {
		var msg Message
		err := conn.ReadJSON(&msg)
		require.NoError(t, err, "waiting for %s", msgType)
		if msg.Type == msgType {
			return &msg
		}
	}
}

func decodeData[T any](t *testing.T, msg *Message) T {
	t.Helper()

	var data T
	require.NoError(t, json.Unmarshal(msg.Data, &data))
	return data
}
