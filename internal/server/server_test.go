package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SeamusWaldron/cubesim"
	"github.com/SeamusWaldron/cubesim/internal/telemetry"
)

type envelope struct {
	Type     string         `json:"type"`
	Frame    *cubesim.Frame `json:"frame"`
	Accepted bool           `json:"accepted"`
	Move     string         `json:"move"`
	Error    string         `json:"error"`
}

func newTestServer(t *testing.T, frames int) (*Hub, *httptest.Server, *telemetry.Metrics) {
	t.Helper()
	reg := prometheus.NewRegistry()
	metrics := telemetry.NewMetrics(reg)
	p := cubesim.New(cubesim.WithFramesPerTurn(frames), cubesim.WithObserver(metrics))
	t.Cleanup(func() { p.Close() })

	hub := NewHub(p, nil, metrics)
	srv := httptest.NewServer(NewMux(hub, reg))
	t.Cleanup(srv.Close)
	return hub, srv, metrics
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readUntil(t *testing.T, conn *websocket.Conn, typ string) envelope {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		_, payload, err := conn.ReadMessage()
		require.NoError(t, err)
		var env envelope
		require.NoError(t, json.Unmarshal(payload, &env))
		if env.Type == typ {
			return env
		}
	}
}

func TestInitialFrameIsSolved(t *testing.T) {
	_, srv, _ := newTestServer(t, 2)
	conn := dial(t, srv)

	env := readUntil(t, conn, "frame")
	require.NotNil(t, env.Frame)
	assert.False(t, env.Frame.Active)
	assert.Equal(t, cubesim.SolvedTable(), env.Frame.Table)
}

func TestKeyMessageStartsTurn(t *testing.T) {
	hub, srv, metrics := newTestServer(t, 2)
	conn := dial(t, srv)
	readUntil(t, conn, "frame")

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"key","key":"Q"}`)))
	ack := readUntil(t, conn, "key")
	assert.True(t, ack.Accepted)
	assert.Equal(t, "q'", ack.Move)

	// A second key while the turn animates is dropped.
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"key","key":"w"}`)))
	ack = readUntil(t, conn, "key")
	assert.False(t, ack.Accepted)

	hub.puzzle.Tick()
	hub.BroadcastFrame()
	env := readUntil(t, conn, "frame")
	assert.True(t, env.Frame.Active)
	assert.Equal(t, 1, env.Frame.Elapsed)

	hub.puzzle.Tick()
	hub.BroadcastFrame()
	env = readUntil(t, conn, "frame")
	assert.False(t, env.Frame.Active)
	assert.NotEqual(t, cubesim.SolvedTable(), env.Frame.Table)

	require.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Clients))
}

func TestBadMessages(t *testing.T) {
	_, srv, _ := newTestServer(t, 2)
	conn := dial(t, srv)
	readUntil(t, conn, "frame")

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"key","key":"p"}`)))
	ack := readUntil(t, conn, "key")
	assert.False(t, ack.Accepted)
	assert.NotEmpty(t, ack.Error)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`not json`)))
	env := readUntil(t, conn, "error")
	assert.Equal(t, "malformed message", env.Error)
}

func TestReplayMessage(t *testing.T) {
	hub, srv, _ := newTestServer(t, 1)
	conn := dial(t, srv)
	readUntil(t, conn, "frame")

	require.True(t, hub.puzzle.SubmitKey(cubesim.FaceD, false))
	hub.puzzle.Tick()

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"replay"}`)))
	ack := readUntil(t, conn, "replay")
	assert.True(t, ack.Accepted)

	require.Eventually(t, func() bool {
		hub.puzzle.Tick()
		return !hub.puzzle.Busy()
	}, 5*time.Second, time.Millisecond)
	table := hub.puzzle.Table()
	assert.True(t, table.IsSolved())
}

func TestHealthAndMetrics(t *testing.T) {
	_, srv, _ := newTestServer(t, 2)

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var health map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	assert.Equal(t, "ok", health["status"])

	resp2, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp2.Body.Close()
	body, err := io.ReadAll(resp2.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "cubesim_solved")
}

func TestBroadcastSkipsUnchangedIdleFrames(t *testing.T) {
	hub, _, _ := newTestServer(t, 2)
	c := &client{send: make(chan []byte, 4)}
	hub.mu.Lock()
	hub.clients[c] = struct{}{}
	hub.mu.Unlock()

	hub.BroadcastFrame()
	hub.BroadcastFrame()
	assert.Len(t, c.send, 1)
}
