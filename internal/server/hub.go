// Package server streams puzzle frames to websocket renderers and accepts
// their key and replay input.
package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/SeamusWaldron/cubesim"
	"github.com/SeamusWaldron/cubesim/internal/telemetry"
)

const (
	sendBuffer   = 64
	writeTimeout = 5 * time.Second
)

// Outgoing message envelopes.
type frameMessage struct {
	Type  string         `json:"type"`
	Frame *cubesim.Frame `json:"frame"`
}

type ackMessage struct {
	Type     string `json:"type"`
	Accepted bool   `json:"accepted"`
	Move     string `json:"move,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Incoming messages: {"type":"key","key":"Q"} or {"type":"replay"}.
type clientMessage struct {
	Type string `json:"type"`
	Key  string `json:"key"`
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub owns the set of connected renderers and drives the puzzle's frame
// loop.
type Hub struct {
	puzzle  *cubesim.Puzzle
	logger  *slog.Logger
	metrics *telemetry.Metrics

	mu      sync.Mutex
	clients map[*client]struct{}
	last    cubesim.Frame
	sent    bool
}

// NewHub creates a hub for p. logger and metrics may be nil.
func NewHub(p *cubesim.Puzzle, logger *slog.Logger, metrics *telemetry.Metrics) *Hub {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Hub{
		puzzle:  p,
		logger:  logger,
		metrics: metrics,
		clients: make(map[*client]struct{}),
	}
}

// Clients returns the number of connected renderers.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Run ticks the puzzle every interval and broadcasts each frame that
// differs from the last one sent. It returns when ctx is done.
func (h *Hub) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return ctx.Err()
		case <-ticker.C:
			h.puzzle.Tick()
			h.BroadcastFrame()
		}
	}
}

// BroadcastFrame sends the current frame to every client unless nothing
// has changed since the previous broadcast.
func (h *Hub) BroadcastFrame() {
	f := h.puzzle.Frame()

	h.mu.Lock()
	if h.sent && unchanged(&h.last, &f) {
		h.mu.Unlock()
		return
	}
	h.last = f
	h.sent = true
	h.mu.Unlock()

	data, err := json.Marshal(frameMessage{Type: "frame", Frame: &f})
	if err != nil {
		h.logger.Error("failed to marshal frame", "error", err)
		return
	}
	h.broadcast(data)
}

func unchanged(prev, next *cubesim.Frame) bool {
	return !prev.Active && !next.Active &&
		prev.Replaying == next.Replaying &&
		prev.Pending == next.Pending &&
		prev.Table == next.Table
}

func (h *Hub) broadcast(data []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			// Slow renderer: skip the frame rather than stall the loop.
			h.logger.Debug("dropping frame for slow client", "remote", c.conn.RemoteAddr().String())
		}
	}
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()

	if h.metrics != nil {
		h.metrics.Clients.Set(float64(n))
	}
	h.logger.Info("renderer connected", "remote", c.conn.RemoteAddr().String(), "clients", n)
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, c)
	close(c.send)
	n := len(h.clients)
	h.mu.Unlock()

	if h.metrics != nil {
		h.metrics.Clients.Set(float64(n))
	}
	h.logger.Info("renderer disconnected", "remote", c.conn.RemoteAddr().String(), "clients", n)
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		h.unregister(c)
	}
}

// handle applies one client message and returns the reply, if any.
func (h *Hub) handle(payload []byte) *ackMessage {
	var msg clientMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return &ackMessage{Type: "error", Error: "malformed message"}
	}

	switch msg.Type {
	case "key":
		runes := []rune(msg.Key)
		if len(runes) != 1 {
			return &ackMessage{Type: "key", Error: "key must be a single character"}
		}
		m, err := cubesim.ParseKey(runes[0])
		if err != nil {
			return &ackMessage{Type: "key", Error: err.Error()}
		}
		ok := h.puzzle.Submit(m, cubesim.SourceLive)
		return &ackMessage{Type: "key", Accepted: ok, Move: m.Notation()}

	case "replay":
		return &ackMessage{Type: "replay", Accepted: h.puzzle.RequestReplay()}

	default:
		return &ackMessage{Type: "error", Error: "unknown message type"}
	}
}
