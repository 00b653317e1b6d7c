package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// NewMux routes /ws to the hub, /metrics to gatherer and /healthz to a
// liveness check.
func NewMux(h *Hub, gatherer prometheus.Gatherer) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", h.ServeWS)
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"status":    "ok",
			"clients":   h.Clients(),
			"replaying": h.puzzle.Replaying(),
		})
	})
	return mux
}

// ServeWS upgrades the connection, sends the current frame, then reads
// input until the client goes away.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}

	f := h.puzzle.Frame()
	if data, err := json.Marshal(frameMessage{Type: "frame", Frame: &f}); err == nil {
		c.send <- data
	}
	h.register(c)

	go h.writeLoop(c)
	h.readLoop(c)
}

func (h *Hub) readLoop(c *client) {
	defer h.unregister(c)

	for {
		_, payload, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		reply := h.handle(payload)
		if reply == nil {
			continue
		}
		data, err := json.Marshal(reply)
		if err != nil {
			h.logger.Error("failed to marshal reply", "error", err)
			continue
		}

		h.mu.Lock()
		if _, ok := h.clients[c]; ok {
			select {
			case c.send <- data:
			default:
			}
		}
		h.mu.Unlock()
	}
}

func (h *Hub) writeLoop(c *client) {
	defer c.conn.Close()

	for data := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.logger.Debug("websocket write failed", "error", err)
			// Unblock the reader; it unregisters and closes send.
			c.conn.Close()
			for range c.send {
			}
			return
		}
	}

	c.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}
