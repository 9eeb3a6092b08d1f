package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

// Event is a run lifecycle notification pushed to websocket subscribers.
type Event struct {
	Type      string    `json:"type"` // "run_started" or "run_finished"
	Owner     string    `json:"owner"`
	Repo      string    `json:"repo"`
	Number    int       `json:"number"`
	Trigger   string    `json:"trigger"`
	Outcome   string    `json:"outcome,omitempty"`
	Branch    string    `json:"branch,omitempty"`
	PRURL     string    `json:"pr_url,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Hub broadcasts run events to connected websocket clients. Each write is
// bounded by writeTimeout; a subscriber that stops reading is disconnected
// on the first write that times out, so a broadcast never stalls dispatch.
type Hub struct {
	mu           sync.RWMutex
	clients      map[string]*hubClient
	nextID       int
	writeTimeout time.Duration
}

type hubClient struct {
	conn *websocket.Conn
	ctx  context.Context
	mu   sync.Mutex // serializes writes
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{
		clients:      make(map[string]*hubClient),
		writeTimeout: 5 * time.Second,
	}
}

// HandleWS is the HTTP handler for GET /events.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		slog.Warn("websocket accept failed", "error", err)
		return
	}

	ctx := r.Context()
	h.mu.Lock()
	h.nextID++
	id := fmt.Sprintf("client-%d", h.nextID)
	client := &hubClient{conn: c, ctx: ctx}
	h.clients[id] = client
	h.mu.Unlock()

	slog.Info("event subscriber connected", "id", id, "remote", r.RemoteAddr)

	// Block until the client goes away; subscribers never send anything
	// meaningful, so the read loop only exists to notice disconnects.
	for {
		if _, _, err := c.Read(ctx); err != nil {
			break
		}
	}

	h.mu.Lock()
	delete(h.clients, id)
	h.mu.Unlock()
	c.Close(websocket.StatusNormalClosure, "")
	slog.Info("event subscriber disconnected", "id", id)
}

// Publish sends an event to every connected client. A write that fails or
// exceeds the hub's write timeout disconnects that client; publishing never
// blocks on a subscriber that stopped reading.
func (h *Hub) Publish(ev Event) {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now().UTC()
	}

	h.mu.RLock()
	clients := make(map[string]*hubClient, len(h.clients))
	for id, c := range h.clients {
		clients[id] = c
	}
	h.mu.RUnlock()

	var stalled []string
	for id, c := range clients {
		c.mu.Lock()
		ctx, cancel := context.WithTimeout(c.ctx, h.writeTimeout)
		err := wsjson.Write(ctx, c.conn, ev)
		cancel()
		c.mu.Unlock()
		if err != nil {
			stalled = append(stalled, id)
		}
	}

	for _, id := range stalled {
		h.drop(id)
	}
}

// drop deregisters and closes a client whose write failed or timed out.
func (h *Hub) drop(id string) {
	h.mu.Lock()
	c, ok := h.clients[id]
	if ok {
		delete(h.clients, id)
	}
	h.mu.Unlock()

	if ok {
		c.conn.Close(websocket.StatusPolicyViolation, "write timeout")
		slog.Warn("dropped stalled event subscriber", "id", id)
	}
}
