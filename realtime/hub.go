// Package realtime pushes score and bracket updates to connected pool pages
// over websockets. Clients join a per-tournament room; the server never acts
// on inbound messages.
package realtime

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Event types broadcast to tournament rooms.
const (
	EventScoresUpdated = "SCORES_UPDATED"
	EventRoundAdvanced = "ROUND_ADVANCED"
	EventMatchUpdated  = "MATCH_UPDATED"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

type Message struct {
	Type         string      `json:"type"`
	TournamentID int         `json:"tournament_id"`
	Payload      interface{} `json:"payload,omitempty"`
}

type Client struct {
	hub          *Hub
	conn         *websocket.Conn
	send         chan []byte
	tournamentID int
}

type Hub struct {
	mu     sync.RWMutex
	rooms  map[int]map[*Client]struct{}
	logger *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		rooms:  make(map[int]map[*Client]struct{}),
		logger: logger,
	}
}

// Join registers a freshly upgraded connection into a tournament room and
// starts its pumps.
func (h *Hub) Join(tournamentID int, conn *websocket.Conn) {
	client := &Client{
		hub:          h,
		conn:         conn,
		send:         make(chan []byte, 256),
		tournamentID: tournamentID,
	}

	h.mu.Lock()
	room, ok := h.rooms[tournamentID]
	if !ok {
		room = make(map[*Client]struct{})
		h.rooms[tournamentID] = room
	}
	room[client] = struct{}{}
	h.mu.Unlock()

	go client.writePump()
	go client.readPump()
}

func (h *Hub) remove(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	room, ok := h.rooms[c.tournamentID]
	if !ok {
		return
	}
	if _, member := room[c]; member {
		delete(room, c)
		close(c.send)
		if len(room) == 0 {
			delete(h.rooms, c.tournamentID)
		}
	}
}

// Broadcast sends an event to every client watching the tournament. Slow
// clients are skipped rather than allowed to block the caller.
func (h *Hub) Broadcast(tournamentID int, eventType string, payload interface{}) {
	data, err := json.Marshal(Message{
		Type:         eventType,
		TournamentID: tournamentID,
		Payload:      payload,
	})
	if err != nil {
		h.logger.Error("failed to marshal broadcast message",
			slog.String("event", eventType), slog.Any("error", err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.rooms[tournamentID] {
		select {
		case client.send <- data:
		default:
			h.logger.Warn("dropping broadcast to slow websocket client",
				slog.Int("tournament_id", tournamentID))
		}
	}
}

func (c *Client) readPump() {
	defer func() {
		c.hub.remove(c)
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		// Inbound messages are drained and ignored; the read loop exists to
		// detect disconnects and answer pings.
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case data, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
