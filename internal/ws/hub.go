package ws

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/breakshot/backend/internal/metrics"
	"github.com/breakshot/backend/internal/models"
)

// Hub maintains the set of active clients per room and fans events out to
// them. Delivery is best-effort: a client whose send buffer is full misses
// the message, everyone else still gets it.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[*Client]struct{}
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{rooms: make(map[string]map[*Client]struct{})}
}

// Subscribe registers a client under its room. A second connection for the
// same player in the same room replaces the first.
func (h *Hub) Subscribe(client *Client) {
	h.mu.Lock()
	room, ok := h.rooms[client.roomID]
	if !ok {
		room = make(map[*Client]struct{})
		h.rooms[client.roomID] = room
	}

	var replaced *Client
	for c := range room {
		if c.playerID == client.playerID {
			replaced = c
			break
		}
	}
	if replaced != nil {
		delete(room, replaced)
	}
	room[client] = struct{}{}
	h.mu.Unlock()

	if replaced != nil {
		log.Printf("[WS] Player %s reconnecting to room %s - closing old connection", client.playerID, client.roomID)
		replaced.shutdown("replaced by new connection")
	} else {
		metrics.ActiveConnections.Inc()
	}
	log.Printf("[WS] Player %s connected to room %s", client.playerID, client.roomID)
}

// Unsubscribe removes a client. Safe to call for a client that was already
// removed (e.g. replaced by a reconnect).
func (h *Hub) Unsubscribe(client *Client) {
	h.mu.Lock()
	room, ok := h.rooms[client.roomID]
	if ok {
		if _, member := room[client]; !member {
			ok = false
		} else {
			delete(room, client)
			if len(room) == 0 {
				delete(h.rooms, client.roomID)
			}
		}
	}
	h.mu.Unlock()

	if !ok {
		return
	}
	metrics.ActiveConnections.Dec()
	client.closeSend()
	log.Printf("[WS] Player %s disconnected from room %s", client.playerID, client.roomID)
}

// Publish sends an event to every subscriber of a room, in call order.
func (h *Hub) Publish(roomID string, event models.Event) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("[WS] Error marshaling %s event for room %s: %v", event.Type, roomID, err)
		return
	}
	metrics.EventsPublished.WithLabelValues(string(event.Type)).Inc()

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.rooms[roomID] {
		if !client.trySend(data) {
			metrics.DroppedMessages.Inc()
			log.Printf("[WS] Send buffer full for player %s in room %s, dropping message", client.playerID, roomID)
		}
	}
}

// shutdown closes the peer with a close frame and tears the connection down.
func (c *Client) shutdown(reason string) {
	if c.conn != nil {
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, reason)
		if err := c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(5*time.Second)); err != nil {
			log.Printf("[WS] Error writing close control to player %s: %v", c.playerID, err)
		}
		c.conn.Close()
	}
	c.closeSend()
}

func (c *Client) closeSend() {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}
