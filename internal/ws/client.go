package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/breakshot/backend/internal/models"
	"github.com/breakshot/backend/internal/room"
	"github.com/breakshot/backend/internal/store"
)

// Client is one websocket connection, bound to exactly one room.
type Client struct {
	hub      *Hub
	conn     *websocket.Conn
	coord    *room.Coordinator
	roomID   string
	playerID string

	// sendMu guards closed. Once closed is set the send channel is closed
	// and no goroutine may send on it; readPump can still be routing a
	// message for a connection the hub already replaced.
	sendMu sync.Mutex
	closed bool
	send   chan []byte
}

func newClient(hub *Hub, conn *websocket.Conn, coord *room.Coordinator, roomID, playerID string) *Client {
	return &Client{
		hub:      hub,
		conn:     conn,
		coord:    coord,
		roomID:   roomID,
		playerID: playerID,
		send:     make(chan []byte, 256),
	}
}

// Message is the inbound client message envelope.
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// writePump writes outbound messages and pings to the connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				// Channel closed, connection is being replaced or cleaned up.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Printf("[WS] Write error for player %s: %v", c.playerID, err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Printf("[WS] Ping error for player %s: %v", c.playerID, err)
				return
			}
		}
	}
}

// readPump reads inbound messages until the connection drops.
func (c *Client) readPump() {
	defer func() {
		c.hub.Unsubscribe(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(65536)
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				log.Printf("[WS] Read error for player %s: %v", c.playerID, err)
			}
			break
		}

		var msg Message
		if err := json.Unmarshal(message, &msg); err != nil {
			log.Printf("[WS] Malformed message from player %s: %v", c.playerID, err)
			continue
		}
		c.handleMessage(msg)
	}
}

// Inbound payload shapes, one per message type.
type shootPayload struct {
	Power float64 `json:"power"`
	Angle float64 `json:"angle"`
}

type aimPayload struct {
	CuePosition models.CuePosition `json:"cuePosition"`
}

type powerChangePayload struct {
	Power int `json:"power"`
}

// handleMessage routes one inbound message. Unrecognized types are ignored
// and the connection stays open.
func (c *Client) handleMessage(msg Message) {
	ctx := context.Background()

	switch msg.Type {
	case "shoot":
		var data shootPayload
		if err := json.Unmarshal(msg.Payload, &data); err != nil {
			log.Printf("[WS] Malformed shoot payload from player %s: %v", c.playerID, err)
			c.sendError("invalid shot data")
			return
		}
		if _, err := c.coord.Shoot(ctx, c.roomID, c.playerID, data.Power, data.Angle); err != nil {
			c.sendError(shotErrorMessage(err))
		}

	case "aim":
		var data aimPayload
		if err := json.Unmarshal(msg.Payload, &data); err != nil {
			log.Printf("[WS] Malformed aim payload from player %s: %v", c.playerID, err)
			c.sendError("invalid aim data")
			return
		}
		if err := c.coord.Aim(ctx, c.roomID, data.CuePosition); err != nil {
			c.sendError(shotErrorMessage(err))
		}

	case "powerChange":
		var data powerChangePayload
		if err := json.Unmarshal(msg.Payload, &data); err != nil {
			log.Printf("[WS] Malformed powerChange payload from player %s: %v", c.playerID, err)
			c.sendError("invalid power data")
			return
		}
		if err := c.coord.PowerPreview(ctx, c.roomID, data.Power); err != nil {
			c.sendError(shotErrorMessage(err))
		}

	default:
		// Ignore unknown message types.
	}
}

// shotErrorMessage maps coordinator errors to client-facing strings without
// leaking internals.
func shotErrorMessage(err error) string {
	switch {
	case errors.Is(err, room.ErrInvalidShot),
		errors.Is(err, room.ErrNotYourTurn),
		errors.Is(err, room.ErrShotInFlight),
		errors.Is(err, room.ErrRoomNotActive):
		return err.Error()
	case errors.Is(err, store.ErrRoomNotFound),
		errors.Is(err, store.ErrStateNotFound),
		errors.Is(err, store.ErrPlayerNotFound):
		return "room or player not found"
	default:
		return "internal error"
	}
}

// sendError delivers an error frame to this client only.
func (c *Client) sendError(message string) {
	data, _ := json.Marshal(map[string]string{
		"type":    "error",
		"message": message,
	})
	c.trySend(data)
}

// trySend queues a message without blocking. It reports false when the
// buffer is full or the client has already been torn down.
func (c *Client) trySend(data []byte) bool {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}
