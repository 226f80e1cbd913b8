package ws

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/breakshot/backend/internal/room"
	"github.com/breakshot/backend/internal/store"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins in development
	},
}

// HandleWebSocket upgrades a connection and subscribes it to its room's
// event stream. The caller identifies itself with roomId and playerId query
// parameters; the player must hold a seat in that room.
func HandleWebSocket(hub *Hub, coord *room.Coordinator, st store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		roomID := c.Query("roomId")
		playerID := c.Query("playerId")
		if roomID == "" || playerID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "roomId and playerId required"})
			return
		}

		if _, err := st.GetRoom(c.Request.Context(), roomID); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
			return
		}
		player, err := st.GetPlayer(c.Request.Context(), playerID)
		if err != nil {
			if errors.Is(err, store.ErrPlayerNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "player not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load player"})
			return
		}
		if player.RoomID != roomID {
			c.JSON(http.StatusForbidden, gin.H{"error": "player is not in this room"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("[WS] Upgrade error: %v", err)
			return
		}

		client := newClient(hub, conn, coord, roomID, playerID)
		hub.Subscribe(client)

		go client.writePump()
		go client.readPump()
	}
}
