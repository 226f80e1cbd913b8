package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/breakshot/backend/internal/models"
	"github.com/breakshot/backend/internal/room"
	"github.com/breakshot/backend/internal/store"
)

// CreateRoom creates a room with a freshly racked table
func CreateRoom(coord *room.Coordinator) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Name string `json:"name"`
		}
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room data"})
			return
		}
		name := strings.TrimSpace(req.Name)
		if name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "name required"})
			return
		}

		created, err := coord.CreateRoom(c.Request.Context(), name)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, created)
	}
}

// ListRooms returns rooms that are joinable or in play
func ListRooms(st store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		rooms, err := st.ListActiveRooms(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		if rooms == nil {
			rooms = []models.GameRoom{}
		}
		c.JSON(http.StatusOK, rooms)
	}
}

// GetRoom returns a single room
func GetRoom(st store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		got, err := st.GetRoom(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, got)
	}
}

// JoinRoom seats the authenticated user in a room
func JoinRoom(coord *room.Coordinator) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("user_id")
		player, err := coord.Join(c.Request.Context(), c.Param("id"), userID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, player)
	}
}

// LeaveRoom gives up the authenticated user's seat, forfeiting an active match
func LeaveRoom(coord *room.Coordinator, st store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			PlayerID string `json:"playerId"`
		}
		if err := c.BindJSON(&req); err != nil || req.PlayerID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "playerId required"})
			return
		}
		if !ownsPlayer(c, st, req.PlayerID) {
			return
		}
		if err := coord.Leave(c.Request.Context(), c.Param("id"), req.PlayerID); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}

// ListPlayers returns the players seated in a room
func ListPlayers(st store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		players, err := st.GetPlayersByRoom(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		if players == nil {
			players = []models.Player{}
		}
		c.JSON(http.StatusOK, players)
	}
}

// ownsPlayer checks that the authenticated user holds the given seat. It
// writes the error response itself and returns false on failure.
func ownsPlayer(c *gin.Context, st store.Store, playerID string) bool {
	player, err := st.GetPlayer(c.Request.Context(), playerID)
	if err != nil {
		respondError(c, err)
		return false
	}
	if player.UserID != c.GetString("user_id") {
		c.JSON(http.StatusForbidden, gin.H{"error": "player belongs to another user"})
		return false
	}
	return true
}
