package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/breakshot/backend/internal/room"
	"github.com/breakshot/backend/internal/store"
)

// GetGameState returns the live state of a room's table
func GetGameState(st store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		state, err := st.GetGameState(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, state)
	}
}

// Shoot resolves a shot for the authenticated user's seat
func Shoot(coord *room.Coordinator, st store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			PlayerID string  `json:"playerId"`
			Power    float64 `json:"power"`
			Angle    float64 `json:"angle"`
		}
		if err := c.BindJSON(&req); err != nil || req.PlayerID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "playerId, power and angle required"})
			return
		}
		if !ownsPlayer(c, st, req.PlayerID) {
			return
		}

		result, err := coord.Shoot(c.Request.Context(), c.Param("id"), req.PlayerID, req.Power, req.Angle)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "shotResult": result})
	}
}

// MutePlayer flips a seat's voice-mute flag and notifies the room
func MutePlayer(coord *room.Coordinator, st store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			PlayerID string `json:"playerId"`
			Muted    bool   `json:"muted"`
		}
		if err := c.BindJSON(&req); err != nil || req.PlayerID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "playerId and muted required"})
			return
		}
		if !ownsPlayer(c, st, req.PlayerID) {
			return
		}

		if err := coord.SetMuted(c.Request.Context(), c.Param("id"), req.PlayerID, req.Muted); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}
