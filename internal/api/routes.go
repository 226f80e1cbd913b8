package api

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/breakshot/backend/internal/api/handlers"
	"github.com/breakshot/backend/internal/archive"
	"github.com/breakshot/backend/internal/config"
	"github.com/breakshot/backend/internal/middleware"
	"github.com/breakshot/backend/internal/room"
	"github.com/breakshot/backend/internal/store"
	"github.com/breakshot/backend/internal/ws"
)

// SetupRoutes configures all API routes
func SetupRoutes(router *gin.Engine, st store.Store, coord *room.Coordinator, hub *ws.Hub, rec *archive.Recorder, cfg *config.Config) {
	// No-cache middleware MUST be first in development
	if cfg.Environment != "production" {
		router.Use(func(c *gin.Context) {
			c.Header("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
			c.Header("Pragma", "no-cache")
			c.Header("Expires", "0")
			c.Next()
		})
		log.Println("[DEV MODE] Aggressive no-cache headers enabled for all routes")
	}

	// WebSocket endpoint, identified by roomId/playerId query parameters
	router.GET("/ws", middleware.WebSocketCORSCheck(cfg), ws.HandleWebSocket(hub, coord, st))

	// Prometheus metrics
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API v1 group
	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", handlers.HealthCheck)

		v1.POST("/auth/register", handlers.Register(st))
		v1.POST("/auth/login", handlers.Login(st, cfg))

		v1.GET("/matches", handlers.RecentMatches(rec))

		rooms := v1.Group("/rooms")
		{
			rooms.GET("", handlers.ListRooms(st))
			rooms.GET("/:id", handlers.GetRoom(st))
			rooms.GET("/:id/players", handlers.ListPlayers(st))
			rooms.GET("/:id/state", handlers.GetGameState(st))

			authed := rooms.Group("", handlers.AuthMiddleware(cfg))
			{
				authed.POST("", handlers.CreateRoom(coord))
				authed.POST("/:id/join", handlers.JoinRoom(coord))
				authed.POST("/:id/leave", handlers.LeaveRoom(coord, st))
				authed.POST("/:id/shoot", handlers.Shoot(coord, st))
				authed.POST("/:id/voice/mute", handlers.MutePlayer(coord, st))
			}
		}
	}
}
