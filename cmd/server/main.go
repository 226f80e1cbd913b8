package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"

	"github.com/breakshot/backend/internal/api"
	"github.com/breakshot/backend/internal/archive"
	"github.com/breakshot/backend/internal/config"
	"github.com/breakshot/backend/internal/database"
	"github.com/breakshot/backend/internal/middleware"
	"github.com/breakshot/backend/internal/migrations"
	"github.com/breakshot/backend/internal/redis"
	"github.com/breakshot/backend/internal/room"
	"github.com/breakshot/backend/internal/store"
	"github.com/breakshot/backend/internal/store/redisstore"
	"github.com/breakshot/backend/internal/ws"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Initialize configuration
	cfg := config.Load()

	// Initialize database (optional: the match archive is skipped without it)
	var db *sqlx.DB
	if cfg.DatabaseURL != "" {
		var err error
		db, err = database.Connect(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()

		if cfg.MigrateOnStart {
			log.Println("↗ Running DB migrations on startup...")
			if err := migrations.RunMigrations(cfg.DatabaseURL); err != nil {
				log.Fatalf("Failed to run migrations: %v", err)
			}
		}
	} else {
		log.Println("[POOL] DATABASE_URL not set - match archive disabled")
	}

	// Initialize the game state store: Redis when configured, otherwise
	// in-process memory (development)
	var st store.Store
	if cfg.RedisURL != "" {
		rdb, err := redis.Connect(cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer rdb.Close()
		st = redisstore.New(rdb)
		log.Println("[POOL] Using Redis-backed game state store")
	} else {
		st = store.NewMemory()
		log.Println("[POOL] REDIS_URL not set - using in-memory game state store")
	}

	// Wire the broadcast hub and turn coordinator
	hub := ws.NewHub()
	var rec *archive.Recorder
	if db != nil {
		rec = archive.NewRecorder(db)
	}
	coord := room.NewCoordinator(st, hub, archiverOrNil(rec), cfg.TurnTimeSeconds)

	// Set up Gin router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()
	router.Use(middleware.CORSMiddleware(cfg))

	api.SetupRoutes(router, st, coord, hub, rec, cfg)

	// Start server
	port := cfg.Port
	if port == "" {
		port = "8080"
	}

	log.Printf("Starting Breakshot server on port %s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// archiverOrNil avoids handing the coordinator a typed nil inside a non-nil
// interface value.
func archiverOrNil(rec *archive.Recorder) room.Archiver {
	if rec == nil {
		return nil
	}
	return rec
}
