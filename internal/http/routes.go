package http

import (
	"memoryarena/internal/config"
	"memoryarena/internal/http/handlers"
	"memoryarena/internal/http/middleware"
	"memoryarena/internal/room"
	"memoryarena/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	redis "github.com/redis/go-redis/v9"
)

// RegisterRoutes wires the REST and websocket surface. Intents that
// mutate a room are per-user rate limited; everything else is per-IP.
func RegisterRoutes(r *gin.Engine, db *pgxpool.Pool, rdb *redis.Client, st store.DocumentStore, lc *room.Lifecycle, eng *room.Engine, cfg *config.Config, version string) {
	h := handlers.NewHandler(db, st, lc, eng)
	eng.SetSink(h.ResultSvc)
	healthHandler := handlers.NewHealthHandler(db, rdb, version)

	r.GET("/healthz", healthHandler.Liveness)
	r.GET("/readyz", healthHandler.Readiness)

	v1 := r.Group("/api/v1")
	v1.Use(middleware.RedisRateLimit(cfg.APIRateLimit, cfg.APIRateWindow))

	// Auth
	v1.POST("/auth/guest", middleware.RedisRateLimit(cfg.AuthRateLimit, cfg.AuthRateWindow), h.GuestAuth)
	v1.GET("/me", middleware.JWT(), h.Me)

	// Flips can legitimately burst; the per-user limiter only catches
	// runaway clients.
	intentRL := middleware.UserRateLimit(120, cfg.APIRateWindow)

	rooms := v1.Group("/rooms")
	rooms.Use(middleware.JWT())
	{
		rooms.POST("", h.CreateRoom)
		rooms.GET("/:id", h.GetRoom)
		rooms.POST("/:id/join", h.JoinRoom)
		rooms.POST("/:id/leave", h.LeaveRoom)
		rooms.POST("/:id/ready", h.SetReady)
		rooms.POST("/:id/start", h.StartGame)
		rooms.POST("/:id/flip", intentRL, h.Flip)
		rooms.DELETE("/:id", h.CleanupRoom)
	}

	// Results and leaderboard
	v1.POST("/results", middleware.JWT(), h.SubmitResult)
	v1.GET("/me/results", middleware.JWT(), h.MyResults)
	v1.GET("/leaderboard", h.Leaderboard)

	// WebSocket room feed; token in query, see handlers.WS
	r.GET("/ws/rooms/:id", h.WS)
}
