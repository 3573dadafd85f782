package http

import (
	"hoops_backend/internal/config"
	"hoops_backend/internal/http/handlers"
	"hoops_backend/internal/http/middleware"
	"hoops_backend/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Deps are the components the HTTP layer is wired to.
type Deps struct {
	Handler *handlers.Handler
	Health  *handlers.HealthHandler
	Hub     *ws.Hub
	States  ws.StateSource
}

func RegisterRoutes(r *gin.Engine, cfg *config.Config, d Deps) {
	// Health checks (no rate limiting)
	r.GET("/health", d.Health.Health)
	r.GET("/healthz", d.Health.Liveness)
	r.GET("/readyz", d.Health.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/api/v1")
	v1.Use(middleware.RedisRateLimit(cfg.APIRateLimit, cfg.APIRateWindow))
	registerAPIRoutes(v1, d.Handler, cfg)

	// Spectators
	r.GET("/ws/games/:id", ws.HandleWS(d.Hub, d.States, cfg.AllowedOrigin))
}

func registerAPIRoutes(api *gin.RouterGroup, h *handlers.Handler, cfg *config.Config) {
	eventRL := middleware.EventRateLimit(cfg.EventRateLimit, cfg.EventRateWindow)

	// Games
	api.POST("/games", middleware.JWT(), h.CreateGame)
	api.POST("/games/:id/session", middleware.JWT(), h.StartSession)
	api.POST("/games/:id/events", middleware.JWT(), eventRL, h.ApplyEvent)
	api.POST("/games/:id/finalize", middleware.JWT(), h.FinalizeGame)
	api.GET("/games/:id/state", h.GameState)

	// Ratings
	api.GET("/leaderboard", h.GetLeaderboard)
	api.GET("/players/:id", h.PlayerProfile)
	api.GET("/me", middleware.JWT(), h.MyProfile)
}
