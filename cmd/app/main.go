package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hoops_backend/internal/config"
	"hoops_backend/internal/db"
	httpServer "hoops_backend/internal/http"
	"hoops_backend/internal/http/handlers"
	"hoops_backend/internal/http/middleware"
	"hoops_backend/internal/logger"
	"hoops_backend/internal/repository"
	"hoops_backend/internal/service"
	"hoops_backend/internal/session"
	"hoops_backend/internal/ws"

	"github.com/gin-gonic/gin"
)

var version = "dev"

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogJSON, os.Stdout)
	service.InitJWT(cfg.JWTSecret)

	dbPool := db.MustConnect(cfg.DatabaseURL)
	defer dbPool.Close()

	rdb := db.ConnectRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if rdb != nil {
		defer rdb.Close()
	}
	middleware.InitRedisRateLimiter(rdb)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	gameRepo := repository.NewGameRepository(dbPool)
	playerRepo := repository.NewPlayerRepository(dbPool, cfg.DefaultRating)
	outcomeRepo := repository.NewOutcomeRepository(dbPool)
	snapshots := repository.NewSnapshotStore(rdb, cfg.SnapshotTTL)

	hub := ws.NewHub()
	hub.StartCleanup(ctx, 10*time.Minute, time.Hour)

	orch := session.NewOrchestrator(session.Config{
		KBase:           cfg.KBase,
		SplitTeamChange: cfg.SplitTeamChange,
		DefaultRating:   cfg.DefaultRating,
	}, playerRepo, outcomeRepo,
		session.WithPublisher(hub),
		session.WithPublisher(snapshots),
	)
	orch.StartCleanup(ctx, 10*time.Minute, time.Hour)

	games := service.NewGameService(gameRepo, orch, snapshots)

	var redisPing handlers.Pinger
	if rdb != nil {
		redisPing = handlers.PingFunc(func(ctx context.Context) error { return rdb.Ping(ctx).Err() })
	}

	r := gin.Default()

	// CORS for the scoring app
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" && (cfg.AllowedOrigin == "" || origin == cfg.AllowedOrigin) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
			c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		}
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	httpServer.RegisterRoutes(r, cfg, httpServer.Deps{
		Handler: handlers.NewHandler(games, playerRepo, gameRepo),
		Health:  handlers.NewHealthHandler(dbPool, redisPing, version),
		Hub:     hub,
		States:  games,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.AppPort,
		Handler: r,
	}

	go func() {
		logger.Info("server started", "port", cfg.AppPort, "version", version)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	// let pending outcome writes reach the database
	orch.Wait()
	logger.Info("server exited")
}
