package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"hoops_backend/internal/db"
	"hoops_backend/internal/domain"
	"hoops_backend/internal/logger"
	"hoops_backend/internal/repository"
	"hoops_backend/internal/service"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

// create_player registers a player (or refreshes its name) and prints a token for it.
func main() {
	id := flag.String("id", "", "player id (random uuid when empty)")
	name := flag.String("name", "", "display name")
	flag.Parse()

	_ = godotenv.Load()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		logger.Fatal("DATABASE_URL not set")
	}
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		logger.Fatal("JWT_SECRET not set")
	}

	if *id == "" {
		*id = uuid.NewString()
	}
	if *name == "" {
		*name = *id
	}

	pool := db.MustConnect(dsn)
	defer pool.Close()

	repo := repository.NewPlayerRepository(pool, domain.DefaultRating)
	p := &domain.Player{ID: *id, DisplayName: *name}
	if err := repo.Upsert(context.Background(), p); err != nil {
		logger.Fatal("create player failed", "error", err)
	}
	logger.Info("player ready", "id", p.ID, "name", p.DisplayName, "rating", p.Rating, "games", p.GamesPlayed)

	service.InitJWT(secret)
	token, err := service.GenerateJWT(p.ID)
	if err != nil {
		logger.Fatal("failed to generate token", "error", err)
	}
	fmt.Println(token)
}
