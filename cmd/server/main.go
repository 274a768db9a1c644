package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"github.com/sketchmotion/sketchmotion/internal/server"
	"github.com/sketchmotion/sketchmotion/internal/server/config"
)

func main() {

	// Best-effort; a missing .env is the normal case in production.
	_ = godotenv.Load()

	ctx := context.Background()
	cfg := config.LoadConfig()
	app, err := server.NewApp(cfg)

	if err != nil {
		log.Printf("%v", err)
		return
	}

	app.Run(ctx)

}
