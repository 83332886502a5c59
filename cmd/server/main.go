package main

import (
	"context"
	"log"

	"crash_backend/internal/app"
	"crash_backend/internal/config"
)

func main() {
	ctx := context.Background()

	if err := config.Load(".env"); err != nil {
		log.Println("no .env file, relying on environment")
	}

	a := app.NewApp()
	if err := a.Run(ctx); err != nil {
		log.Fatal(err)
	}
}
