package main

import (
	"log"

	"stocktrack-backend/internal/config"
	"stocktrack-backend/internal/database"
	"stocktrack-backend/internal/router"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	database.Init(cfg)

	app := router.New(cfg)

	log.Println("Server listening on port:", cfg.HTTPPort)
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		log.Fatal(err)
	}
}
