package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/sahilsama/calmi/config"
	"github.com/sahilsama/calmi/routes"
	"github.com/sahilsama/calmi/services"
)

func main() {
	// 開発時は .env から環境変数を読み込む
	if os.Getenv("GO_ENV") == "" || os.Getenv("GO_ENV") == "development" {
		if err := godotenv.Load(); err != nil {
			log.Printf("No .env file loaded: %v", err)
		}
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// 設定は起動時に一度だけ読む
	cfg := config.Load()

	store, err := services.NewPostgresStore(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer store.Close()

	if err := store.EnsureSchema(); err != nil {
		log.Fatalf("Failed to ensure schema: %v", err)
	}

	gateway := services.NewGateway(cfg)
	router := routes.SetupRouter(store, gateway)

	port := ":" + cfg.Port
	log.Printf("Server starting on port %s", port)
	if err := router.Run(port); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
