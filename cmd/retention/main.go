// cmd/retention/main.go
package main

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/sahilsama/calmi/config"
	"github.com/sahilsama/calmi/services"
)

func main() {
	if os.Getenv("GO_ENV") == "" || os.Getenv("GO_ENV") == "development" {
		godotenv.Load()
	}

	cfg := config.Load()

	retentionDays := envInt("RETENTION_DAYS", 30)
	intervalMinutes := envInt("RETENTION_INTERVAL_MINUTES", 60)

	// 起動直後はDBが立ち上がっていないことがあるので数回リトライする
	var store *services.PostgresStore
	var err error
	for i := 0; i < 3; i++ {
		store, err = services.NewPostgresStore(cfg.DatabaseURL)
		if err == nil {
			break
		}
		log.Printf("Attempt %d: Failed to connect to database: %v", i+1, err)
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		log.Fatalf("Failed to connect to database after retries: %v", err)
	}
	defer store.Close()

	if err := store.EnsureSchema(); err != nil {
		log.Fatalf("Failed to ensure schema: %v", err)
	}

	log.Println("Starting session retention service...")

	// 初回実行
	purge(store, retentionDays)

	// 定期実行の設定
	ticker := time.NewTicker(time.Duration(intervalMinutes) * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		purge(store, retentionDays)
	}
}

// purge は保持期間を過ぎたセッションを削除する。メッセージは連鎖削除される
func purge(store *services.PostgresStore, retentionDays int) {
	cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays)
	deleted, err := store.DeleteSessionsBefore(cutoff)
	if err != nil {
		log.Printf("Error purging stale sessions: %v", err)
		return
	}
	log.Printf("Purge completed at %s: removed %d sessions older than %d days",
		services.GetCurrentTimestamp(), deleted, retentionDays)
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
