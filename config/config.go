package config

import (
	"os"
	"strconv"
	"time"
)

// Config は起動時に一度だけ環境変数から構築する。以降は読み取り専用
type Config struct {
	OllamaBaseURL  string
	OllamaModel    string
	GatewayBackend string // "ollama" または "openai"
	Timeout        time.Duration
	NumPredictChat int
	NumPredictJSON int
	DatabaseURL    string
	Port           string
}

func Load() Config {
	return Config{
		OllamaBaseURL:  getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
		OllamaModel:    getEnv("OLLAMA_MODEL", "alibayram/medgemma:latest"),
		GatewayBackend: getEnv("GATEWAY_BACKEND", "ollama"),
		Timeout:        time.Duration(getEnvInt("OLLAMA_TIMEOUT_SECONDS", 30)) * time.Second,
		NumPredictChat: getEnvInt("NUM_PREDICT_CHAT", 250),
		NumPredictJSON: getEnvInt("NUM_PREDICT_JSON", 400),
		DatabaseURL:    getEnv("DATABASE_URL", "host=localhost port=5432 user=postgres password=postgres dbname=calmi sslmode=disable"),
		Port:           getEnv("PORT", "8000"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
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
