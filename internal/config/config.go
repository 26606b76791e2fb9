package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds the application configuration. Both deployable services load
// it the same way, so they always agree on the signing secret.
type Config struct {
	AuthPort      int
	BooksPort     int
	DatabasePath  string
	JWTSecret     string
	AllowedOrigin string
}

// Load loads configuration from environment variables or sets defaults.
// A .env file in the working directory is honored when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	authPort, err := strconv.Atoi(getEnv("AUTH_PORT", "4001"))
	if err != nil {
		return nil, err
	}
	booksPort, err := strconv.Atoi(getEnv("BOOKS_PORT", "4002"))
	if err != nil {
		return nil, err
	}

	return &Config{
		AuthPort:      authPort,
		BooksPort:     booksPort,
		DatabasePath:  getEnv("DATABASE_PATH", "./bookshelf.db"),
		JWTSecret:     getEnv("JWT_SECRET", "dev-secret-change-me"),
		AllowedOrigin: getEnv("ALLOWED_ORIGIN", "http://localhost:3000"),
	}, nil
}

// Helper to get an environment variable with a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
