package config

import (
	"errors"
	"os"

	"github.com/joho/godotenv"
)

// Config holds the process environment. MongoURI has no default; Load fails
// when it is absent.
type Config struct {
	Port     string
	MongoURI string
	MongoDB  string
}

// Load reads configuration from the environment, after loading an optional
// .env file from the working directory.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Port:     getenv("PORT", "5000"),
		MongoURI: os.Getenv("MONGO_URI"),
		MongoDB:  getenv("MONGO_DB", "songstream"),
	}
	if cfg.MongoURI == "" {
		return Config{}, errors.New("MONGO_URI is required")
	}
	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
