// Package config centralizes the service configuration, loaded once at
// startup from the environment (with an optional .env file for local runs).
package config

import (
	"errors"
	"os"

	"github.com/joho/godotenv"
)

// Config holds everything the server needs to talk to its external
// services. All values come from the environment.
type Config struct {
	ServerEnv              string // "development" or "production"
	ListenAddr             string
	MongoURI               string
	MongoDatabase          string
	FirebaseServiceAccount string // service account JSON
	FirebaseWebAPIKey      string // Identity Toolkit key for password sign-in
	GeminiAPIKey           string
	StateDir               string // local flag storage
}

// Load reads the environment, honoring a .env file when present.
func Load() (*Config, error) {
	// Missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := &Config{
		ServerEnv:              getenv("SERVER_ENV", "development"),
		ListenAddr:             getenv("LISTEN_ADDR", ":8080"),
		MongoURI:               os.Getenv("MONGODB_URI"),
		MongoDatabase:          getenv("MONGODB_DATABASE", "scholarly"),
		FirebaseServiceAccount: os.Getenv("FIREBASE_SERVICE_ACCOUNT"),
		FirebaseWebAPIKey:      os.Getenv("FIREBASE_WEB_API_KEY"),
		GeminiAPIKey:           os.Getenv("GEMINI_API_KEY"),
		StateDir:               getenv("STATE_DIR", ".scholarly"),
	}

	if cfg.MongoURI == "" {
		return nil, errors.New("MONGODB_URI environment variable not set")
	}
	if cfg.FirebaseServiceAccount == "" {
		return nil, errors.New("FIREBASE_SERVICE_ACCOUNT environment variable not set")
	}
	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
