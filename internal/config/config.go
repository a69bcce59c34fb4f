// Package config loads runtime settings from the environment, with an
// optional .env file for local development.
package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds every runtime setting the service reads.
type Config struct {
	Addr        string
	DatabaseURL string
	LogLevel    string
	LogFormat   string
	JWTSecret   string
	JWTIssuer   string
	JWTAudience string
	DevSeed     bool
}

// Load reads configuration from the environment. A .env file in the working
// directory is merged in first when present; a missing file is not an error.
func Load() Config {
	_ = godotenv.Load()
	return Config{
		Addr:        withDefault("ADDR", ":8080"),
		DatabaseURL: strings.TrimSpace(os.Getenv("DATABASE_URL")),
		LogLevel:    os.Getenv("LOG_LEVEL"),
		LogFormat:   os.Getenv("LOG_FORMAT"),
		JWTSecret:   strings.TrimSpace(os.Getenv("JWT_HS256_SECRET")),
		JWTIssuer:   strings.TrimSpace(os.Getenv("JWT_ISSUER")),
		JWTAudience: strings.TrimSpace(os.Getenv("JWT_AUDIENCE")),
		DevSeed:     boolEnv("DEV_SEED"),
	}
}

func withDefault(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func boolEnv(key string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes":
		return true
	}
	return false
}
