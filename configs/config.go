// Package configs loads server configuration from the environment.
// A .env file is honored when present; every value has a default so the
// server runs with no configuration at all.
package configs

import (
	"os"

	"github.com/joho/godotenv"
)

// Config holds server settings.
type Config struct {
	Port       string // PORT
	DBPath     string // DB_PATH, ":memory:" for ephemeral
	PolicyPath string // POLICY_PATH, optional lending policy JSON file
	Env        string // APP_ENV
}

// Load reads .env (if any) and the environment.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Port:       getenv("PORT", "8080"),
		DBPath:     getenv("DB_PATH", "library.db"),
		PolicyPath: os.Getenv("POLICY_PATH"),
		Env:        getenv("APP_ENV", "dev"),
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
