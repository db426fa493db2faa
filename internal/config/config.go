package config

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	Port            string
	RegistryBaseURL string // empty means the public dataset default
	LedgerDir       string
	WebhookURL      string // empty disables notifications
	Env             string
}

// Load reads the .env file if one exists and falls back to system
// environment variables.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file, using system environment")
	}

	return &Config{
		Port:            getEnv("PORT", "3000"),
		RegistryBaseURL: getEnv("REGISTRY_BASE_URL", ""),
		LedgerDir:       getEnv("LEDGER_DIR", "."),
		WebhookURL:      getEnv("WEBHOOK_URL", ""),
		Env:             getEnv("ENV", "development"),
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
