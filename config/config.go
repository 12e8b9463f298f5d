package config

import (
	"os"
	"strconv"
)

// DefaultOrderRowLimit bounds both the orders listing and its CSV export.
const DefaultOrderRowLimit = 500

// Config holds the HTTP-facing settings. The admin secrets are deliberately
// left empty when unset so handlers can report misconfiguration as a server
// error instead of rejecting every login as unauthorized.
type Config struct {
	Port              string
	AdminPassword     string
	AdminSessionToken string
	OrderRowLimit     int
}

func Load() Config {
	return Config{
		Port:              getEnv("PORT", "8080"),
		AdminPassword:     os.Getenv("ADMIN_PASSWORD"),
		AdminSessionToken: os.Getenv("ADMIN_SESSION_TOKEN"),
		OrderRowLimit:     getEnvInt("ORDER_ROW_LIMIT", DefaultOrderRowLimit),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			return n
		}
	}
	return defaultValue
}
