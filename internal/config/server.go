package config

import (
	"os"
	"strings"
)

// Server holds process settings read from TRADEWINDS_* environment
// variables.
type Server struct {
	DBDSN         string
	HTTPAddr      string
	WSAddr        string
	WorldConfig   string
	WorldDB       string
	MigrationsDir string
}

func ServerFromEnv() Server {
	return Server{
		DBDSN:         stringEnv("TRADEWINDS_DB_DSN", ""),
		HTTPAddr:      stringEnv("TRADEWINDS_HTTP_ADDR", ":8080"),
		WSAddr:        stringEnv("TRADEWINDS_WS_ADDR", ":8081"),
		WorldConfig:   stringEnv("TRADEWINDS_WORLD_CONFIG", "./world.yaml"),
		WorldDB:       stringEnv("TRADEWINDS_WORLD_DB", ""),
		MigrationsDir: stringEnv("TRADEWINDS_MIGRATIONS_DIR", ""),
	}
}

func stringEnv(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}
