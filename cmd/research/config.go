package main

import (
	"os"

	"github.com/joho/godotenv"
)

// cliConfig holds the infrastructure endpoints the CLI needs to open
// before the Settings Resolver takes over every tunable, mirroring the
// teacher's config.Load() pattern for the handful of values that aren't
// themselves resolver-managed settings (connection strings, not
// mission/user-overridable knobs).
type cliConfig struct {
	DatabaseURL string // sqlite DSN for the Mission Context Store
	VectorDSN   string // postgres DSN for the vector store
	RedisAddr   string // optional; empty disables the presence cache
	WSToken     string // static bearer token for the WebSocket/REST surface
}

func loadCLIConfig() cliConfig {
	_ = godotenv.Load()
	home, _ := os.UserHomeDir()
	return cliConfig{
		DatabaseURL: getEnvOrDefault("MAESTRO_DB_PATH", home+"/.maestro/missions.db"),
		VectorDSN:   os.Getenv("MAESTRO_VECTOR_DSN"),
		RedisAddr:   os.Getenv("MAESTRO_REDIS_ADDR"),
		WSToken:     os.Getenv("MAESTRO_WS_TOKEN"),
	}
}

func getEnvOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
