package config

import "os"

// Config holds process-level settings for the coverage server. Simulation
// parameters are never configured here; they arrive per run as an explicit
// RunConfig.
type Config struct {
	Addr   string
	DBPath string
}

// Load reads configuration from environment variables with defaults.
func Load() *Config {
	addr := os.Getenv("COVERAGE_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	dbPath := os.Getenv("COVERAGE_DB_PATH")
	if dbPath == "" {
		dbPath = "./data/coverage/runs.db"
	}

	return &Config{
		Addr:   addr,
		DBPath: dbPath,
	}
}
