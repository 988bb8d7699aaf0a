package config

import (
	"os"
	"strconv"
	"time"
)

// Config carries every tunable the binary reads from the environment. It is
// passed explicitly into constructors; nothing reads it through a global.
type Config struct {
	ListenAddr     string
	DBPath         string
	CatalogPath    string
	LogLevel       string
	LogFile        string
	GrowDuration   time.Duration
	ShrinkDuration time.Duration
}

func Load() *Config {
	return &Config{
		ListenAddr:     getEnv("LISTEN_ADDR", ":8080"),
		DBPath:         getEnv("DB_PATH", "/data/zonecount.db"),
		CatalogPath:    getEnv("CATALOG_PATH", ""),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFile:        getEnv("LOG_FILE", ""),
		GrowDuration:   getDuration("OVERLAY_GROW_MS", 250*time.Millisecond),
		ShrinkDuration: getDuration("OVERLAY_SHRINK_MS", 250*time.Millisecond),
	}
}

func getEnv(key, defaultVal string) string {
	if val, exists := os.LookupEnv(key); exists {
		return val
	}
	return defaultVal
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	val, exists := os.LookupEnv(key)
	if !exists {
		return defaultVal
	}
	ms, err := strconv.Atoi(val)
	if err != nil || ms <= 0 {
		return defaultVal
	}
	return time.Duration(ms) * time.Millisecond
}
