package config

import (
	"strings"

	"github.com/cloudonauts/storefront/pkg/global"
)

// Config is built once from the environment in main and handed to
// everything that needs it; nothing reads env vars at request time.
type Config struct {
	Port          string
	APIBaseURL    string
	RedisAddress  string
	RedisPassword string
	AllowOrigins  []string
	Environment   string
}

func Load() Config {
	return Config{
		Port:          global.GetEnvOrDefault("PORT", "8000"),
		APIBaseURL:    global.GetEnvOrDefault("API_BASE_URL", "http://localhost:5000"),
		RedisAddress:  global.GetEnvOrDefault("REDIS_ADDRESS", ""),
		RedisPassword: global.GetEnvOrDefault("REDIS_PASSWORD", ""),
		AllowOrigins:  splitCSV(global.GetEnvOrDefault("ALLOW_ORIGINS", "http://localhost:3000,http://localhost:5173")),
		Environment:   global.GetEnvOrDefault("ENV", "development"),
	}
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
