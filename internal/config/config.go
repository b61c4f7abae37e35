package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	// Environment
	Environment string

	// Database
	DatabaseURL    string
	MigrateOnStart bool
	MigrationsDir  string

	// Redis
	RedisURL string

	// Server
	Port        string
	FrontendURL string

	// Sessions
	SessionTimeoutMin      int
	IdleTimeoutSeconds     int
	IdleWorkerPollInterval int
	MaxSessions            int
	StagesFile             string

	// Audio
	AudioEnabled    bool
	AudioSampleRate int

	// Logging (terminal client)
	LogFile string

	// Security
	JWTSecret string
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	return &Config{
		// Environment
		Environment: getEnv("APP_ENV", "development"),

		// Database
		DatabaseURL:    getEnv("DATABASE_URL", "postgres://localhost:5432/notedrop?sslmode=disable"),
		MigrateOnStart: getEnvBool("MIGRATE_ON_START", true),
		MigrationsDir:  getEnv("MIGRATIONS_DIR", "migrations"),

		// Redis
		RedisURL: getEnv("REDIS_URL", "redis://localhost:6379/0"),

		// Server
		Port:        getEnv("APP_PORT", "8080"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:5173"),

		// Sessions
		SessionTimeoutMin:      getEnvInt("SESSION_TIMEOUT_MINUTES", 30),
		IdleTimeoutSeconds:     getEnvInt("IDLE_TIMEOUT_SECONDS", 600),
		IdleWorkerPollInterval: getEnvInt("IDLE_WORKER_POLL_INTERVAL", 15),
		MaxSessions:            getEnvInt("MAX_SESSIONS", 500),
		StagesFile:             getEnv("STAGES_FILE", ""),

		// Audio
		AudioEnabled:    getEnvBool("AUDIO_ENABLED", true),
		AudioSampleRate: getEnvInt("AUDIO_SAMPLE_RATE", 44100),

		LogFile: getEnv("LOG_FILE", "notedrop.log"),

		// Security
		JWTSecret: getEnv("JWT_SECRET", "change-me-in-production"),
	}
}

// IsProduction reports whether APP_ENV names a production deployment.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
