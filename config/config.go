package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Store     StoreConfig
	GenAI     GenAIConfig
	Reminders RemindersConfig
	Calendar  CalendarConfig
	App       AppConfig
}

type ServerConfig struct {
	Port   string
	APIKey string
}

// StoreConfig selects and configures the persistent project store.
// Backend is "redis" (default) or "postgres".
type StoreConfig struct {
	Backend     string
	RedisAddr   string
	RedisDB     int
	PostgresDSN string
}

type GenAIConfig struct {
	APIKey     string
	BaseURL    string
	Model      string
	LiveModel  string
	DrainDelay time.Duration
}

type RemindersConfig struct {
	// Horizon bounds how far ahead timers are armed; reminders beyond it are
	// picked up by the daily rescan.
	Horizon time.Duration
}

type CalendarConfig struct {
	CredentialsFile string
	TokenFile       string
	CalendarID      string
}

type AppConfig struct {
	Environment string
	LogLevel    string
	Version     string
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:   getEnv("PORT", "8080"),
			APIKey: getEnv("API_KEY", ""),
		},
		Store: StoreConfig{
			Backend:     getEnv("STORE_BACKEND", "redis"),
			RedisAddr:   getEnv("REDIS_ADDR", "localhost:6379"),
			RedisDB:     getEnvAsInt("REDIS_DB", 0),
			PostgresDSN: getEnv("DB_DSN", ""),
		},
		GenAI: GenAIConfig{
			APIKey:     getEnv("GENAI_API_KEY", ""),
			BaseURL:    getEnv("GENAI_BASE_URL", "https://generativelanguage.googleapis.com"),
			Model:      getEnv("GENAI_MODEL", "gemini-2.5-flash"),
			LiveModel:  getEnv("GENAI_LIVE_MODEL", "gemini-2.5-flash-native-audio-preview-09-2025"),
			DrainDelay: getEnvAsDuration("TRANSCRIBE_DRAIN_DELAY", 2*time.Second),
		},
		Reminders: RemindersConfig{
			Horizon: getEnvAsDuration("REMINDER_HORIZON", 36*time.Hour),
		},
		Calendar: CalendarConfig{
			CredentialsFile: getEnv("CALENDAR_CREDENTIALS_FILE", ""),
			TokenFile:       getEnv("CALENDAR_TOKEN_FILE", ""),
			CalendarID:      getEnv("CALENDAR_ID", "primary"),
		},
		App: AppConfig{
			Environment: getEnv("APP_ENV", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	switch c.Store.Backend {
	case "redis":
		if c.Store.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required")
		}
	case "postgres":
		if c.Store.PostgresDSN == "" {
			return fmt.Errorf("DB_DSN is required when STORE_BACKEND=postgres")
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.Store.Backend)
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer for %s, using default: %d", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid duration for %s, using default: %s", key, defaultValue)
		return defaultValue
	}

	return value
}
