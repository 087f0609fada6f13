package config

import (
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server struct {
		Port    string
		Env     string
		Timeout time.Duration
	}

	// Database configuration
	Database struct {
		Host     string
		Port     string
		User     string
		Password string
		Name     string
		SSLMode  string
		MaxConns int
		Timeout  time.Duration
	}

	// Language-model provider configuration
	Model struct {
		APIKey         string
		BaseURL        string
		Primary        string
		Secondary      string
		Temperature    float32
		MaxTokens      int
		RequestTimeout time.Duration
	}

	// Conversation behaviour
	Chat struct {
		ContextTurns     int
		TitleMaxLen      int
		MaxSuggestions   int
		SuggestionMaxLen int
		DefaultTitle     string
	}

	// Security configuration
	Security struct {
		RateLimit      float64
		RateLimitBurst int
		AllowedOrigins []string
	}

	// Logging configuration
	Logging struct {
		Level  string
		Format string
	}

	// Suggestion cache settings
	Cache struct {
		TTL         time.Duration
		MaxSize     int
		PurgeWindow time.Duration
		RedisURL    string
	}
}

var (
	instance *Config
	once     sync.Once
)

// New creates a new Config instance with values from environment variables.
// Uses singleton pattern to ensure only one instance exists.
func New() *Config {
	once.Do(func() {
		// Load .env file if exists
		godotenv.Load()

		instance = &Config{}

		// Server config
		instance.Server.Port = getEnvString("PORT", "8080")
		instance.Server.Env = getEnvString("APP_ENV", "development")
		instance.Server.Timeout = getEnvDuration("SERVER_TIMEOUT", 30*time.Second)

		// Database config
		instance.Database.Host = getEnvString("DB_HOST", "localhost")
		instance.Database.Port = getEnvString("DB_PORT", "5432")
		instance.Database.User = getEnvString("DB_USER", "postgres")
		instance.Database.Password = getEnvString("DB_PASSWORD", "postgres")
		instance.Database.Name = getEnvString("DB_NAME", "mindmate")
		instance.Database.SSLMode = getEnvString("DB_SSL_MODE", "disable")
		instance.Database.MaxConns = getEnvInt("DB_MAX_CONNS", 20)
		instance.Database.Timeout = getEnvDuration("DB_TIMEOUT", 5*time.Second)

		// Model provider config
		instance.Model.APIKey = getEnvString("OPENAI_API_KEY", "")
		instance.Model.BaseURL = getEnvString("OPENAI_BASE_URL", "")
		instance.Model.Primary = getEnvString("MODEL_PRIMARY", "gpt-4o-mini")
		instance.Model.Secondary = getEnvString("MODEL_SECONDARY", "gpt-3.5-turbo")
		instance.Model.Temperature = float32(getEnvFloat("MODEL_TEMPERATURE", 0.7))
		instance.Model.MaxTokens = getEnvInt("MODEL_MAX_TOKENS", 200)
		instance.Model.RequestTimeout = getEnvDuration("MODEL_REQUEST_TIMEOUT", 30*time.Second)

		// Chat behaviour
		instance.Chat.ContextTurns = getEnvInt("CHAT_CONTEXT_TURNS", 4)
		instance.Chat.TitleMaxLen = getEnvInt("CHAT_TITLE_MAX_LEN", 50)
		instance.Chat.MaxSuggestions = getEnvInt("CHAT_MAX_SUGGESTIONS", 5)
		instance.Chat.SuggestionMaxLen = getEnvInt("CHAT_SUGGESTION_MAX_LEN", 100)
		instance.Chat.DefaultTitle = getEnvString("CHAT_DEFAULT_TITLE", "New Chat")

		// Security config
		instance.Security.RateLimit = getEnvFloat("RATE_LIMIT", 5)
		instance.Security.RateLimitBurst = getEnvInt("RATE_LIMIT_BURST", 10)
		instance.Security.AllowedOrigins = getEnvStringSlice("ALLOWED_ORIGINS", []string{"*"})

		// Logging config
		instance.Logging.Level = getEnvString("LOG_LEVEL", "info")
		instance.Logging.Format = getEnvString("LOG_FORMAT", "json")

		// Cache settings
		instance.Cache.TTL = getEnvDuration("CACHE_TTL", 2*time.Minute)
		instance.Cache.MaxSize = getEnvInt("CACHE_MAX_SIZE", 1000)
		instance.Cache.PurgeWindow = getEnvDuration("CACHE_PURGE_WINDOW", 10*time.Minute)
		instance.Cache.RedisURL = getEnvString("REDIS_URL", "")
	})

	return instance
}

// Get returns the singleton Config instance
func Get() *Config {
	if instance == nil {
		return New()
	}
	return instance
}

// Helper functions to read environment variables with default values

func getEnvString(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvStringSlice(key string, defaultValue []string) []string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return strings.Split(value, ",")
	}
	return defaultValue
}
