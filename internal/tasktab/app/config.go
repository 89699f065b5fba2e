package app

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Issuer    string        // Optional: issuer claim for tokens (default: tasktab)
	JWTSecret string        // Optional: HS256 signing secret; an ephemeral one is generated if unset
	TokenTTL  time.Duration // Optional: access token lifetime (default: 1h)

	BcryptCost       int    // Optional: bcrypt work factor (default: 10)
	PasswordPolicy   string // Optional: password policy preset (strict, relaxed) (default: strict)
	UsernameCasefold bool   // Optional: treat usernames as case-insensitive on conflict checks

	DatabaseFile        string        // Optional: path to SQLite database file (default: ./tasktab.db)
	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 8080)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)
}

// LoadConfig reads configuration from the environment, after loading a
// .env file when one is present. Missing or unparseable values fall back
// to defaults rather than failing startup.
func LoadConfig() Config {
	_ = godotenv.Load()

	return Config{
		Issuer:    getEnvOrDefault("AUTH_ISSUER", "tasktab"),
		JWTSecret: os.Getenv("AUTH_JWT_SECRET"),
		TokenTTL:  getEnvDurationOrDefault("AUTH_TOKEN_TTL", time.Hour),

		BcryptCost:       getEnvIntOrDefault("AUTH_BCRYPT_COST", 10),
		PasswordPolicy:   getEnvOrDefault("AUTH_PASSWORD_POLICY", "strict"),
		UsernameCasefold: getEnvBoolOrDefault("AUTH_USERNAME_CASEFOLD", false),

		DatabaseFile:        getEnvOrDefault("TASKTAB_DATABASE_FILE", "tasktab.db"),
		Env:                 getEnvOrDefault("ENV", "dev"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if boolValue, err := strconv.ParseBool(value); err == nil {
		return boolValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Bare integers are taken as minutes.
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
