package config

import (
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config is the process configuration surface. The durable backend is
// selected solely by DatabaseURL: when it is empty or unreachable the
// server runs on volatile in-memory storage.
type Config struct {
	Port          string
	DatabaseURL   string
	DatabaseName  string
	SweepInterval int // seconds between expiry sweeps
	LogLevel      string
}

func Load() Config {
	// A missing .env file is fine; system environment variables still apply.
	_ = godotenv.Load()

	return Config{
		Port:          getEnv("PORT", "8080"),
		DatabaseURL:   getEnv("DATABASE_URL", ""),
		DatabaseName:  getEnv("DATABASE_NAME", "anonchat"),
		SweepInterval: getEnvAsInt("SWEEP_INTERVAL_SECONDS", 60),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
	}
}

// DSN builds the connection string handed to the Postgres driver.
// DatabaseName selects the database when DatabaseURL does not already
// name one; it handles both URL and keyword/value forms.
func (c Config) DSN() string {
	if c.DatabaseName == "" {
		return c.DatabaseURL
	}
	if u, err := url.Parse(c.DatabaseURL); err == nil && u.Scheme != "" && u.Host != "" {
		if u.Path == "" || u.Path == "/" {
			u.Path = "/" + c.DatabaseName
		}
		return u.String()
	}
	if strings.Contains(c.DatabaseURL, "dbname=") {
		return c.DatabaseURL
	}
	return c.DatabaseURL + " dbname=" + c.DatabaseName
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
