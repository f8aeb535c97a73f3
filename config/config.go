package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds process-wide settings. It is built once by the CLI and passed down.
type Config struct {
	AppName     string
	Environment string
	Port        string

	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	DBDSN      string

	JWTSecret   string
	JWTTTLHours int

	AllowedOrigins  string
	RateLimitMax    int
	RateLimitWindow int // seconds
	BodyLimitBytes  int

	LogLevel  string
	LogFormat string

	RootUserEmail    string
	RootUserPassword string
}

// Load reads an optional .env file and then the process environment.
func Load() Config {
	_ = godotenv.Load()

	bodyLimit := getenvInt("BODY_LIMIT_BYTES", 0)
	if bodyLimit <= 0 {
		bodyLimit = getenvInt("BODY_LIMIT_MB", 4) * 1024 * 1024
	}

	secret := strings.TrimSpace(os.Getenv("JWT_SECRET_KEY"))
	if secret == "" {
		secret = strings.TrimSpace(os.Getenv("JWT_SECRET"))
	}

	return Config{
		AppName:          getenv("APP_NAME", "vetclinic"),
		Environment:      strings.ToLower(getenv("APP_ENV", EnvDevelopment)),
		Port:             getenv("PORT", "8080"),
		DBDriver:         strings.ToLower(getenv("DB_DRIVER", DriverPostgres)),
		DBHost:           getenv("DB_HOST", "db"),
		DBPort:           getenv("DB_PORT", "5432"),
		DBUser:           getenv("DB_USER", "postgres"),
		DBPassword:       os.Getenv("DB_PASSWORD"),
		DBName:           getenv("DB_NAME", "vetclinic"),
		DBSSLMode:        getenv("DB_SSLMODE", "disable"),
		DBDSN:            getenv("DB_DSN", "vetclinic.db"),
		JWTSecret:        secret,
		JWTTTLHours:      getenvInt("JWT_TTL_HOURS", 4),
		AllowedOrigins:   getenv("ALLOWED_ORIGINS", "*"),
		RateLimitMax:     getenvInt("RATE_LIMIT_MAX", 60),
		RateLimitWindow:  getenvInt("RATE_LIMIT_WINDOW_SECONDS", 60),
		BodyLimitBytes:   bodyLimit,
		LogLevel:         getenv("LOG_LEVEL", "info"),
		LogFormat:        getenv("LOG_FORMAT", "json"),
		RootUserEmail:    getenv("ROOT_USER_EMAIL", "admin@vetclinic.local"),
		RootUserPassword: os.Getenv("ROOT_USER_PASSWORD"),
	}
}

// IsProduction reports whether internal error details must be hidden from clients.
func (c Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

func (c Config) Validate() error {
	switch c.DBDriver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.JWTSecret == "" && c.IsProduction() {
		return errors.New("JWT secret not configured (set JWT_SECRET_KEY or JWT_SECRET)")
	}
	if c.JWTTTLHours <= 0 {
		return errors.New("JWT_TTL_HOURS must be positive")
	}
	return nil
}

// PostgresDSN builds the libpq-style DSN used by gorm's postgres driver.
func (c Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, c.DBSSLMode)
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// getenvInt reads an int env var with a default fallback.
func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return def
}
