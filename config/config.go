package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every runtime parameter of the application.
// It is loaded once at startup and handed to the components that need it;
// nothing reads the environment after Load returns.
type Config struct {
	// DBType selects the relational engine: "mysql" or "postgres".
	// The choice is fixed for the lifetime of the process.
	DBType     string
	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	JWTSecretKey string
	JWTExpiresIn time.Duration

	ServerPort int

	// Cloudflare R2 credentials for deck image uploads. All five must be
	// set for the uploader to be enabled; otherwise image upload is off.
	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2PublicBaseURL   string
}

// Load reads configuration from environment variables, optionally seeded
// from a .env file for local development.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DBType:            getEnv("DB_TYPE", "mysql"),
		DBHost:            os.Getenv("DB_HOST"),
		DBUser:            os.Getenv("DB_USER"),
		DBPassword:        os.Getenv("DB_PASSWORD"),
		DBName:            os.Getenv("DB_NAME"),
		DBSSLMode:         getEnv("DB_SSLMODE", "disable"),
		JWTSecretKey:      os.Getenv("JWT_SECRET"),
		R2AccountID:       os.Getenv("R2_ACCOUNT_ID"),
		R2AccessKeyID:     os.Getenv("R2_ACCESS_KEY_ID"),
		R2SecretAccessKey: os.Getenv("R2_SECRET_ACCESS_KEY"),
		R2BucketName:      os.Getenv("R2_BUCKET_NAME"),
		R2PublicBaseURL:   os.Getenv("R2_PUBLIC_BASE_URL"),
	}

	if cfg.DBType != "mysql" && cfg.DBType != "postgres" {
		return nil, fmt.Errorf("DB_TYPE must be \"mysql\" or \"postgres\", got %q", cfg.DBType)
	}
	if cfg.DBHost == "" || cfg.DBUser == "" || cfg.DBName == "" {
		return nil, fmt.Errorf("DB_HOST, DB_USER and DB_NAME environment variables are required")
	}
	if cfg.JWTSecretKey == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is not set")
	}

	defaultDBPort := 3306
	if cfg.DBType == "postgres" {
		defaultDBPort = 5432
	}
	dbPort, err := intEnv("DB_PORT", defaultDBPort)
	if err != nil {
		return nil, err
	}
	cfg.DBPort = dbPort

	serverPort, err := intEnv("SERVER_PORT", 3000)
	if err != nil {
		return nil, err
	}
	if serverPort <= 0 || serverPort > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", serverPort)
	}
	cfg.ServerPort = serverPort

	expires := getEnv("JWT_EXPIRES_IN", "24h")
	d, err := time.ParseDuration(expires)
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_EXPIRES_IN value %q: %w", expires, err)
	}
	cfg.JWTExpiresIn = d

	return cfg, nil
}

// DSN builds the driver-specific connection string for the configured engine.
func (c *Config) DSN() string {
	if c.DBType == "postgres" {
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
}

// R2Enabled reports whether all Cloudflare R2 settings are present.
func (c *Config) R2Enabled() bool {
	return c.R2AccountID != "" && c.R2AccessKeyID != "" && c.R2SecretAccessKey != "" &&
		c.R2BucketName != "" && c.R2PublicBaseURL != ""
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func intEnv(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s environment variable: %w", key, err)
	}
	return n, nil
}
