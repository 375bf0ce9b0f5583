package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds every value the server reads from the environment.
type Config struct {
	HTTPAddr        string        `envconfig:"HTTP_ADDR" default:":9000"`
	FrontendOrigins []string      `envconfig:"FRONTEND_ORIGINS" default:"http://localhost:3000,http://localhost:8080"`
	CloseInterval   time.Duration `envconfig:"AUCTION_CLOSE_INTERVAL" default:"5s"`
	CloseBatchSize  int           `envconfig:"AUCTION_CLOSE_BATCH_SIZE" default:"10"`
	MigrationsURL   string        `envconfig:"MIGRATIONS_URL" default:"file://internal/shared/db/migrations/sql"`

	// Either DATABASE_URL or the DB_* parts.
	DatabaseURL string `envconfig:"DATABASE_URL"`
	DBHost      string `envconfig:"DB_HOST" default:"localhost"`
	DBPort      string `envconfig:"DB_PORT" default:"5432"`
	DBUser      string `envconfig:"DB_USER" default:"postgres"`
	DBPassword  string `envconfig:"DB_PASSWORD" default:"postgres"`
	DBName      string `envconfig:"DB_NAME" default:"auctionhouse"`
	DBSSLMode   string `envconfig:"DB_SSLMODE" default:"disable"`
}

// Load reads .env if present and then the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return c, nil
}

// PostgresDSN builds the connection URL, preferring DATABASE_URL when set.
func (c Config) PostgresDSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode,
	)
}
