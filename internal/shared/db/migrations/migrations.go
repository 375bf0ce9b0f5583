package migrations

import (
	"errors"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"

	"auctionhouse/internal/shared/logger"
)

var log = logger.GetLogger()

// Run applies all pending migrations from sourceURL against dbURL.
func Run(sourceURL, dbURL string) error {
	log.Info("Running database migrations", zap.String("source", sourceURL))

	m, err := migrate.New(sourceURL, dbURL)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}
