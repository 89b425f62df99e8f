// Package migrations applies the embedded result-store schema.
package migrations

import (
	"embed"
	"errors"
	"fmt"
	"net/url"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/clickhouse" // clickhouse driver for migrations
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/sirupsen/logrus"

	"github.com/ethpandaops/uimatrix/internal/clickhouse"
	"github.com/ethpandaops/uimatrix/internal/config"
)

//go:embed sql/*.sql
var files embed.FS

// Up applies every pending migration to the database named by dsn.
func Up(log logrus.FieldLogger, dsn string) error {
	m, err := newMigrate(dsn)
	if err != nil {
		return err
	}

	defer closeMigrate(log, m)

	upErr := m.Up()
	if upErr != nil && !errors.Is(upErr, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", upErr)
	}

	if errors.Is(upErr, migrate.ErrNoChange) {
		log.Debug("no new migrations to apply")

		return nil
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("failed to get migration version: %w", err)
	}

	log.WithFields(logrus.Fields{
		"version": version,
		"dirty":   dirty,
	}).Info("migrations applied")

	return nil
}

// Status returns the current migration version and dirty state.
func Status(log logrus.FieldLogger, dsn string) (version uint, dirty bool, err error) {
	m, err := newMigrate(dsn)
	if err != nil {
		return 0, false, err
	}

	defer closeMigrate(log, m)

	version, dirty, err = m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}

	if err != nil {
		return 0, false, err
	}

	return version, dirty, nil
}

func newMigrate(dsn string) (*migrate.Migrate, error) {
	source, err := iofs.New(files, "sql")
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded migrations: %w", err)
	}

	connStr, err := connectionString(dsn)
	if err != nil {
		return nil, err
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to create migration instance: %w", err)
	}

	return m, nil
}

func closeMigrate(log logrus.FieldLogger, m *migrate.Migrate) {
	if srcErr, dbErr := m.Close(); srcErr != nil || dbErr != nil {
		log.WithFields(logrus.Fields{
			"source_error":   srcErr,
			"database_error": dbErr,
		}).Warn("failed to close migration instance")
	}
}

// connectionString builds the golang-migrate ClickHouse URL for dsn.
func connectionString(dsn string) (string, error) {
	opts, err := clickhouse.Options(dsn)
	if err != nil {
		return "", err
	}

	q := url.Values{}
	q.Set("username", opts.Auth.Username)
	q.Set("database", opts.Auth.Database)
	q.Set("x-multi-statement", "true")
	q.Set("x-migrations-table", config.SchemaMigrationsTable)
	q.Set("x-migrations-table-engine", "MergeTree")

	if opts.Auth.Password != "" {
		q.Set("password", opts.Auth.Password)
	}

	return fmt.Sprintf("clickhouse://%s?%s", opts.Addr[0], q.Encode()), nil
}
