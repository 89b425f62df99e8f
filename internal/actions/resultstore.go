package actions

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/ethpandaops/uimatrix/internal/clickhouse"
	"github.com/ethpandaops/uimatrix/internal/config"
	"github.com/ethpandaops/uimatrix/internal/migrations"
	"github.com/ethpandaops/uimatrix/internal/resultstore"
)

// ErrClickhouseNotSet is returned when no result store is configured.
var ErrClickhouseNotSet = errors.New("CLICKHOUSE_URL is not set")

// Setup creates the result store database and applies migrations. With
// skipConfirm false it only prints the target so the caller can confirm.
func Setup(ctx context.Context, log logrus.FieldLogger, cfg *config.AppConfig, skipConfirm bool) error {
	if err := printTarget(cfg, "Setup"); err != nil {
		return err
	}

	if !skipConfirm {
		return nil
	}

	store := resultstore.NewStore(log, cfg.ClickhouseURL)
	if err := store.Start(ctx); err != nil {
		return fmt.Errorf("setting up result store: %w", err)
	}

	if err := store.Stop(); err != nil {
		return err
	}

	version, dirty, err := migrations.Status(log, cfg.ClickhouseURL)
	if err != nil {
		return fmt.Errorf("reading migration status: %w", err)
	}

	fmt.Printf("✅ Result store ready (migration version %d, dirty=%t)\n", version, dirty)

	return nil
}

// Teardown drops the result and migration tables once the server hostname passes
// the CLICKHOUSE_SAFE_HOSTNAMES allowlist. With skipConfirm false it only prints
// the target so the caller can confirm.
func Teardown(ctx context.Context, log logrus.FieldLogger, cfg *config.AppConfig, skipConfirm bool) error {
	if err := printTarget(cfg, "Teardown"); err != nil {
		return err
	}

	if !skipConfirm {
		fmt.Printf("⚠️  This drops %s and all stored results.\n", config.ResultsTable)

		return nil
	}

	conn, err := clickhouse.Connect(ctx, cfg.ClickhouseURL)
	if err != nil {
		return err
	}

	defer func() {
		_ = conn.Close()
	}()

	if err := clickhouse.NewHostGuard(log, cfg.SafeHostnames).Check(ctx, conn); err != nil {
		return err
	}

	for _, table := range []string{config.ResultsTable, config.SchemaMigrationsTable} {
		if err := conn.Exec(ctx, fmt.Sprintf("DROP TABLE IF EXISTS `%s`", table)); err != nil {
			return fmt.Errorf("dropping %s: %w", table, err)
		}
	}

	fmt.Println("✅ Result store tables dropped")

	return nil
}

func printTarget(cfg *config.AppConfig, title string) error {
	if cfg.ClickhouseURL == "" {
		return ErrClickhouseNotSet
	}

	opts, err := clickhouse.Options(cfg.ClickhouseURL)
	if err != nil {
		return err
	}

	fmt.Printf("\n📋 %s Configuration:\n", title)
	fmt.Printf("ClickHouse Host: %s\n", opts.Addr[0])
	fmt.Printf("Username:        %s\n", opts.Auth.Username)
	fmt.Printf("Database:        %s\n", opts.Auth.Database)
	fmt.Printf("Table:           %s\n\n", config.ResultsTable)

	return nil
}
