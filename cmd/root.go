// Package cmd contains the uimatrix CLI commands.
package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ethpandaops/uimatrix/internal/config"
)

var (
	// Logger is the shared logger instance for all commands
	Logger *logrus.Logger

	envFile    string
	configPath string

	rootCmd = &cobra.Command{
		Use:   "uimatrix",
		Short: "uimatrix - device matrix runner for browser UI scenarios",
		Long: `uimatrix runs declarative UI scenarios against every device viewport they
target and reports which combinations pass, fail, or fail as expected.

Run without arguments to launch interactive mode, or use subcommands for direct operations.`,
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return loadEnv()
		},
	}
)

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env", "", "Environment file to load (default .env if present)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultScenarioFile, "Run configuration file")

	InitLogger()
}

// InitLogger (re)initializes Logger from LOG_LEVEL.
func InitLogger() {
	Logger = logrus.New()

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}

	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		fmt.Printf("Invalid LOG_LEVEL '%s', defaulting to 'info'\n", logLevel)
		level = logrus.InfoLevel
	}

	Logger.SetLevel(level)
}

// loadEnv loads the --env file into the environment so every command sees it.
func loadEnv() error {
	var files []string
	if envFile != "" {
		files = append(files, envFile)
	}

	if _, err := config.Load(files...); err != nil {
		return err
	}

	InitLogger()

	return nil
}

// appConfig returns the environment configuration after loadEnv ran.
func appConfig() (*config.AppConfig, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return cfg, nil
}
