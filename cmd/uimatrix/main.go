// Package main is the entry point for the uimatrix application
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/ethpandaops/uimatrix/cmd"
)

const (
	envFlag      = "--env"
	envFlagEqual = "--env="
)

func main() {
	envFile, runTUI := parseArgs(os.Args)

	if runTUI {
		if err := loadEnvFile(envFile); err != nil {
			fmt.Fprintf(os.Stderr, "Error loading env file: %v\n", err)
			os.Exit(1)
		}

		// Initialize cmd.Logger after loading env file
		cmd.InitLogger()
		runInteractive(envFile)

		return
	}

	// Arguments provided - run cobra CLI (it will handle --env flag itself)
	cmd.Execute()
}

// parseArgs extracts the --env value and reports whether only --env (or
// nothing) was given, which starts interactive mode.
func parseArgs(args []string) (envFile string, runTUI bool) {
	rest := make([]string, 0, len(args))

	for i := 1; i < len(args); i++ {
		arg := args[i]

		switch {
		case arg == envFlag:
			if i+1 >= len(args) {
				fmt.Fprintln(os.Stderr, "Error: --env flag requires a value")
				os.Exit(1)
			}

			envFile = args[i+1]
			i++
		case strings.HasPrefix(arg, envFlagEqual):
			envFile = arg[len(envFlagEqual):]
		default:
			rest = append(rest, arg)
		}
	}

	return envFile, len(rest) == 0
}

// loadEnvFile loads the specified environment file
func loadEnvFile(file string) error {
	if file == "" {
		file = ".env"
	}

	if err := godotenv.Load(file); err != nil {
		// If it's the default .env file and it doesn't exist, that's okay
		if file == ".env" && os.IsNotExist(err) {
			return nil
		}

		return fmt.Errorf("failed to load env file '%s': %w", file, err)
	}

	return nil
}
