package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/exec"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/ethpandaops/uimatrix/cmd"
	"github.com/ethpandaops/uimatrix/internal/actions"
	"github.com/ethpandaops/uimatrix/internal/config"
	"github.com/ethpandaops/uimatrix/internal/device"
	"github.com/ethpandaops/uimatrix/internal/interactive"
)

func runInteractive(envFile string) {
	fmt.Println("uimatrix - Interactive Mode")
	fmt.Println("===========================")
	fmt.Println()

	for {
		options := []interactive.MenuOption{
			{
				Name:        "▶️  Run",
				Description: "Run scenarios across the device matrix",
				Action:      func() error { return showRunMenu(envFile) },
			},
			{
				Name:        "✅ Validate",
				Description: "Validate the run configuration",
				Action: func() error {
					return runCLICommand(envFile, "validate", "--verbose")
				},
			},
			{
				Name:        "📱 Devices",
				Description: "List device profiles and groups",
				Action: func() error {
					return runCLICommand(envFile, "devices")
				},
			},
			{
				Name:        "🗄️  Result Store",
				Description: "Setup or teardown the ClickHouse result store",
				Action:      showResultStoreMenu,
			},
			{
				Name:        "📋 Show Config",
				Description: "Display current environment configuration",
				Action: func() error {
					if err := actions.ShowConfig(); err != nil {
						fmt.Printf("\n❌ Error: %v\n", err)
					}

					interactive.PauseForEnter()

					return nil
				},
			},
		}

		if err := interactive.ShowMenu("What would you like to do?", options); err != nil {
			if errors.Is(err, interactive.ErrExit) {
				fmt.Println("Goodbye!")
				return
			}

			log.Fatal(err)
		}

		fmt.Println()
	}
}

func showRunMenu(envFile string) error {
	groups := make([]string, 0, len(device.DefaultGroups)+1)
	for name := range device.DefaultGroups {
		groups = append(groups, name)
	}

	sort.Strings(groups)
	groups = append([]string{"all"}, groups...)

	group, err := interactive.SelectFromList("Select device group:", groups)
	if err != nil {
		fmt.Println("Selection canceled.")
		interactive.PauseForEnter()

		return nil
	}

	filter, err := interactive.Input("Scenario name filter (empty for all):", "")
	if err != nil {
		fmt.Println("Input canceled.")
		interactive.PauseForEnter()

		return nil
	}

	args := []string{"run"}
	if group != "all" {
		args = append(args, "--group", group)
	}

	if filter != "" {
		args = append(args, "--filter", filter)
	}

	if interactive.Confirm("Enable verbose output?") {
		args = append(args, "--verbose")
	}

	return runCLICommand(envFile, args...)
}

func showResultStoreMenu() error {
	for {
		options := []interactive.MenuOption{
			{
				Name:        "Setup",
				Description: "Create the result database and tables (safe to run multiple times)",
				Action: func() error {
					return confirmResultStore(actions.Setup, "Do you want to proceed with the setup?")
				},
			},
			{
				Name:        "Teardown",
				Description: "Drop the result tables (destructive)",
				Action: func() error {
					return confirmResultStore(actions.Teardown, "⚠️  Are you SURE you want to drop the result tables? This cannot be undone!")
				},
			},
		}

		fmt.Println("\n🗄️  Result Store")
		fmt.Println("===============")

		if err := interactive.ShowMenu("Select an action:", options); err != nil {
			if errors.Is(err, interactive.ErrExit) {
				return nil // Return to main menu
			}

			return err
		}
	}
}

// confirmResultStore previews step, asks question and runs step for real on yes.
func confirmResultStore(step func(context.Context, logrus.FieldLogger, *config.AppConfig, bool) error, question string) error {
	defer interactive.PauseForEnter()

	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("\n❌ Error: %v\n", err)
		return nil
	}

	if err := step(ctx, cmd.Logger, cfg, false); err != nil {
		fmt.Printf("\n❌ Error: %v\n", err)
		return nil
	}

	if !interactive.Confirm(question) {
		fmt.Println("Canceled.")
		return nil
	}

	if err := step(ctx, cmd.Logger, cfg, true); err != nil {
		fmt.Printf("\n❌ Error: %v\n", err)
	}

	return nil
}

// runCLICommand re-executes this binary with args so each run gets a fresh process.
func runCLICommand(envFile string, args ...string) error {
	binaryPath, err := os.Executable()
	if err != nil {
		fmt.Printf("\n❌ Cannot locate binary: %v\n", err)
		interactive.PauseForEnter()

		return nil
	}

	if envFile != "" {
		args = append([]string{"--env", envFile}, args...)
	}

	fmt.Printf("\n🚀 Running: uimatrix %v\n\n", args)

	// #nosec G204 -- binaryPath is this executable and args come from menu selections
	c := exec.Command(binaryPath, args...)
	c.Stdout = os.Stdout
	c.Stderr = os.Stderr
	c.Stdin = os.Stdin

	if err := c.Run(); err != nil {
		fmt.Printf("\n❌ Command failed: %v\n", err)
	}

	interactive.PauseForEnter()

	return nil
}
