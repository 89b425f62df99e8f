package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ethpandaops/uimatrix/internal/actions"
	"github.com/ethpandaops/uimatrix/internal/interactive"
)

var assumeYes bool

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Create the ClickHouse result store (safe to run multiple times)",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := appConfig()
		if err != nil {
			return err
		}

		if err := actions.Setup(cmd.Context(), Logger, cfg, false); err != nil {
			return err
		}

		if !assumeYes && !interactive.Confirm("Do you want to proceed with the setup?") {
			fmt.Println("Setup canceled.")

			return nil
		}

		return actions.Setup(cmd.Context(), Logger, cfg, true)
	},
}

var teardownCmd = &cobra.Command{
	Use:   "teardown",
	Short: "Drop the ClickHouse result store tables (destructive)",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := appConfig()
		if err != nil {
			return err
		}

		if err := actions.Teardown(cmd.Context(), Logger, cfg, false); err != nil {
			return err
		}

		if !assumeYes && !interactive.Confirm("⚠️  Are you SURE you want to drop the result tables? This cannot be undone!") {
			fmt.Println("Teardown canceled.")

			return nil
		}

		return actions.Teardown(cmd.Context(), Logger, cfg, true)
	},
}

func init() {
	rootCmd.AddCommand(setupCmd)
	rootCmd.AddCommand(teardownCmd)

	for _, c := range []*cobra.Command{setupCmd, teardownCmd} {
		c.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Skip the confirmation prompt")
	}
}
