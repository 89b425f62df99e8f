package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ethpandaops/uimatrix/internal/actions"
	"github.com/ethpandaops/uimatrix/internal/matrix"
	"github.com/ethpandaops/uimatrix/internal/output"
)

var validateVerbose bool

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the run configuration without opening a browser",
	Long: `Loads the run configuration, validates every scenario and expands the device
matrix. All invalid scenarios are reported together.`,
	Args: cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		log := newLogger(validateVerbose)

		cfg, err := appConfig()
		if err != nil {
			return err
		}

		prepared, err := actions.Prepare(log, configPath, cfg.BaseURL, matrix.Filter{})
		if err != nil {
			return err
		}

		formatter := output.NewFormatter(log, os.Stdout, validateVerbose)

		if validateVerbose {
			for _, sc := range prepared.Matrix.Scenarios {
				formatter.PrintProgress("  "+sc.Key, 0)
			}
		}

		formatter.PrintSuccess(fmt.Sprintf("✓ %s: %d descriptors, %d scenarios, %d excluded pairs",
			configPath,
			len(prepared.Config.Descriptors),
			len(prepared.Matrix.Scenarios),
			len(prepared.Matrix.Skipped),
		))

		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().BoolVar(&validateVerbose, "verbose", false, "List every expanded scenario key")
}
