package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/ethpandaops/uimatrix/internal/device"
	"github.com/ethpandaops/uimatrix/internal/output"
	"github.com/ethpandaops/uimatrix/internal/page"
	"github.com/ethpandaops/uimatrix/internal/scenario"
)

var devicesBuiltin bool

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List device profiles and groups",
	Long:  `Lists the device catalog of the run configuration, or the built-in catalog with --builtin.`,
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		catalog := device.Defaults()

		if !devicesBuiltin {
			rc, err := scenario.NewLoader(Logger, page.DefaultTargets).LoadFile(configPath)
			if err != nil {
				return err
			}

			catalog = rc.Catalog
		}

		output.NewFormatter(Logger, os.Stdout, false).PrintDevices(catalog)

		return nil
	},
}

func init() {
	rootCmd.AddCommand(devicesCmd)

	devicesCmd.Flags().BoolVar(&devicesBuiltin, "builtin", false, "Show the built-in catalog instead of the run configuration's")
}
