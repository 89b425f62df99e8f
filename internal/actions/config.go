// Package actions contains the operations shared by the CLI and interactive mode.
package actions

import (
	"fmt"

	"github.com/ethpandaops/uimatrix/internal/config"
)

// ShowConfig displays the current configuration
func ShowConfig(envFiles ...string) error {
	cfg, err := config.Load(envFiles...)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	fmt.Println(cfg.String())

	return nil
}
