package cmd

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ethpandaops/uimatrix/internal/config"
)

func TestExitCode(t *testing.T) {
	assert.Equal(t, 1, exitCode(fmt.Errorf("%w: 2 scenarios need attention", errRunFailed)))
	assert.Equal(t, 2, exitCode(errors.New("invalid configuration")))
}

func TestApplyRunOverrides(t *testing.T) {
	t.Cleanup(func() {
		runLanes, runArtifactDir, runClickhouseURL = 0, "", ""
	})

	cfg := &config.AppConfig{Lanes: 4, ArtifactDir: "screenshots"}

	// Unchanged flags keep the environment values.
	applyRunOverrides(runCmd, cfg)
	assert.Equal(t, 4, cfg.Lanes)

	require.NoError(t, runCmd.Flags().Set("lanes", "2"))
	runArtifactDir = "/tmp/shots"
	runClickhouseURL = "clickhouse://localhost:9000/uimatrix"

	applyRunOverrides(runCmd, cfg)
	assert.Equal(t, 2, cfg.Lanes)
	assert.Equal(t, "/tmp/shots", cfg.ArtifactDir)
	assert.Equal(t, "clickhouse://localhost:9000/uimatrix", cfg.ClickhouseURL)
}
