package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ethpandaops/uimatrix/internal/actions"
	"github.com/ethpandaops/uimatrix/internal/artifact"
	"github.com/ethpandaops/uimatrix/internal/config"
	"github.com/ethpandaops/uimatrix/internal/matrix"
	"github.com/ethpandaops/uimatrix/internal/metrics"
	"github.com/ethpandaops/uimatrix/internal/output"
	"github.com/ethpandaops/uimatrix/internal/page/chrome"
	"github.com/ethpandaops/uimatrix/internal/report"
	"github.com/ethpandaops/uimatrix/internal/resultstore"
	"github.com/ethpandaops/uimatrix/internal/runner"
)

var (
	// errRunFailed is returned when at least one result needs attention.
	errRunFailed = errors.New("run failed")

	runLanes           int
	runDeadline        time.Duration
	runActionTimeout   time.Duration
	runGroup           string
	runFilter          string
	runJSONPath        string
	runVerbose         bool
	runMetricsTextfile string
	runClickhouseURL   string
	runArtifactDir     string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run every scenario across its device matrix",
	Long: `Expand the run configuration into one scenario per device and execute them
on a bounded number of browser pages.

Scenarios declared as expected failures pass the run when they fail. The command
exits non-zero when any scenario fails or an expected failure unexpectedly passes.

Example:
  uimatrix run --config scenarios/demoqa.yaml --lanes 4
  uimatrix run --group mobile --filter text_box --json results.json`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().IntVar(&runLanes, "lanes", 0, "Concurrent browser pages (default LANES or 4)")
	runCmd.Flags().DurationVar(&runDeadline, "deadline", 0, "Run deadline; scenarios not started in time are skipped (0 = none)")
	runCmd.Flags().DurationVar(&runActionTimeout, "action-timeout", config.DefaultRunConfig().ActionTimeout, "Timeout for each page action")
	runCmd.Flags().StringVar(&runGroup, "group", "", "Only run devices in this group")
	runCmd.Flags().StringVar(&runFilter, "filter", "", "Only run scenarios whose name contains this text")
	runCmd.Flags().StringVar(&runJSONPath, "json", "", "Write the run summary as JSON to this path")
	runCmd.Flags().BoolVar(&runVerbose, "verbose", false, "Verbose output")
	runCmd.Flags().StringVar(&runMetricsTextfile, "metrics-textfile", "", "Write Prometheus metrics to this textfile")
	runCmd.Flags().StringVar(&runClickhouseURL, "clickhouse-url", "", "Export results to ClickHouse (default CLICKHOUSE_URL)")
	runCmd.Flags().StringVar(&runArtifactDir, "artifact-dir", "", "Failure screenshot directory (default ARTIFACT_DIR)")
}

// setupCleanupHandler cancels the run on the first SIGINT/SIGTERM so pending
// scenarios are reported as skipped; a second signal exits immediately.
func setupCleanupHandler(log logrus.FieldLogger, cancel context.CancelFunc) func() {
	sigChan := make(chan os.Signal, 2)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		if _, ok := <-sigChan; !ok {
			return
		}

		log.Warn("Received interrupt signal, finishing in-flight scenarios...")
		cancel()

		if _, ok := <-sigChan; ok {
			os.Exit(130) // Exit code 130 = 128 + SIGINT(2)
		}
	}()

	return func() {
		signal.Stop(sigChan)
		close(sigChan)
	}
}

func runRun(cmd *cobra.Command, _ []string) error {
	log := newLogger(runVerbose)

	cfg, err := appConfig()
	if err != nil {
		return err
	}

	applyRunOverrides(cmd, cfg)

	formatter := output.NewFormatter(log, os.Stdout, runVerbose)

	started := time.Now()

	prepared, err := actions.Prepare(log, configPath, cfg.BaseURL, matrix.Filter{Group: runGroup, Name: runFilter})
	if err != nil {
		return err
	}

	formatter.PrintProgress(fmt.Sprintf("Loaded %d scenarios (%d excluded pairs)",
		len(prepared.Matrix.Scenarios), len(prepared.Matrix.Skipped)), time.Since(started))

	runCfg := config.DefaultRunConfig()
	runCfg.Lanes = cfg.Lanes
	runCfg.Deadline = runDeadline
	runCfg.ActionTimeout = runActionTimeout

	if err := runCfg.Validate(); err != nil {
		return fmt.Errorf("invalid run configuration: %w", err)
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	stopSignals := setupCleanupHandler(log, cancel)
	defer stopSignals()

	browser := chrome.NewBrowser(log, chrome.Options{
		RemoteURL:      cfg.ChromeURL,
		Headless:       cfg.Headless,
		NavigationRate: cfg.NavigationRate,
	})

	if err := browser.Start(ctx); err != nil {
		return err
	}

	defer func() {
		if err := browser.Stop(); err != nil {
			log.WithError(err).Warn("failed to stop browser")
		}
	}()

	runID := uuid.NewString()
	recorder := metrics.NewRecorder()
	recorder.RecordSkipped(len(prepared.Matrix.Skipped))

	driver := runner.NewDriver(&runner.Options{
		Logger:    log,
		Config:    runCfg,
		RunID:     runID,
		Pages:     browser,
		Targets:   prepared.Targets,
		Artifacts: artifact.NewDiskStore(log, cfg.ArtifactDir, runID, cfg.ArtifactMaxBytes),
		Observer:  recorder,
	})

	formatter.PrintPhase(fmt.Sprintf("Running %d scenarios on %d lanes", len(prepared.Matrix.Scenarios), runCfg.Lanes))

	summary, err := driver.Run(ctx, prepared.Matrix)
	if err != nil {
		return fmt.Errorf("running scenarios: %w", err)
	}

	formatter.PrintResults(summary)
	formatter.PrintSummary(summary)

	publish(context.WithoutCancel(ctx), log, formatter, cfg, summary, recorder)

	if !summary.Success {
		return fmt.Errorf("%w: %d scenarios need attention", errRunFailed, len(summary.Attention))
	}

	return nil
}

// applyRunOverrides lets explicit flags win over the environment.
func applyRunOverrides(cmd *cobra.Command, cfg *config.AppConfig) {
	if cmd.Flags().Changed("lanes") {
		cfg.Lanes = runLanes
	}

	if runArtifactDir != "" {
		cfg.ArtifactDir = runArtifactDir
	}

	if runClickhouseURL != "" {
		cfg.ClickhouseURL = runClickhouseURL
	}
}

// publish writes the optional outputs. Failures are reported but do not change
// the run result.
func publish(
	ctx context.Context,
	log logrus.FieldLogger,
	formatter output.Formatter,
	cfg *config.AppConfig,
	summary *report.Summary,
	recorder *metrics.Recorder,
) {
	if runJSONPath != "" {
		if err := output.WriteJSON(runJSONPath, summary); err != nil {
			formatter.PrintError("Failed to write JSON summary", err)
		} else {
			formatter.PrintSuccess("Summary written to " + runJSONPath)
		}
	}

	if runMetricsTextfile != "" {
		if err := recorder.WriteTextfile(runMetricsTextfile); err != nil {
			formatter.PrintError("Failed to write metrics", err)
		}
	}

	if cfg.ClickhouseURL == "" {
		return
	}

	store := resultstore.NewStore(log, cfg.ClickhouseURL)
	if err := store.Start(ctx); err != nil {
		formatter.PrintError("Failed to open result store", err)

		return
	}

	defer func() {
		if err := store.Stop(); err != nil {
			log.WithError(err).Warn("failed to close result store")
		}
	}()

	rows, err := store.Export(ctx, summary)
	if err != nil {
		formatter.PrintError("Failed to export results", err)

		return
	}

	formatter.PrintSuccess(fmt.Sprintf("Exported %d rows to ClickHouse", rows))
}

func exitCode(err error) int {
	if errors.Is(err, errRunFailed) {
		return 1
	}

	return 2
}
