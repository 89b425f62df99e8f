// Package runner executes an expanded scenario matrix on a bounded set of page lanes.
package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/ethpandaops/uimatrix/internal/artifact"
	"github.com/ethpandaops/uimatrix/internal/assertion"
	"github.com/ethpandaops/uimatrix/internal/config"
	"github.com/ethpandaops/uimatrix/internal/matrix"
	"github.com/ethpandaops/uimatrix/internal/page"
	"github.com/ethpandaops/uimatrix/internal/report"
	"github.com/ethpandaops/uimatrix/internal/scenario"
)

// ErrOpenLane is returned when a lane's page cannot be opened. The run aborts
// before any scenario starts.
var ErrOpenLane = errors.New("opening lane page")

// Options wires a Driver.
type Options struct {
	Logger    logrus.FieldLogger
	Config    *config.RunConfig
	RunID     string
	Pages     page.Factory
	Targets   *page.Targets
	Evaluator assertion.Evaluator
	// Artifacts may be nil to disable failure capture.
	Artifacts artifact.Store
	// Collector defaults to a fresh report collector.
	Collector report.Collector
	// Observer defaults to a no-op.
	Observer Observer
}

// Driver runs scenarios. One Driver performs one run.
type Driver struct {
	log       logrus.FieldLogger
	cfg       *config.RunConfig
	runID     string
	pages     page.Factory
	targets   *page.Targets
	evaluator assertion.Evaluator
	artifacts artifact.Store
	collector report.Collector
	observer  Observer
}

type job struct {
	index    int
	scenario matrix.Scenario
}

// NewDriver creates a driver. A run id is generated when none is given.
func NewDriver(opts *Options) *Driver {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultRunConfig()
	}

	runID := opts.RunID
	if runID == "" {
		runID = uuid.NewString()
	}

	log := opts.Logger.WithFields(logrus.Fields{
		"component": "driver",
		"run_id":    runID,
	})

	evaluator := opts.Evaluator
	if evaluator == nil {
		evaluator = assertion.NewEvaluator(opts.Logger)
	}

	collector := opts.Collector
	if collector == nil {
		collector = report.NewCollector(opts.Logger, runID)
	}

	observer := opts.Observer
	if observer == nil {
		observer = nopObserver{}
	}

	return &Driver{
		log:       log,
		cfg:       cfg,
		runID:     runID,
		pages:     opts.Pages,
		targets:   opts.Targets,
		evaluator: evaluator,
		artifacts: opts.Artifacts,
		collector: collector,
		observer:  observer,
	}
}

// RunID returns the id of this run.
func (d *Driver) RunID() string {
	return d.runID
}

// Run executes the plan and returns its summary. An error is returned only if
// the run could not start or a result could not be recorded; scenario failures
// are data in the summary.
func (d *Driver) Run(ctx context.Context, plan *matrix.Plan) (*report.Summary, error) {
	if d.cfg.Deadline > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, d.cfg.Deadline)
		defer cancel()
	}

	if err := d.collector.Start(ctx); err != nil {
		return nil, fmt.Errorf("starting collector: %w", err)
	}

	d.collector.RecordSkipped(plan.Skipped...)

	lanes := d.cfg.Lanes
	if lanes > len(plan.Scenarios) {
		lanes = len(plan.Scenarios)
	}

	d.log.WithFields(logrus.Fields{
		"scenarios": len(plan.Scenarios),
		"skipped":   len(plan.Skipped),
		"lanes":     lanes,
	}).Info("starting run")

	pages, err := d.openLanes(ctx, lanes)
	if err != nil {
		_ = d.collector.Stop()

		return nil, err
	}

	defer d.closeLanes(pages)

	queue := make(chan job, len(plan.Scenarios))
	for i, sc := range plan.Scenarios {
		queue <- job{index: i, scenario: sc}
	}
	close(queue)

	// Lanes never cancel each other: a scenario failure is a result, not an error.
	var g errgroup.Group

	for i, p := range pages {
		lane, lanePage := i, p

		g.Go(func() error {
			return d.lane(ctx, lane, lanePage, queue)
		})
	}

	runErr := g.Wait()

	if err := d.collector.Stop(); err != nil {
		d.log.WithError(err).Warn("failed to stop collector")
	}

	summary := d.collector.Summary()

	d.log.WithFields(logrus.Fields{
		"passed":   summary.Count(report.OutcomePassed),
		"failed":   summary.Count(report.OutcomeFailed),
		"xfail":    summary.Count(report.OutcomeXFailConfirmed),
		"xpass":    summary.Count(report.OutcomeXFailUnexpectedlyPassed),
		"timeout":  summary.Count(report.OutcomeSkippedTimeout),
		"skipped":  summary.Count(report.OutcomeSkipped),
		"success":  summary.Success,
		"duration": summary.Timing.Wall,
	}).Info("run finished")

	return &summary, runErr
}

// openLanes opens every lane page up front. On failure any page already opened
// is closed.
func (d *Driver) openLanes(ctx context.Context, lanes int) ([]page.Page, error) {
	pages := make([]page.Page, lanes)

	g, gctx := errgroup.WithContext(ctx)

	for i := 0; i < lanes; i++ {
		lane := i

		g.Go(func() error {
			p, err := d.pages.NewPage(gctx)
			if err != nil {
				return fmt.Errorf("%w %d: %w", ErrOpenLane, lane, err)
			}

			// No mutex needed - each lane writes to its own index
			pages[lane] = p

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		d.closeLanes(pages)

		return nil, err
	}

	return pages, nil
}

func (d *Driver) closeLanes(pages []page.Page) {
	for i, p := range pages {
		if p == nil {
			continue
		}

		if err := p.Close(); err != nil {
			d.log.WithError(err).WithField("lane", i).Warn("failed to close lane page")
		}
	}
}

// lane pulls scenarios until the queue is drained. Once the run context is done
// the remaining scenarios are recorded as skipped-timeout without starting.
func (d *Driver) lane(ctx context.Context, lane int, p page.Page, queue <-chan job) error {
	log := d.log.WithField("lane", lane)

	for j := range queue {
		var res *report.Result

		if ctx.Err() != nil {
			res = timedOut(j)

			log.WithField("scenario", j.scenario.Key).Warn("run deadline passed, scenario not started")
		} else {
			res = d.execute(ctx, log, p, j)
		}

		if err := d.collector.Record(res); err != nil {
			return fmt.Errorf("recording %s: %w", res.Key, err)
		}

		d.observer.ScenarioFinished(res)
	}

	return nil
}

func timedOut(j job) *report.Result {
	sc := j.scenario

	return &report.Result{
		Index:           j.index,
		Key:             sc.Key,
		Scenario:        sc.Name(),
		Device:          sc.Device.ID,
		Page:            sc.Page(),
		ExpectedOutcome: sc.Descriptor.ExpectedOutcome(),
		Reason:          sc.Descriptor.Reason(),
		Outcome:         report.OutcomeSkippedTimeout,
		State:           report.StateSkippedTimeout,
		Error:           "run deadline passed before the scenario started",
	}
}

// execute runs one scenario to a terminal state. The scenario runs detached from
// run cancellation so a started action sequence is never cut short; each
// capability call is bounded by the action timeout instead.
func (d *Driver) execute(runCtx context.Context, laneLog logrus.FieldLogger, p page.Page, j job) *report.Result {
	sc := j.scenario
	ctx := context.WithoutCancel(runCtx)

	log := laneLog.WithFields(logrus.Fields{
		"scenario": sc.Name(),
		"device":   sc.Device.ID,
		"page":     sc.Page(),
	})

	res := &report.Result{
		Index:           j.index,
		Key:             sc.Key,
		Scenario:        sc.Name(),
		Device:          sc.Device.ID,
		Page:            sc.Page(),
		ExpectedOutcome: sc.Descriptor.ExpectedOutcome(),
		Reason:          sc.Descriptor.Reason(),
		State:           report.StateRunning,
		StartedAt:       time.Now(),
	}

	log.Debug("scenario running")

	s := &session{
		driver: d,
		log:    log,
		page:   p,
		res:    res,
	}

	results, err := s.run(ctx, sc)
	res.Assertions = results

	satisfied := false

	if err != nil {
		res.State = report.StateErrored
		res.Error = err.Error()
	} else {
		res.State = report.StateCompleted
		satisfied = assertion.AllSatisfied(results)
	}

	res.Outcome = report.Classify(satisfied, res.ExpectedOutcome)

	if err != nil || (!satisfied && res.ExpectedOutcome == scenario.OutcomeNormal) {
		res.Artifact = d.captureArtifact(ctx, log, p, sc.Key)
	}

	res.Duration = time.Since(res.StartedAt)

	entry := log.WithFields(logrus.Fields{
		"outcome":  res.Outcome,
		"state":    res.State,
		"duration": res.Duration,
	})

	switch {
	case err != nil:
		entry.WithError(err).Error("scenario errored")
	case res.Outcome.NeedsAttention():
		entry.Warn("scenario needs attention")
	default:
		entry.Info("scenario finished")
	}

	return res
}

// captureArtifact takes and stores a screenshot. Failures are logged and swallowed.
func (d *Driver) captureArtifact(ctx context.Context, log logrus.FieldLogger, p page.Page, key string) string {
	if d.artifacts == nil {
		return ""
	}

	ctx, cancel := context.WithTimeout(ctx, d.cfg.ArtifactTimeout)
	defer cancel()

	data, err := p.Screenshot(ctx)
	if err != nil {
		log.WithError(err).Warn("failed to capture screenshot")
		d.observer.ArtifactCaptured(false)

		return ""
	}

	path, err := d.artifacts.SaveArtifact(ctx, key, data)
	if err != nil {
		log.WithError(err).Warn("failed to save screenshot")
		d.observer.ArtifactCaptured(false)

		return ""
	}

	log.WithField("path", path).Info("saved failure screenshot")
	d.observer.ArtifactCaptured(true)

	return path
}
