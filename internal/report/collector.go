package report

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ethpandaops/uimatrix/internal/matrix"
)

// ErrDuplicateResult is returned when a scenario key is recorded twice.
var ErrDuplicateResult = errors.New("result already recorded")

// Collector is the append-only sink lanes write results into.
type Collector interface {
	Start(ctx context.Context) error
	Stop() error
	Record(res *Result) error
	RecordSkipped(skipped ...matrix.Skipped)
	Results() []Result
	Summary() Summary
}

type collector struct {
	log     logrus.FieldLogger
	runID   string
	mu      sync.RWMutex
	results []Result
	keys    map[string]struct{}
	skipped []matrix.Skipped
	start   time.Time
	stop    time.Time
}

// NewCollector creates a collector for one run.
func NewCollector(log logrus.FieldLogger, runID string) Collector {
	return &collector{
		log:     log.WithField("component", "report_collector"),
		runID:   runID,
		results: make([]Result, 0, 64),
		keys:    make(map[string]struct{}, 64),
	}
}

func (c *collector) Start(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.start = time.Now()
	c.stop = time.Time{}

	c.log.Debug("report collector started")

	return nil
}

func (c *collector) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stop = time.Now()

	c.log.Debug("report collector stopped")

	return nil
}

func (c *collector) Record(res *Result) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.keys[res.Key]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateResult, res.Key)
	}

	cp := *res
	cp.Assertions = append(cp.Assertions[:0:0], res.Assertions...)

	c.keys[res.Key] = struct{}{}
	c.results = append(c.results, cp)

	return nil
}

func (c *collector) RecordSkipped(skipped ...matrix.Skipped) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.skipped = append(c.skipped, skipped...)
}

func (c *collector) Results() []Result {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Result, len(c.results))
	copy(out, c.results)

	return out
}

func (c *collector) Summary() Summary {
	c.mu.RLock()
	defer c.mu.RUnlock()

	end := c.stop
	if end.IsZero() {
		end = time.Now()
	}

	var wall time.Duration
	if !c.start.IsZero() {
		wall = end.Sub(c.start)
	}

	return Summarize(c.runID, c.results, c.skipped, wall)
}

var _ Collector = (*collector)(nil)
