// Package resultstore exports run results to ClickHouse.
package resultstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/sirupsen/logrus"

	"github.com/ethpandaops/uimatrix/internal/clickhouse"
	"github.com/ethpandaops/uimatrix/internal/config"
	"github.com/ethpandaops/uimatrix/internal/migrations"
	"github.com/ethpandaops/uimatrix/internal/report"
)

// ErrNotStarted is returned by Export before Start.
var ErrNotStarted = errors.New("result store not started")

// Row is one scenario_results row.
type Row struct {
	RunID              string    `ch:"run_id"`
	ScenarioKey        string    `ch:"scenario_key"`
	Scenario           string    `ch:"scenario"`
	Device             string    `ch:"device"`
	Page               string    `ch:"page"`
	ExpectedOutcome    string    `ch:"expected_outcome"`
	Outcome            string    `ch:"outcome"`
	State              string    `ch:"state"`
	Reason             string    `ch:"reason"`
	Error              string    `ch:"error"`
	Artifact           string    `ch:"artifact"`
	AssertionsTotal    uint32    `ch:"assertions_total"`
	AssertionsFailed   uint32    `ch:"assertions_failed"`
	NavigationAttempts uint8     `ch:"navigation_attempts"`
	DurationMs         float64   `ch:"duration_ms"`
	StartedAt          time.Time `ch:"started_at"`
}

// Rows flattens a summary into one row per executed result and per excluded
// pair. Excluded pairs never ran and carry the pending state.
func Rows(s *report.Summary) []Row {
	rows := make([]Row, 0, len(s.Results)+len(s.Skipped))

	for i := range s.Results {
		r := &s.Results[i]

		rows = append(rows, Row{
			RunID:              s.RunID,
			ScenarioKey:        r.Key,
			Scenario:           r.Scenario,
			Device:             r.Device,
			Page:               r.Page,
			ExpectedOutcome:    string(r.ExpectedOutcome),
			Outcome:            string(r.Outcome),
			State:              string(r.State),
			Reason:             r.Reason,
			Error:              r.Error,
			Artifact:           r.Artifact,
			AssertionsTotal:    uint32(len(r.Assertions)),        //nolint:gosec // bounded by scenario size
			AssertionsFailed:   uint32(len(r.FailedAssertions())), //nolint:gosec // bounded by scenario size
			NavigationAttempts: uint8(r.NavigationAttempts),       //nolint:gosec // at most two per navigation
			DurationMs:         float64(r.Duration) / float64(time.Millisecond),
			StartedAt:          r.StartedAt.UTC(),
		})
	}

	for _, sk := range s.Skipped {
		rows = append(rows, Row{
			RunID:       s.RunID,
			ScenarioKey: sk.Key,
			Scenario:    sk.Scenario,
			Device:      sk.Device,
			Page:        sk.Page,
			Outcome:     string(report.OutcomeSkipped),
			State:       string(report.StatePending),
			Reason:      sk.Reason,
		})
	}

	return rows
}

// Store persists run summaries.
type Store interface {
	Start(ctx context.Context) error
	Stop() error
	// Export writes every row of the summary in one batch and returns the row count.
	Export(ctx context.Context, s *report.Summary) (int, error)
}

type store struct {
	log  logrus.FieldLogger
	dsn  string
	conn driver.Conn
}

// NewStore creates a ClickHouse result store for dsn.
func NewStore(log logrus.FieldLogger, dsn string) Store {
	return &store{
		log: log.WithField("component", "resultstore"),
		dsn: dsn,
	}
}

// Start creates the database, applies migrations and opens the connection.
func (s *store) Start(ctx context.Context) error {
	opts, err := clickhouse.Options(s.dsn)
	if err != nil {
		return err
	}

	database := opts.Auth.Database

	// The target database may not exist yet, so bootstrap through the default one.
	bootstrapDSN, err := clickhouse.WithDatabase(s.dsn, clickhouse.DefaultDatabase)
	if err != nil {
		return err
	}

	bootstrap, err := clickhouse.Connect(ctx, bootstrapDSN)
	if err != nil {
		return err
	}

	err = clickhouse.CreateDatabase(ctx, bootstrap, database)
	_ = bootstrap.Close()

	if err != nil {
		return err
	}

	if err := migrations.Up(s.log, s.dsn); err != nil {
		return err
	}

	conn, err := clickhouse.Connect(ctx, s.dsn)
	if err != nil {
		return err
	}

	s.conn = conn

	s.log.WithField("database", database).Info("result store started")

	return nil
}

func (s *store) Stop() error {
	if s.conn == nil {
		return nil
	}

	err := s.conn.Close()
	s.conn = nil

	if err != nil {
		return fmt.Errorf("closing clickhouse connection: %w", err)
	}

	return nil
}

func (s *store) Export(ctx context.Context, sum *report.Summary) (int, error) {
	if s.conn == nil {
		return 0, ErrNotStarted
	}

	rows := Rows(sum)
	if len(rows) == 0 {
		return 0, nil
	}

	batch, err := s.conn.PrepareBatch(ctx, "INSERT INTO "+config.ResultsTable)
	if err != nil {
		return 0, fmt.Errorf("preparing batch: %w", err)
	}

	for i := range rows {
		if err := batch.AppendStruct(&rows[i]); err != nil {
			_ = batch.Abort()

			return 0, fmt.Errorf("appending row %s: %w", rows[i].ScenarioKey, err)
		}
	}

	if err := batch.Send(); err != nil {
		return 0, fmt.Errorf("sending batch: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"run_id": sum.RunID,
		"rows":   len(rows),
	}).Info("exported results")

	return len(rows), nil
}

var _ Store = (*store)(nil)
