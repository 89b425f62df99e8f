package table

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/ethpandaops/uimatrix/internal/format"
	"github.com/ethpandaops/uimatrix/internal/report"
)

// SummaryFormatter renders the aggregate of a run.
type SummaryFormatter struct {
	log    logrus.FieldLogger
	colors *ColorHelper
}

// NewSummaryFormatter creates a summary table formatter.
func NewSummaryFormatter(log logrus.FieldLogger) *SummaryFormatter {
	return &SummaryFormatter{
		log:    log.WithField("component", "table.summary_formatter"),
		colors: NewColorHelper(),
	}
}

// Format renders outcome counts and timing, then the excluded pairs.
func (f *SummaryFormatter) Format(s *report.Summary) string {
	summary := NewSection("Summary", "Metric", "Value").
		Add("Run", f.colors.Muted(s.RunID)).
		Add("Total Scenarios", f.colors.Bold(fmt.Sprintf("%d", s.Total)))

	for _, o := range report.Outcomes {
		summary.Add(outcomeLabel(o), f.formatCount(s, o))
	}

	summary.
		Add("Wall Time", format.Duration(s.Timing.Wall)).
		Add("Scenario Time (min/p50/p95/max)", fmt.Sprintf("%s / %s / %s / %s",
			format.Duration(s.Timing.Min),
			format.Duration(s.Timing.P50),
			format.Duration(s.Timing.P95),
			format.Duration(s.Timing.Max),
		)).
		Add("Result", f.formatVerdict(s))

	out := summary.Render(f.colors)

	if len(s.Skipped) > 0 {
		skipped := NewSection("Skipped", "Scenario", "Device", "Page", "Reason")
		for _, sk := range s.Skipped {
			skipped.Add(sk.Scenario, sk.Device, sk.Page, sk.Reason)
		}

		out += skipped.Render(f.colors)
	}

	return out
}

func (f *SummaryFormatter) formatCount(s *report.Summary, o report.Outcome) string {
	n := s.Count(o)
	text := fmt.Sprintf("%d (%.1f%%)", n, format.Percent(n, s.Total))

	if n == 0 {
		return f.colors.Muted(text)
	}

	switch o {
	case report.OutcomePassed:
		return f.colors.Success(text)
	case report.OutcomeFailed, report.OutcomeXFailUnexpectedlyPassed:
		return f.colors.Failure(text)
	case report.OutcomeXFailConfirmed, report.OutcomeSkippedTimeout:
		return f.colors.Warning(text)
	default:
		return text
	}
}

func (f *SummaryFormatter) formatVerdict(s *report.Summary) string {
	if s.Success {
		return f.colors.Success("SUCCESS")
	}

	return f.colors.Failure(fmt.Sprintf("FAILURE (%d need attention)", len(s.Attention)))
}

// outcomeLabel turns "expected-failure-confirmed" into "Expected Failure Confirmed".
func outcomeLabel(o report.Outcome) string {
	words := strings.Split(string(o), "-")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}

	return strings.Join(words, " ")
}
