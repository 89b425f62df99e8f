package table

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/ethpandaops/uimatrix/internal/assertion"
	"github.com/ethpandaops/uimatrix/internal/format"
	"github.com/ethpandaops/uimatrix/internal/report"
)

const maxDetailLen = 60

// ResultsFormatter renders per-scenario results.
type ResultsFormatter struct {
	log    logrus.FieldLogger
	colors *ColorHelper
}

// NewResultsFormatter creates a results table formatter.
func NewResultsFormatter(log logrus.FieldLogger) *ResultsFormatter {
	return &ResultsFormatter{
		log:    log.WithField("component", "table.results_formatter"),
		colors: NewColorHelper(),
	}
}

// Format renders one row per result followed by failure details for every
// result that needs attention or errored.
func (f *ResultsFormatter) Format(results []report.Result) string {
	if len(results) == 0 {
		return "No scenarios executed"
	}

	var (
		section = NewSection("Scenario Results", "Scenario", "Device", "Page", "Outcome", "Assertions", "Duration", "Details")
		details = make([]report.Result, 0)
	)

	for i := range results {
		r := &results[i]

		failed := len(r.FailedAssertions())
		total := len(r.Assertions)

		var detail string

		switch {
		case r.Error != "":
			detail = f.colors.Muted(format.Truncate(r.Error, maxDetailLen))
		case r.Reason != "":
			detail = f.colors.Muted(format.Truncate(r.Reason, maxDetailLen))
		}

		if r.Outcome.NeedsAttention() || r.State == report.StateErrored {
			details = append(details, *r)
		}

		section.Add(
			r.Scenario,
			r.Device,
			r.Page,
			f.colors.FormatOutcome(r.Outcome),
			f.colors.FormatAssertions(total-failed, total),
			format.Duration(r.Duration),
			detail,
		)
	}

	f.log.WithFields(logrus.Fields{"rows": len(section.Rows), "details": len(details)}).Debug("formatting results")

	out := section.Render(f.colors)

	if len(details) > 0 {
		out += f.formatDetails(details)
	}

	return out
}

func (f *ResultsFormatter) formatDetails(results []report.Result) string {
	var b strings.Builder

	b.WriteString("\n\n" + f.colors.Header("▸ Failure Details") + "\n\n")

	for i := range results {
		r := &results[i]
		if i > 0 {
			b.WriteString("\n")
		}

		fmt.Fprintf(&b, "%s %s (%s)\n", f.colors.FormatOutcome(r.Outcome), r.Key, format.Duration(r.Duration))

		if r.Reason != "" {
			fmt.Fprintf(&b, "  %s: %s\n", f.colors.Info("Reason"), r.Reason)
		}

		if r.Error != "" {
			fmt.Fprintf(&b, "  %s: %s\n", f.colors.Failure("Error"), r.Error)
		}

		for _, a := range r.FailedAssertions() {
			f.writeAssertion(&b, a)
		}

		if r.Artifact != "" {
			fmt.Fprintf(&b, "  %s: %s\n", f.colors.Muted("Screenshot"), r.Artifact)
		}
	}

	return b.String()
}

func (f *ResultsFormatter) writeAssertion(b *strings.Builder, a assertion.Result) {
	target := a.Predicate
	if a.Selector != "" {
		target += " " + a.Selector
	}

	fmt.Fprintf(b, "  %s %s %s %v\n", f.colors.Failure("✗"), f.colors.Bold(target), a.Operator, a.Expected)
	fmt.Fprintf(b, "    %s: %s\n", f.colors.Warning("Actual"), formatActual(a.Actual))

	if a.Error != "" {
		fmt.Fprintf(b, "    %s: %s\n", f.colors.Failure("Error"), a.Error)
	}
}

func formatActual(v interface{}) string {
	if v == nil {
		return "<absent>"
	}

	return fmt.Sprintf("%v", v)
}
