// Package output prints run progress and results to the console.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"

	"github.com/ethpandaops/uimatrix/internal/device"
	"github.com/ethpandaops/uimatrix/internal/format"
	"github.com/ethpandaops/uimatrix/internal/output/table"
	"github.com/ethpandaops/uimatrix/internal/report"
)

// Formatter provides human-friendly console output.
type Formatter interface {
	PrintPhase(phase string)
	PrintProgress(message string, duration time.Duration)
	PrintSuccess(message string)
	PrintError(message string, err error)
	PrintResults(summary *report.Summary)
	PrintSummary(summary *report.Summary)
	PrintDevices(catalog *device.Catalog)
}

type formatter struct {
	log     logrus.FieldLogger
	writer  io.Writer
	verbose bool

	colors  *table.ColorHelper
	results *table.ResultsFormatter
	summary *table.SummaryFormatter

	green *color.Color
	red   *color.Color
	blue  *color.Color
	gray  *color.Color
}

// NewFormatter creates a console formatter. In non-verbose mode only results
// that need attention are listed.
func NewFormatter(log logrus.FieldLogger, writer io.Writer, verbose bool) Formatter {
	return &formatter{
		log:      log.WithField("component", "output"),
		writer:   writer,
		verbose:  verbose,
		colors:   table.NewColorHelper(),
		results:  table.NewResultsFormatter(log),
		summary:  table.NewSummaryFormatter(log),
		green:    color.New(color.FgGreen),
		red:      color.New(color.FgRed),
		blue:     color.New(color.FgBlue),
		gray:     color.New(color.FgHiBlack),
	}
}

func (f *formatter) PrintPhase(phase string) {
	f.blue.Fprintf(f.writer, "\n▸ %s\n", phase)
}

func (f *formatter) PrintProgress(message string, duration time.Duration) {
	if duration > 0 {
		f.gray.Fprintf(f.writer, "%s (%s)\n", message, format.Duration(duration))

		return
	}

	fmt.Fprintf(f.writer, "%s\n", message)
}

func (f *formatter) PrintSuccess(message string) {
	f.green.Fprintf(f.writer, "%s\n", message)
}

func (f *formatter) PrintError(message string, err error) {
	f.red.Fprintf(f.writer, "%s", message)

	if err != nil {
		f.red.Fprintf(f.writer, ": %v", err)
	}

	fmt.Fprintf(f.writer, "\n")
}

func (f *formatter) PrintResults(summary *report.Summary) {
	results := summary.Results

	if !f.verbose {
		results = make([]report.Result, 0, len(summary.Attention))

		for i := range summary.Results {
			if r := summary.Results[i]; r.Outcome.NeedsAttention() || r.State == report.StateErrored {
				results = append(results, r)
			}
		}

		if len(results) == 0 {
			return
		}
	}

	fmt.Fprintln(f.writer, f.results.Format(results))
}

func (f *formatter) PrintSummary(summary *report.Summary) {
	fmt.Fprintln(f.writer, f.summary.Format(summary))
}

func (f *formatter) PrintDevices(catalog *device.Catalog) {
	profiles := catalog.Profiles()
	devices := table.NewSection("", "Device", "Viewport", "Scale", "Mobile")

	for _, p := range profiles {
		scale := "1"
		if p.Scale > 0 {
			scale = fmt.Sprintf("%g", p.Scale)
		}

		devices.Add(p.ID, fmt.Sprintf("%dx%d", p.Width, p.Height), scale, fmt.Sprintf("%t", p.Mobile))
	}

	fmt.Fprintln(f.writer, devices.Render(f.colors))

	groups := catalog.Groups()
	names := make([]string, 0, len(groups))

	for name := range groups {
		names = append(names, name)
	}

	sort.Strings(names)

	members := table.NewSection("", "Group", "Members")
	for _, name := range names {
		members.Add(name, strings.Join(groups[name], ", "))
	}

	fmt.Fprintln(f.writer, members.Render(f.colors))
}

// WriteJSON writes the summary as indented JSON to path.
func WriteJSON(path string, summary *report.Summary) error {
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding summary: %w", err)
	}

	if err := os.WriteFile(path, append(data, '\n'), 0o600); err != nil {
		return fmt.Errorf("writing summary: %w", err)
	}

	return nil
}

var _ Formatter = (*formatter)(nil)
