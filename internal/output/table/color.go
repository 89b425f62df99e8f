package table

import (
	"fmt"

	"github.com/fatih/color"

	"github.com/ethpandaops/uimatrix/internal/report"
)

// ColorHelper colors console text. Colors are disabled when stdout is not a terminal.
type ColorHelper struct {
	enabled bool
}

// NewColorHelper creates a color helper honouring color.NoColor.
func NewColorHelper() *ColorHelper {
	return &ColorHelper{
		enabled: !color.NoColor,
	}
}

func (c *ColorHelper) paint(text string, attrs ...color.Attribute) string {
	if !c.enabled {
		return text
	}

	return color.New(attrs...).Sprint(text)
}

// Success returns green text.
func (c *ColorHelper) Success(text string) string { return c.paint(text, color.FgGreen) }

// Failure returns red text.
func (c *ColorHelper) Failure(text string) string { return c.paint(text, color.FgRed) }

// Warning returns yellow text.
func (c *ColorHelper) Warning(text string) string { return c.paint(text, color.FgYellow) }

// Info returns cyan text.
func (c *ColorHelper) Info(text string) string { return c.paint(text, color.FgCyan) }

// Muted returns gray text.
func (c *ColorHelper) Muted(text string) string { return c.paint(text, color.FgHiBlack) }

// Bold returns bold text.
func (c *ColorHelper) Bold(text string) string { return c.paint(text, color.Bold) }

// Header returns bold cyan text for section headers.
func (c *ColorHelper) Header(text string) string { return c.paint(text, color.FgCyan, color.Bold) }

// FormatOutcome renders an outcome with a marker and a color by severity.
func (c *ColorHelper) FormatOutcome(o report.Outcome) string {
	switch o {
	case report.OutcomePassed:
		return c.Success("✓ PASS")
	case report.OutcomeFailed:
		return c.Failure("✗ FAIL")
	case report.OutcomeXFailConfirmed:
		return c.Warning("✓ XFAIL")
	case report.OutcomeXFailUnexpectedlyPassed:
		return c.Failure("✗ XPASS")
	case report.OutcomeSkipped:
		return c.Muted("- SKIP")
	case report.OutcomeSkippedTimeout:
		return c.Muted("⧖ TIMEOUT")
	default:
		return string(o)
	}
}

// FormatAssertions renders satisfied/total assertions.
func (c *ColorHelper) FormatAssertions(satisfied, total int) string {
	text := fmt.Sprintf("%d/%d", satisfied, total)

	switch {
	case satisfied == total:
		return c.Success(text)
	case satisfied == 0:
		return c.Failure(text)
	default:
		return c.Warning(text)
	}
}

// FormatCount renders n, colored with fn when it is non-zero.
func (c *ColorHelper) FormatCount(n int, fn func(string) string) string {
	text := fmt.Sprintf("%d", n)
	if n == 0 {
		return c.Muted(text)
	}

	return fn(text)
}
