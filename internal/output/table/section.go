// Package table renders run results as console tables.
package table

import (
	"strings"

	"github.com/olekukonko/tablewriter"
)

// Section is a titled grid. An empty Title renders the grid alone.
type Section struct {
	Title   string
	Headers []string
	Rows    [][]string
}

// NewSection starts a section with the given column headers.
func NewSection(title string, headers ...string) *Section {
	return &Section{Title: title, Headers: headers}
}

// Add appends one row.
func (s *Section) Add(cells ...string) *Section {
	s.Rows = append(s.Rows, cells)

	return s
}

// Render draws the section using colors for the title.
func (s *Section) Render(colors *ColorHelper) string {
	var b strings.Builder

	if s.Title != "" {
		b.WriteString("\n" + colors.Header("▸ "+s.Title) + "\n\n")
	}

	grid := tablewriter.NewWriter(&b)
	grid.SetHeader(s.Headers)
	grid.SetAutoWrapText(false)
	grid.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	grid.SetAlignment(tablewriter.ALIGN_LEFT)
	grid.SetCenterSeparator("")
	grid.SetColumnSeparator("│")
	grid.SetRowSeparator("─")
	grid.AppendBulk(s.Rows)
	grid.Render()

	return b.String()
}
