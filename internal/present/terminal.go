// Package present renders scan results to a terminal or a local web page.
package present

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"github.com/ppiankov/dealscan/internal/model"
)

// Heading is shown above results on every surface
const Heading = "Recent Acquisitions in India"

// StatusMessage returns the success or warning line for a result count
func StatusMessage(n int) string {
	if n == 0 {
		return "No relevant acquisitions found."
	}
	return fmt.Sprintf("Found %d relevant results", n)
}

// Terminal prints reports as an aligned table
type Terminal struct {
	w        io.Writer
	maxTitle int
}

// NewTerminal creates a terminal presenter writing to w
func NewTerminal(w io.Writer) *Terminal {
	return &Terminal{w: w, maxTitle: 72}
}

// Render prints the status line, failed terms and the deal table
func (t *Terminal) Render(report *model.BatchReport) {
	bold := color.New(color.Bold)
	_, _ = bold.Fprintln(t.w, Heading)

	for _, failed := range report.Failed() {
		_, _ = color.New(color.FgRed).Fprintf(t.w, "✗ %s: %v\n", failed.Term, failed.Err)
	}

	msg := StatusMessage(len(report.Deals))
	if report.Empty() {
		_, _ = color.New(color.FgYellow).Fprintln(t.w, msg)
		return
	}
	_, _ = color.New(color.FgGreen).Fprintln(t.w, msg)
	_, _ = fmt.Fprintln(t.w)

	rows := make([][]string, 0, len(report.Deals))
	for _, d := range report.Deals {
		rows = append(rows, []string{
			d.DateString(),
			d.Buyer,
			d.Target,
			runewidth.Truncate(d.Title, t.maxTitle, "…"),
		})
	}
	t.table([]string{"DATE", "BUYER", "TARGET", "TITLE"}, rows)
}

func (t *Terminal) table(headers []string, rows [][]string) {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if w := runewidth.StringWidth(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}

	t.row(headers, widths, color.New(color.Bold))

	sep := make([]string, len(widths))
	for i, w := range widths {
		sep[i] = strings.Repeat("─", w)
	}
	_, _ = color.New(color.Faint).Fprintln(t.w, strings.Join(sep, "──"))

	for _, row := range rows {
		t.row(row, widths, nil)
	}
}

func (t *Terminal) row(cells []string, widths []int, style *color.Color) {
	parts := make([]string, len(cells))
	for i, cell := range cells {
		parts[i] = runewidth.FillRight(cell, widths[i])
	}
	line := strings.TrimRight(strings.Join(parts, "  "), " ")
	if style != nil {
		_, _ = style.Fprintln(t.w, line)
		return
	}
	_, _ = fmt.Fprintln(t.w, line)
}
