// Package report renders a batch summary for the console.
package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/zoobzio/verdict"
	"github.com/zoobzio/verdict/store"
)

// DefaultCellWidth bounds the prompt and result columns.
const DefaultCellWidth = 60

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8BC34A"))
)

// Table renders records as a bordered table with columns #, prompt, result, result_code.
// Prompt and result cells are cut to cellWidth runes; a non-positive width uses DefaultCellWidth.
func Table(records []verdict.BatchRecord, cellWidth int) string {
	if cellWidth <= 0 {
		cellWidth = DefaultCellWidth
	}

	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		result, err := store.EncodeResult(rec.Result)
		if err != nil {
			result = fmt.Sprintf("%v", rec.Result)
		}
		rows = append(rows, []string{
			strconv.Itoa(rec.Index),
			truncate(rec.Prompt, cellWidth),
			truncate(result, cellWidth),
			strconv.Itoa(int(rec.ResultCode)),
		})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers("#", "prompt", "result", "result_code").
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	return t.String()
}

// Distribution renders one line per code, ascending, as "  <code> (<label>): <count>".
func Distribution(h verdict.Histogram) string {
	var b strings.Builder
	for _, code := range h.Codes() {
		fmt.Fprintf(&b, "  %d (%s): %d\n", code, verdict.Label(code), h[code])
	}
	return b.String()
}

// Write prints the full summary of a batch.
func Write(w io.Writer, batch *verdict.Batch) error {
	rule := strings.Repeat("=", 80)

	var b strings.Builder
	b.WriteString(rule + "\n")
	b.WriteString(titleStyle.Render("RESULTS SUMMARY") + "\n")
	b.WriteString(rule + "\n")
	b.WriteString(Table(batch.Records, DefaultCellWidth) + "\n")
	b.WriteString(rule + "\n")
	b.WriteString("\n" + titleStyle.Render("Result Code Distribution:") + "\n")
	b.WriteString(Distribution(batch.Histogram))

	_, err := io.WriteString(w, b.String())
	return err
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}
