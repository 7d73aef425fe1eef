package report

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// table renders fixed rows as aligned plain-text columns.
type table struct {
	headers []string
	rows    [][]string
	right   map[int]bool
}

func newTable(headers ...string) *table {
	return &table{headers: headers, right: map[int]bool{}}
}

func (t *table) alignRight(cols ...int) *table {
	for _, c := range cols {
		t.right[c] = true
	}
	return t
}

func (t *table) addRow(cells ...string) {
	t.rows = append(t.rows, cells)
}

func (t *table) render() string {
	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if i < len(widths) && lipgloss.Width(cell) > widths[i] {
				widths[i] = lipgloss.Width(cell)
			}
		}
	}

	var sb strings.Builder
	sb.WriteString(t.line(t.headers, widths, false))
	total := len(widths) - 1
	for _, w := range widths {
		total += w + 2
	}
	sb.WriteString(strings.Repeat("-", total) + "\n")
	for _, row := range t.rows {
		sb.WriteString(t.line(row, widths, true))
	}
	return sb.String()
}

func (t *table) line(cells []string, widths []int, body bool) string {
	parts := make([]string, 0, len(widths))
	for i, w := range widths {
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		style := lipgloss.NewStyle().Width(w+2).Padding(0, 1)
		if body && t.right[i] {
			style = style.Align(lipgloss.Right)
		}
		parts = append(parts, style.Render(cell))
	}
	return strings.TrimRight(strings.Join(parts, "|"), " ") + "\n"
}
