package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// Alignment represents column text alignment.
type Alignment int

const (
	AlignLeft Alignment = iota
	AlignRight
)

// ColumnDef defines a column in a ResultsTable.
type ColumnDef struct {
	Name       string         // Header text
	WidthRatio float64        // Proportion of available width (0.0-1.0), 0 means fixed width
	MinWidth   int            // Minimum width in characters
	MaxWidth   int            // Maximum width (0 = no limit)
	Align      Alignment      // Text alignment
	Style      lipgloss.Style // Style to apply to cells in this column
}

// Columns for the record listing.
var (
	ColTitle = ColumnDef{
		Name:       "TITLE",
		WidthRatio: 0.6,
		MinWidth:   24,
		MaxWidth:   90,
	}

	ColCreator = ColumnDef{
		Name:       "CREATOR",
		WidthRatio: 0.4,
		MinWidth:   14,
		MaxWidth:   36,
	}

	ColYear = ColumnDef{
		Name:     "YEAR",
		MinWidth: 7,
		Align:    AlignRight,
		Style:    Muted,
	}

	ColKey = ColumnDef{
		Name:     "KEY",
		MinWidth: 10,
		Style:    Muted,
	}

	// PaperLayout is used by the record listing: [title, creator, year, key]
	PaperLayout = []ColumnDef{ColTitle, ColCreator, ColYear, ColKey}
)

const columnPadding = 2

// ResultsTable renders rows in columns sized to the terminal.
type ResultsTable struct {
	display *DisplayContext
	columns []ColumnDef
	rows    [][]string
}

// NewResultsTable creates a new ResultsTable with the given display context and column layout.
func NewResultsTable(display *DisplayContext, columns []ColumnDef) *ResultsTable {
	return &ResultsTable{
		display: display,
		columns: columns,
	}
}

// AddRow adds a row to the table. Cells beyond the column count are ignored.
func (t *ResultsTable) AddRow(cells ...string) {
	row := make([]string, len(t.columns))
	copy(row, cells)
	t.rows = append(t.rows, row)
}

// Len returns the number of rows.
func (t *ResultsTable) Len() int {
	return len(t.rows)
}

// calculateWidths computes column widths based on terminal size and column definitions.
func (t *ResultsTable) calculateWidths() []int {
	widths := make([]int, len(t.columns))

	var totalRatio float64
	var fixedWidth int
	for i, col := range t.columns {
		if col.WidthRatio == 0 {
			widths[i] = col.MinWidth
			if col.MaxWidth > 0 && widths[i] > col.MaxWidth {
				widths[i] = col.MaxWidth
			}
			fixedWidth += widths[i]
		} else {
			totalRatio += col.WidthRatio
		}
	}

	totalPadding := (len(t.columns) - 1) * columnPadding
	available := t.display.TermWidth - fixedWidth - totalPadding
	if available < 0 {
		available = 0
	}

	for i, col := range t.columns {
		if col.WidthRatio == 0 {
			continue
		}
		width := int(float64(available) * col.WidthRatio / totalRatio)
		if width < col.MinWidth {
			width = col.MinWidth
		}
		if col.MaxWidth > 0 && width > col.MaxWidth {
			width = col.MaxWidth
		}
		widths[i] = width
	}

	return widths
}

// Render generates the table output as a string.
func (t *ResultsTable) Render() string {
	if len(t.rows) == 0 {
		return ""
	}

	widths := t.calculateWidths()

	rows := make([][]string, len(t.rows))
	headers := make([]string, len(t.columns))
	for j, col := range t.columns {
		headers[j] = col.Name
	}
	for i, row := range t.rows {
		cells := make([]string, len(row))
		for j, cell := range row {
			cells[j] = TruncateWithEllipsis(cell, widths[j])
		}
		rows[i] = cells
	}

	tbl := table.New().
		Border(lipgloss.HiddenBorder()).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderHeader(false).
		BorderColumn(false).
		StyleFunc(func(row, col int) lipgloss.Style {
			if col >= len(t.columns) {
				return lipgloss.NewStyle()
			}

			colDef := t.columns[col]
			style := colDef.Style
			if row == table.HeaderRow {
				style = Bold
			}

			style = style.Width(widths[col])
			if colDef.Align == AlignRight {
				style = style.Align(lipgloss.Right)
			} else {
				style = style.Align(lipgloss.Left)
			}
			if col < len(t.columns)-1 {
				style = style.PaddingRight(columnPadding)
			}
			return style
		}).
		Headers(headers...).
		Rows(rows...)

	return tbl.Render()
}

// TruncateWithEllipsis truncates a string to maxLen runes, adding an ellipsis
// if needed.
func TruncateWithEllipsis(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 1 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-1]) + "…"
}
