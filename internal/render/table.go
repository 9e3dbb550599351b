package render

import (
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
)

const columnGap = "  "

type align int

const (
	alignLeft align = iota
	alignRight
)

type column struct {
	header string
	align  align
}

func text(header string) column    { return column{header: header, align: alignLeft} }
func numeric(header string) column { return column{header: header, align: alignRight} }

// table lays out rows in columns sized to the widest cell, header included.
type table struct {
	columns []column
	rows    [][]string
}

func newTable(columns ...column) *table {
	return &table{columns: columns}
}

func (t *table) add(cells ...string) {
	t.rows = append(t.rows, cells)
}

func (t *table) widths() []int {
	widths := make([]int, len(t.columns))
	for i, c := range t.columns {
		widths[i] = runewidth.StringWidth(c.header)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}
	return widths
}

func pad(s string, width int, a align) string {
	gap := width - runewidth.StringWidth(s)
	if gap <= 0 {
		return s
	}
	if a == alignRight {
		return strings.Repeat(" ", gap) + s
	}
	return s + strings.Repeat(" ", gap)
}

func (t *table) write(w io.Writer, headerColor *color.Color) error {
	widths := t.widths()

	headers := make([]string, len(t.columns))
	rules := make([]string, len(t.columns))
	for i, c := range t.columns {
		headers[i] = pad(c.header, widths[i], c.align)
		rules[i] = strings.Repeat("─", widths[i])
	}
	if err := writeLine(w, headerColor.Sprint(strings.TrimRight(strings.Join(headers, columnGap), " "))); err != nil {
		return err
	}
	if err := writeLine(w, strings.Join(rules, columnGap)); err != nil {
		return err
	}

	for _, row := range t.rows {
		cells := make([]string, len(t.columns))
		for i, c := range t.columns {
			cells[i] = pad(row[i], widths[i], c.align)
		}
		if err := writeLine(w, strings.TrimRight(strings.Join(cells, columnGap), " ")); err != nil {
			return err
		}
	}
	return nil
}

func writeLine(w io.Writer, s string) error {
	_, err := io.WriteString(w, s+"\n")
	return err
}
