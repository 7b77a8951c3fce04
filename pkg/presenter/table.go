package presenter

import (
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
	"github.com/m-mizutani/goerr/v2"
)

const columnGap = "  "

type cell struct {
	text  string
	color *color.Color
}

func plain(s string) cell {
	return cell{text: s}
}

func colored(s string, c *color.Color) cell {
	return cell{text: s, color: c}
}

// table pads cells by display width before coloring so escape
// sequences do not shift columns
type table struct {
	header []string
	rows   [][]cell
}

func newTable(header ...string) *table {
	return &table{header: header}
}

func (t *table) add(cells ...cell) {
	t.rows = append(t.rows, cells)
}

func (t *table) widths() []int {
	widths := make([]int, len(t.header))
	for i, h := range t.header {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range t.rows {
		for i, c := range row {
			widths[i] = max(widths[i], runewidth.StringWidth(c.text))
		}
	}
	return widths
}

func (t *table) render(w io.Writer) error {
	widths := t.widths()

	header := make([]cell, len(t.header))
	for i, h := range t.header {
		header[i] = colored(h, headerColor)
	}

	var b strings.Builder
	for _, row := range append([][]cell{header}, t.rows...) {
		for i, c := range row {
			text := c.text
			if i < len(row)-1 {
				text = runewidth.FillRight(text, widths[i])
			}
			if c.color != nil {
				text = c.color.Sprint(text)
			}
			b.WriteString(text)
			if i < len(row)-1 {
				b.WriteString(columnGap)
			}
		}
		b.WriteString("\n")
	}

	if _, err := io.WriteString(w, b.String()); err != nil {
		return goerr.Wrap(err, "failed to write table")
	}
	return nil
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
