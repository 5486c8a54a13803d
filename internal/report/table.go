package report

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Mode controls the output format.
type Mode int

const (
	ASCII    Mode = iota // Fixed-width terminal tables
	Markdown             // GitHub-flavoured Markdown tables
)

func (m Mode) String() string {
	if m == Markdown {
		return "markdown"
	}
	return "ascii"
}

// ParseMode maps "ascii" or "markdown" (any case, "md" allowed) to a Mode.
// An empty name is ASCII.
func ParseMode(name string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "ascii":
		return ASCII, nil
	case "markdown", "md":
		return Markdown, nil
	default:
		return ASCII, fmt.Errorf("unknown output mode %q", name)
	}
}

// ColumnAlign specifies the horizontal alignment for a column.
type ColumnAlign int

const (
	AlignDefault ColumnAlign = iota
	AlignLeft
	AlignCenter
	AlignRight
)

// ColumnConfig controls per-column formatting.
type ColumnConfig struct {
	Number   int         // 1-based column index
	Align    ColumnAlign // horizontal alignment
	MaxWidth int         // wrap content beyond this width (0 = unlimited)
}

// Table is built once and rendered in the Mode it was created with.
type Table interface {
	Header(cols ...string)
	// Row appends a data row. Values are rendered with fmt.Sprint.
	Row(vals ...any)
	Footer(vals ...any)
	Columns(cfgs ...ColumnConfig)
	String() string
}

// NewTable returns a Table that renders in mode m.
func NewTable(m Mode) Table {
	w := table.NewWriter()
	if m == ASCII {
		w.SetStyle(table.StyleLight)
	}
	return &prettyTable{writer: w, mode: m}
}

type prettyTable struct {
	writer table.Writer
	mode   Mode
}

func (p *prettyTable) Header(cols ...string) {
	row := make(table.Row, len(cols))
	for i, c := range cols {
		row[i] = c
	}
	p.writer.AppendHeader(row)
}

func (p *prettyTable) Row(vals ...any) {
	p.writer.AppendRow(table.Row(vals))
}

func (p *prettyTable) Footer(vals ...any) {
	p.writer.AppendFooter(table.Row(vals))
}

func (p *prettyTable) Columns(cfgs ...ColumnConfig) {
	converted := make([]table.ColumnConfig, len(cfgs))
	for i, c := range cfgs {
		converted[i] = table.ColumnConfig{
			Number:   c.Number,
			Align:    textAlign(c.Align),
			WidthMax: c.MaxWidth,
		}
	}
	p.writer.SetColumnConfigs(converted)
}

func (p *prettyTable) String() string {
	if p.mode == Markdown {
		return p.writer.RenderMarkdown()
	}
	return p.writer.Render()
}

func textAlign(a ColumnAlign) text.Align {
	switch a {
	case AlignLeft:
		return text.AlignLeft
	case AlignRight:
		return text.AlignRight
	case AlignCenter:
		return text.AlignCenter
	default:
		return text.AlignDefault
	}
}
