package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

// tone selects the ANSI color of a rendered line.
type tone int

const (
	tonePlain tone = iota
	toneGood
	toneWarn
	toneBad
	toneAccent
)

var toneCodes = map[tone]string{
	toneGood:   "\x1b[32m",
	toneWarn:   "\x1b[33m",
	toneBad:    "\x1b[31m",
	toneAccent: "\x1b[34m",
}

var toneTags = map[tone]string{
	tonePlain:  "INFO",
	toneGood:   "OK",
	toneWarn:   "WARN",
	toneBad:    "ERROR",
	toneAccent: "INFO",
}

const (
	labelWidth    = 20
	cellWidthMax  = 72
	ansiResetCode = "\x1b[0m"
)

// printer writes the human-readable CLI output. Color is only used when out
// is a terminal.
type printer struct {
	out      io.Writer
	color    bool
	sections int
}

func newPrinter(out io.Writer) *printer {
	return &printer{out: out, color: isTerminal(out)}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (p *printer) paint(t tone, s string) string {
	code, ok := toneCodes[t]
	if !p.color || !ok {
		return s
	}
	return code + s + ansiResetCode
}

// section starts a titled block, separated from the previous one by a blank line.
func (p *printer) section(title string) {
	if p.sections > 0 {
		fmt.Fprintln(p.out)
	}
	p.sections++
	head := "== " + strings.TrimSpace(title) + " =="
	fmt.Fprintln(p.out, p.paint(toneAccent, head))
	fmt.Fprintln(p.out, p.paint(toneAccent, strings.Repeat("-", len(head))))
}

func (p *printer) field(label, value string) {
	fmt.Fprintf(p.out, "  %-*s %s\n", labelWidth, label+":", value)
}

// status prints a labelled line carrying a bracketed tag such as [OK].
func (p *printer) status(label string, t tone, message string) {
	tag := "[" + toneTags[t] + "]"
	if message != "" {
		tag += " " + message
	}
	fmt.Fprintln(p.out, p.paint(t, fmt.Sprintf("  %-*s %s", labelWidth, label+":", tag)))
}

func (p *printer) line(s string) {
	fmt.Fprintln(p.out, s)
}

// table renders rows under headers. Columns listed in rightAligned are
// right-aligned; short rows are padded with empty cells.
func (p *printer) table(headers []string, rows [][]string, rightAligned ...int) {
	if len(headers) == 0 {
		return
	}
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(toRow(headers, len(headers)))
	for _, row := range rows {
		tw.AppendRow(toRow(row, len(headers)))
	}

	right := make(map[int]bool, len(rightAligned))
	for _, col := range rightAligned {
		right[col] = true
	}
	configs := make([]table.ColumnConfig, len(headers))
	for i := range configs {
		configs[i] = table.ColumnConfig{Number: i + 1, AlignHeader: text.AlignLeft, WidthMax: cellWidthMax}
		if right[i] {
			configs[i].Align = text.AlignRight
		}
	}
	tw.SetColumnConfigs(configs)
	fmt.Fprintln(p.out, tw.Render())
}

func toRow(cells []string, width int) table.Row {
	row := make(table.Row, width)
	for i := range row {
		row[i] = ""
		if i < len(cells) {
			row[i] = cells[i]
		}
	}
	return row
}

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
