package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
	"github.com/vmihailenco/msgpack/v5"
)

// Format selects a renderer.
type Format string

const (
	FormatPretty  Format = "pretty"
	FormatJSON    Format = "json"
	FormatMsgpack Format = "msgpack"
)

// ParseFormat validates a --format value.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatPretty, FormatJSON, FormatMsgpack:
		return f, nil
	default:
		return "", fmt.Errorf("unknown format %q (expected: pretty|json|msgpack)", s)
	}
}

// Options control pretty output.
type Options struct {
	Color bool
	// Width truncates type columns; zero means no limit.
	Width int
}

// Write renders reports in the given format. JSON and msgpack write one
// document holding all reports.
func Write(w io.Writer, format Format, reports []*Report, opts Options) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(reports)
	case FormatMsgpack:
		return msgpack.NewEncoder(w).Encode(reports)
	default:
		for i, r := range reports {
			if i > 0 {
				if _, err := io.WriteString(w, "\n"); err != nil {
					return err
				}
			}
			if err := writePretty(w, r, opts); err != nil {
				return err
			}
		}
		return nil
	}
}

type palette struct {
	heading lipgloss.Style
	dim     lipgloss.Style
	classes map[string]*color.Color
	enabled bool
}

func newPalette(enabled bool) palette {
	p := palette{
		heading: lipgloss.NewStyle(),
		dim:     lipgloss.NewStyle(),
		enabled: enabled,
	}
	if enabled {
		p.heading = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
		p.dim = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
		p.classes = map[string]*color.Color{
			"INTEGER": color.New(color.FgGreen),
			"SSE":     color.New(color.FgBlue),
			"SSEUP":   color.New(color.FgBlue),
			"X87":     color.New(color.FgMagenta),
			"X87UP":   color.New(color.FgMagenta),
			"MEMORY":  color.New(color.FgRed, color.Bold),
		}
		for _, c := range p.classes {
			c.EnableColor()
		}
	}
	return p
}

func (p palette) class(name string) string {
	if c, ok := p.classes[name]; ok {
		return c.Sprint(name)
	}
	return name
}

func writePretty(w io.Writer, r *Report, opts Options) error {
	p := newPalette(opts.Color)
	var sb strings.Builder
	sb.WriteString(p.heading.Render(r.Header))
	sb.WriteString("\n")

	if len(r.Records) > 0 {
		sb.WriteString(p.heading.Render("records"))
		sb.WriteString("\n")
		rows := make([][]string, 0, len(r.Records))
		for _, rec := range r.Records {
			rows = append(rows, classRow(p, rec.Name, rec.Class, opts.Width))
		}
		writeTable(&sb, rows)
		for _, rec := range r.Records {
			if rec.LayoutMismatch != "" {
				fmt.Fprintf(&sb, "  %s %s: %s\n", p.dim.Render("note:"), rec.Name, rec.LayoutMismatch)
			}
		}
	}

	if len(r.Funcs) > 0 {
		sb.WriteString(p.heading.Render("functions"))
		sb.WriteString("\n")
		for _, fn := range r.Funcs {
			fmt.Fprintf(&sb, "  %s %s\n", fn.Name, p.dim.Render(fn.Signature))
			rows := make([][]string, 0, len(fn.Params)+1)
			rows = append(rows, classRow(p, "  return", fn.Return, opts.Width))
			for i, param := range fn.Params {
				rows = append(rows, classRow(p, fmt.Sprintf("  arg %d", i), param, opts.Width))
			}
			writeTable(&sb, rows)
			if fn.Rewritten {
				fmt.Fprintf(&sb, "    lowered: %s\n", fn.Lowered)
			} else {
				fmt.Fprintf(&sb, "    lowered: %s\n", p.dim.Render("unchanged"))
			}
		}
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

func classRow(p palette, name string, c Class, width int) []string {
	canon := c.Canonical
	if canon == "" {
		canon = "-"
	}
	return []string{
		name,
		truncate(c.Type, width),
		fmt.Sprintf("%d/%d", c.Size, c.Align),
		"{" + p.class(c.Low) + ", " + p.class(c.High) + "}",
		canon,
	}
}

// writeTable pads every column to its widest cell, measuring display width
// so ANSI escapes and wide runes do not skew alignment.
func writeTable(sb *strings.Builder, rows [][]string) {
	if len(rows) == 0 {
		return
	}
	widths := make([]int, len(rows[0]))
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], displayWidth(cell))
		}
	}
	for _, row := range rows {
		sb.WriteString("  ")
		for i, cell := range row {
			sb.WriteString(cell)
			if i < len(row)-1 {
				sb.WriteString(strings.Repeat(" ", widths[i]-displayWidth(cell)+2))
			}
		}
		sb.WriteString("\n")
	}
}

func displayWidth(s string) int {
	return runewidth.StringWidth(stripANSI(s))
}

func stripANSI(s string) string {
	if !strings.Contains(s, "\x1b[") {
		return s
	}
	var sb strings.Builder
	inEscape := false
	for _, r := range s {
		switch {
		case inEscape:
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
				inEscape = false
			}
		case r == '\x1b':
			inEscape = true
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

func truncate(value string, width int) string {
	if width <= 0 {
		return value
	}
	if runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width-3, "...")
}
