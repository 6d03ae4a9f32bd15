// Package listing renders analysis events as text, one line per event.
package listing

import (
	"bufio"
	"fmt"
	"io"
	"iter"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss/v2"

	"roptool/internal/analysis"
	"roptool/internal/binfmt"
	"roptool/internal/roptool/styles"
	"roptool/internal/ui/colorize"
)

// Options control how events are rendered.
type Options struct {
	// Color enables ANSI colors.
	Color bool

	// AddrWidth is the number of hex digits of an address; see AddrWidth.
	AddrWidth int

	// Highlighter, when set along with Color, renders operands instead of
	// the flat operand color.
	Highlighter *colorize.Highlighter

	// Noun names scan hits in summaries ("strings", "matches").
	Noun string
}

// AddrWidth is 16 hex digits for 64-bit images and for file offsets, 8
// otherwise.
func AddrWidth(arch binfmt.Arch, offset bool) int {
	if offset || arch.AddrSize() == 8 {
		return 16
	}
	return 8
}

// Printer writes events to w. It buffers output; call Flush when done,
// or use Print which does.
type Printer struct {
	w    *bufio.Writer
	opts Options
}

func New(w io.Writer, opts Options) *Printer {
	if opts.AddrWidth == 0 {
		opts.AddrWidth = 16
	}
	if opts.Noun == "" {
		opts.Noun = "strings"
	}
	return &Printer{w: bufio.NewWriter(w), opts: opts}
}

func (p *Printer) paint(s lipgloss.Style, text string) string {
	if !p.opts.Color || text == "" {
		return text
	}
	return s.Render(text)
}

func (p *Printer) addr(a uint64) string {
	return p.paint(styles.Address, fmt.Sprintf("%0*x", p.opts.AddrWidth, a))
}

// Line renders one event without its trailing newline. Symbol lines start
// with an empty line.
func (p *Printer) Line(ev analysis.Event) string {
	switch ev := ev.(type) {
	case analysis.SymbolEvent:
		return "\n" + p.paint(styles.Symbol, "<"+ev.Name+">:")
	case analysis.InstructionEvent:
		ops := ev.Operands
		if p.opts.Color {
			if p.opts.Highlighter != nil {
				ops = p.opts.Highlighter.Highlight(ops)
			} else {
				ops = p.paint(styles.Operands, ops)
			}
		}
		return fmt.Sprintf(" %s   %s %s", p.addr(ev.Addr),
			p.paint(styles.Mnemonic, fmt.Sprintf("%-8s", ev.Mnemonic)), ops)
	case analysis.UndecodableEvent:
		return fmt.Sprintf(" %s   %s", p.addr(ev.Addr), p.paint(styles.Bad, "BAD"))
	case analysis.ScanRunEvent:
		return fmt.Sprintf("%s %s %s %s",
			p.paint(styles.Prot, " "+ev.Prot.String()+" "),
			p.paint(styles.Address, fmt.Sprintf("%016x", ev.Addr)),
			p.paint(styles.Arrow, "->"),
			p.paint(styles.Match, EscapeUnprintable(ev.Bytes)))
	case analysis.ScanSummaryEvent:
		return p.paint(styles.Summary, fmt.Sprintf(" %d %s found.", ev.Count, p.opts.Noun))
	default:
		return ""
	}
}

// Event writes one event.
func (p *Printer) Event(ev analysis.Event) error {
	_, err := p.w.WriteString(p.Line(ev) + "\n")
	return err
}

// Flush writes any buffered output.
func (p *Printer) Flush() error {
	return p.w.Flush()
}

// Print writes every event of seq and flushes. It stops at the first
// write error.
func (p *Printer) Print(seq iter.Seq[analysis.Event]) error {
	for ev := range seq {
		if err := p.Event(ev); err != nil {
			return err
		}
	}
	return p.Flush()
}

// EscapeUnprintable keeps printable runes and escapes the rest: control
// runes as \uXXXX and invalid UTF-8 as \xXX.
func EscapeUnprintable(b []byte) string {
	var sb strings.Builder
	for len(b) > 0 {
		r, size := utf8.DecodeRune(b)
		if r == utf8.RuneError && size == 1 {
			fmt.Fprintf(&sb, "\\x%02X", b[0])
		} else if unicode.IsPrint(r) {
			sb.WriteRune(r)
		} else {
			fmt.Fprintf(&sb, "\\u%04X", r)
		}
		b = b[size:]
	}
	return sb.String()
}
