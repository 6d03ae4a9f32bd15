// Package colorize syntax highlights instruction text with chroma.
package colorize

import (
	"os"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"

	"roptool/internal/binfmt"
	"roptool/internal/disasm"
)

// Highlighter renders single instructions for one architecture and flavor.
type Highlighter struct {
	lexer     chroma.Lexer
	style     *chroma.Style
	formatter chroma.Formatter
}

// lexerNames lists lexers in order of preference.
func lexerNames(arch binfmt.Arch, flavor disasm.Flavor) []string {
	switch arch {
	case binfmt.ArchARM, binfmt.ArchARM64:
		return []string{"armasm", "gas"}
	default:
		if flavor == disasm.FlavorATT {
			return []string{"gas", "nasm"}
		}
		return []string{"nasm", "gas"}
	}
}

func getAssemblyLexer(names []string) chroma.Lexer {
	for _, name := range names {
		if lexer := lexers.Get(name); lexer != nil {
			return chroma.Coalesce(lexer)
		}
	}
	return nil
}

// getDisasmStyle returns the disassembly style with fallbacks
func getDisasmStyle() *chroma.Style {
	candidates := []string{DisasmDark.Name, "dracula", "monokai"}
	for _, name := range candidates {
		if style := styles.Get(name); style != nil {
			return style
		}
	}
	return styles.Fallback
}

// getTerminalFormatter returns an appropriate terminal formatter
func getTerminalFormatter() chroma.Formatter {
	candidates := []string{"terminal16m", "terminal256"}
	for _, name := range candidates {
		if formatter := formatters.Get(name); formatter != nil {
			return formatter
		}
	}
	return formatters.Fallback
}

// New returns a highlighter, or nil when colors are disabled through
// ROPTOOL_NO_COLOR or no assembly lexer is available. A nil Highlighter
// returns text unchanged.
func New(arch binfmt.Arch, flavor disasm.Flavor) *Highlighter {
	if os.Getenv("ROPTOOL_NO_COLOR") != "" {
		return nil
	}
	lexer := getAssemblyLexer(lexerNames(arch, flavor))
	if lexer == nil {
		return nil
	}
	return &Highlighter{
		lexer:     lexer,
		style:     getDisasmStyle(),
		formatter: getTerminalFormatter(),
	}
}

// Highlight colors one line of assembly. Errors leave the text as is.
func (h *Highlighter) Highlight(text string) string {
	if h == nil || text == "" {
		return text
	}
	iterator, err := h.lexer.Tokenise(nil, text)
	if err != nil {
		return text
	}
	// lexers terminate their input with a newline; a listing line must not
	// carry one
	tokens := iterator.Tokens()
	for len(tokens) > 0 {
		last := &tokens[len(tokens)-1]
		last.Value = strings.TrimRight(last.Value, "\n")
		if last.Value != "" {
			break
		}
		tokens = tokens[:len(tokens)-1]
	}
	var buf strings.Builder
	if err := h.formatter.Format(&buf, h.style, chroma.Literator(tokens...)); err != nil {
		return text
	}
	return buf.String()
}

// StripANSI removes ANSI escape sequences.
func StripANSI(s string) string {
	var result strings.Builder
	inEscape := false

	for _, r := range s {
		if r == '\x1b' {
			inEscape = true
		} else if inEscape {
			if r == 'm' {
				inEscape = false
			}
		} else {
			result.WriteRune(r)
		}
	}

	return result.String()
}
