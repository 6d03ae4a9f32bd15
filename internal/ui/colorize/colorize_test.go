package colorize

import (
	"strings"
	"testing"

	"roptool/internal/binfmt"
	"roptool/internal/disasm"
)

func TestHighlightKeepsText(t *testing.T) {
	t.Setenv("ROPTOOL_NO_COLOR", "")

	tests := []struct {
		arch   binfmt.Arch
		flavor disasm.Flavor
		text   string
	}{
		{binfmt.ArchX8664, disasm.FlavorIntel, "mov rbp, rsp"},
		{binfmt.ArchX8664, disasm.FlavorATT, "mov %rsp,%rbp"},
		{binfmt.ArchARM64, disasm.FlavorIntel, "add x0, x1, #0x10"},
	}
	for _, tt := range tests {
		h := New(tt.arch, tt.flavor)
		if h == nil {
			t.Fatalf("no highlighter for %s", tt.arch)
		}
		got := h.Highlight(tt.text)
		if !strings.Contains(got, "\x1b[") {
			t.Errorf("Highlight(%q) has no escape sequences", tt.text)
		}
		if StripANSI(got) != tt.text {
			t.Errorf("StripANSI(Highlight(%q)) = %q", tt.text, StripANSI(got))
		}
	}
}

func TestNoColor(t *testing.T) {
	t.Setenv("ROPTOOL_NO_COLOR", "1")

	h := New(binfmt.ArchX86, disasm.FlavorIntel)
	if h != nil {
		t.Fatal("expected no highlighter")
	}
	if got := h.Highlight("ret"); got != "ret" {
		t.Errorf("nil highlighter changed text: %q", got)
	}
}

func TestStyleRegistered(t *testing.T) {
	if getDisasmStyle().Name != "disasm-dark" {
		t.Errorf("style = %s", getDisasmStyle().Name)
	}
}
