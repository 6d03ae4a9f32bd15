package symbols

import (
	"testing"

	"roptool/internal/binfmt"
)

func TestByAddress(t *testing.T) {
	table := New([]binfmt.Symbol{
		{Name: "main", Addr: 0x1040},
		{Name: "_start", Addr: 0x1000},
		{Name: "main_alias", Addr: 0x1040},
		{Name: "", Addr: 0x2000},
	})

	tests := []struct {
		addr   uint64
		want   string
		wantOK bool
	}{
		{0x1000, "_start", true},
		{0x1040, "main", true},
		{0x1041, "", false},
		{0x0, "", false},
		{0x2000, "", false},
		{0xffffffff, "", false},
	}
	for _, tt := range tests {
		got, ok := table.ByAddress(tt.addr)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ByAddress(0x%x) = %q, %v; want %q, %v", tt.addr, got, ok, tt.want, tt.wantOK)
		}
	}
	if table.Len() != 2 {
		t.Errorf("Len() = %d, want 2", table.Len())
	}
}

func TestDemangle(t *testing.T) {
	syms := []binfmt.Symbol{{Name: "_ZN3foo3barEv", Addr: 0x10}}

	plain, _ := New(syms).ByAddress(0x10)
	if plain != "_ZN3foo3barEv" {
		t.Errorf("without demangling got %q", plain)
	}

	table := New(syms, WithDemangle())
	for i := 0; i < 2; i++ {
		got, ok := table.ByAddress(0x10)
		if !ok || got != "foo::bar()" {
			t.Errorf("demangled = %q, %v; want foo::bar()", got, ok)
		}
	}
}

func TestNilTable(t *testing.T) {
	var table *Table
	if _, ok := table.ByAddress(0x10); ok {
		t.Error("nil table should not resolve symbols")
	}
}

func TestAllOrder(t *testing.T) {
	table := New([]binfmt.Symbol{
		{Name: "c", Addr: 3},
		{Name: "a", Addr: 1},
		{Name: "b", Addr: 2},
	})
	var names []string
	for _, name := range table.All {
		names = append(names, name)
	}
	if len(names) != 3 || names[0] != "a" || names[1] != "b" || names[2] != "c" {
		t.Errorf("All() order = %v", names)
	}
}
