package disasm

import (
	"errors"
	"slices"
	"strings"
	"testing"

	"roptool/internal/binfmt"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		arch    binfmt.Arch
		flavor  Flavor
		wantErr error
	}{
		{name: "x86 intel", arch: binfmt.ArchX86, flavor: FlavorIntel},
		{name: "x86-64 att", arch: binfmt.ArchX8664, flavor: FlavorATT},
		{name: "arm intel", arch: binfmt.ArchARM, flavor: FlavorIntel},
		{name: "arm64 intel", arch: binfmt.ArchARM64, flavor: FlavorIntel},
		{name: "arm att", arch: binfmt.ArchARM, flavor: FlavorATT, wantErr: ErrUnsupportedFlavor},
		{name: "arm64 att", arch: binfmt.ArchARM64, flavor: FlavorATT, wantErr: ErrUnsupportedFlavor},
		{name: "x86 undefined flavor", arch: binfmt.ArchX86, flavor: FlavorUndef, wantErr: ErrUnsupportedFlavor},
		{name: "undefined arch", arch: binfmt.ArchUndef, flavor: FlavorIntel, wantErr: ErrUnsupportedArch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dec, err := New(tt.arch, tt.flavor)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("New error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("New failed: %v", err)
			}
			if dec.Arch() != tt.arch {
				t.Errorf("Arch() = %s, want %s", dec.Arch(), tt.arch)
			}
		})
	}
}

func TestX86Intel(t *testing.T) {
	dec, err := New(binfmt.ArchX8664, FlavorIntel)
	if err != nil {
		t.Fatal(err)
	}

	// push rbp; mov rbp, rsp; ret; then an opcode invalid in 64-bit mode
	code := []byte{0x55, 0x48, 0x89, 0xe5, 0xc3, 0x06}
	got := slices.Collect(Walk(dec, code, 0x401000, uint64(len(code))))

	want := []struct {
		kind     Kind
		addr     uint64
		mnemonic string
		operands string
	}{
		{Decoded, 0x401000, "push", "rbp"},
		{Decoded, 0x401001, "mov", "rbp, rsp"},
		{Decoded, 0x401004, "ret", ""},
		{Undecodable, 0x401005, "", ""},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d outcomes, want %d: %+v", len(got), len(want), got)
	}
	for i, w := range want {
		o := got[i]
		if o.Kind != w.kind || o.Addr != w.addr {
			t.Errorf("outcome %d = %s at 0x%x, want %s at 0x%x", i, o.Kind, o.Addr, w.kind, w.addr)
		}
		if o.Inst.Mnemonic != w.mnemonic || o.Inst.Operands != w.operands {
			t.Errorf("outcome %d = %q %q, want %q %q", i, o.Inst.Mnemonic, o.Inst.Operands, w.mnemonic, w.operands)
		}
	}
}

func TestX86ATT(t *testing.T) {
	dec, err := New(binfmt.ArchX8664, FlavorATT)
	if err != nil {
		t.Fatal(err)
	}
	inst, err := dec.Decode([]byte{0x48, 0x89, 0xe5}, 0x1000)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(inst.Mnemonic, "mov") || !strings.Contains(inst.Operands, "%rsp") {
		t.Errorf("AT&T decode = %q", inst.Text())
	}
	if inst.Size != 3 {
		t.Errorf("size = %d, want 3", inst.Size)
	}
}

func TestARM64(t *testing.T) {
	dec, err := New(binfmt.ArchARM64, FlavorIntel)
	if err != nil {
		t.Fatal(err)
	}

	// ret, then a trailing byte too short for an instruction
	code := []byte{0xc0, 0x03, 0x5f, 0xd6, 0x00}
	got := slices.Collect(Walk(dec, code, 0x8000, uint64(len(code))))
	if len(got) != 2 {
		t.Fatalf("got %d outcomes, want 2", len(got))
	}
	if got[0].Inst.Mnemonic != "ret" || got[0].Inst.Size != 4 {
		t.Errorf("first = %+v, want ret", got[0].Inst)
	}
	if got[1].Kind != Undecodable || got[1].Addr != 0x8004 {
		t.Errorf("second = %+v, want undecodable at 0x8004", got[1])
	}
}

func TestARM(t *testing.T) {
	dec, err := New(binfmt.ArchARM, FlavorIntel)
	if err != nil {
		t.Fatal(err)
	}
	inst, err := dec.Decode([]byte{0x1e, 0xff, 0x2f, 0xe1}, 0x8000)
	if err != nil {
		t.Fatal(err)
	}
	if inst.Mnemonic != "bx" || inst.Operands != "lr" {
		t.Errorf("decode = %q, want bx lr", inst.Text())
	}
}

func TestSplitText(t *testing.T) {
	tests := []struct {
		in, mnemonic, operands string
	}{
		{"ret", "ret", ""},
		{"mov rbp, rsp", "mov", "rbp, rsp"},
		{"rep movsb", "rep movsb", ""},
		{"lock add dword ptr [rax], 0x1", "lock add", "dword ptr [rax], 0x1"},
		{"  nop  ", "nop", ""},
	}
	for _, tt := range tests {
		m, o := splitText(tt.in)
		if m != tt.mnemonic || o != tt.operands {
			t.Errorf("splitText(%q) = %q, %q; want %q, %q", tt.in, m, o, tt.mnemonic, tt.operands)
		}
	}
}

func TestParseFlavor(t *testing.T) {
	if ParseFlavor("intel") != FlavorIntel || ParseFlavor("ATT") != FlavorATT || ParseFlavor("masm") != FlavorUndef {
		t.Error("unexpected flavor parsing")
	}
}
