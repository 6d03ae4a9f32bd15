package analysis

import (
	"errors"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"

	"roptool/internal/binfmt"
	"roptool/internal/disasm"
	"roptool/internal/scan"
	"roptool/internal/symbols"
)

func x86Disassembler(t *testing.T, img *binfmt.Image) *Disassembler {
	t.Helper()
	dec, err := disasm.New(binfmt.ArchX8664, disasm.FlavorIntel)
	if err != nil {
		t.Fatal(err)
	}
	return &Disassembler{Image: img, Decoder: dec, Symbols: symbols.New(img.Symbols)}
}

func inst(addr uint64, size int, mnemonic, operands string) InstructionEvent {
	return InstructionEvent{disasm.Inst{Addr: addr, Size: size, Mnemonic: mnemonic, Operands: operands}}
}

func TestDisassembleVirtual(t *testing.T) {
	// push rbp; nop; ret; push es, which 64-bit mode rejects
	file := []byte{0x55, 0x90, 0xc3, 0x06}
	img := binfmt.NewImage(file, binfmt.ArchX8664, 0x1000,
		[]*binfmt.Segment{{Addr: 0x1000, Length: 4, Data: file, Prot: binfmt.ProtRead | binfmt.ProtExec}},
		[]binfmt.Symbol{{Name: "mid", Addr: 0x1001}, {Name: "start", Addr: 0x1000}},
	)

	tests := []struct {
		name   string
		spec   AddressSpec
		length uint64
		want   []Event
	}{
		{
			name: "whole segment",
			spec: Virtual(0x1000),
			want: []Event{
				SymbolEvent{Addr: 0x1000, Name: "start"},
				inst(0x1000, 1, "push", "rbp"),
				SymbolEvent{Addr: 0x1001, Name: "mid"},
				inst(0x1001, 1, "nop", ""),
				inst(0x1002, 1, "ret", ""),
				UndecodableEvent{Addr: 0x1003},
			},
		},
		{
			name:   "clipped length",
			spec:   Virtual(0x1001),
			length: 2,
			want: []Event{
				SymbolEvent{Addr: 0x1001, Name: "mid"},
				inst(0x1001, 1, "nop", ""),
				inst(0x1002, 1, "ret", ""),
			},
		},
		{
			name:   "length past the end",
			spec:   Virtual(0x1002),
			length: 100,
			want: []Event{
				inst(0x1002, 1, "ret", ""),
				UndecodableEvent{Addr: 0x1003},
			},
		},
		{
			name: "one past the end",
			spec: Virtual(0x1004),
		},
		{
			name: "offsets carry no symbols",
			spec: FileOffset(1),
			want: []Event{
				inst(1, 1, "nop", ""),
				inst(2, 1, "ret", ""),
				UndecodableEvent{Addr: 3},
			},
		},
		{
			name:   "offset with length",
			spec:   FileOffset(0),
			length: 1,
			want:   []Event{inst(0, 1, "push", "rbp")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seq, err := x86Disassembler(t, img).Disassemble(tt.spec, tt.length)
			if err != nil {
				t.Fatalf("Disassemble failed: %v", err)
			}
			got := slices.Collect(seq)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("events mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDisassembleErrors(t *testing.T) {
	file := []byte{0x90, 0x90}
	img := binfmt.NewImage(file, binfmt.ArchX8664, 0,
		[]*binfmt.Segment{{Addr: 0x1000, Length: 2, Data: file, Prot: binfmt.ProtExec}}, nil)
	d := x86Disassembler(t, img)

	tests := []struct {
		name string
		spec AddressSpec
		want error
	}{
		{name: "below every segment", spec: Virtual(0xfff), want: binfmt.ErrNotMapped},
		{name: "above every segment", spec: Virtual(0x1003), want: binfmt.ErrNotMapped},
		{name: "offset at file size", spec: FileOffset(2), want: binfmt.ErrOutOfRange},
		{name: "offset past file size", spec: FileOffset(1 << 40), want: binfmt.ErrOutOfRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seq, err := d.Disassemble(tt.spec, 0)
			if !errors.Is(err, tt.want) {
				t.Fatalf("error = %v, want %v", err, tt.want)
			}
			if seq != nil {
				t.Error("no events expected on a resolution error")
			}
		})
	}
}

func TestDisassembleAdjacentSegments(t *testing.T) {
	file := []byte{0x90, 0x90, 0xc3}
	img := binfmt.NewImage(file, binfmt.ArchX8664, 0, []*binfmt.Segment{
		{Addr: 0x1000, Length: 2, Data: file[:2], Prot: binfmt.ProtExec},
		{Addr: 0x1002, Length: 1, Data: file[2:], Prot: binfmt.ProtExec},
	}, nil)
	d := x86Disassembler(t, img)

	ranges, err := d.Plan(Virtual(0x1002), 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(ranges) != 2 || ranges[0].Length != 0 || ranges[1].Length != 1 {
		t.Fatalf("unexpected plan: %+v", ranges)
	}

	got := slices.Collect(d.Events(ranges))
	want := []Event{inst(0x1002, 1, "ret", "")}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
}

func TestDisassembleZeroLengthExpands(t *testing.T) {
	file := make([]byte, 64)
	for i := range file {
		file[i] = 0x90
	}
	img := binfmt.NewImage(file, binfmt.ArchX8664, 0,
		[]*binfmt.Segment{{Addr: 0x4000, Length: 64, Data: file, Prot: binfmt.ProtExec}}, nil)

	seq, err := x86Disassembler(t, img).Disassemble(Virtual(0x4010), 0)
	if err != nil {
		t.Fatal(err)
	}
	var n int
	for range seq {
		n++
	}
	if n != 48 {
		t.Errorf("got %d events, want 48", n)
	}
}

func TestDefaultSpec(t *testing.T) {
	withEntry := binfmt.NewImage(nil, binfmt.ArchX86, 0x8048000, nil, nil)
	if got := DefaultSpec(withEntry); got != Virtual(0x8048000) {
		t.Errorf("DefaultSpec = %s, want entry", got)
	}
	noEntry := binfmt.NewImage(nil, binfmt.ArchX86, 0, nil, nil)
	if got := DefaultSpec(noEntry); got != FileOffset(0) {
		t.Errorf("DefaultSpec = %s, want offset 0", got)
	}
}

func TestSearch(t *testing.T) {
	text := []byte("\x90\x90hello world\x00")
	data := []byte("AAA\x00BBBB\x00C")
	img := binfmt.NewImage(nil, binfmt.ArchX8664, 0, []*binfmt.Segment{
		{Addr: 0x1000, Length: uint64(len(text)), Data: text, Prot: binfmt.ProtRead | binfmt.ProtExec},
		{Addr: 0x2000, Length: uint64(len(data)), Data: data, Prot: binfmt.ProtRead | binfmt.ProtWrite},
		{Addr: 0x3000, Length: 4, Data: []byte("xxxx"), Prot: binfmt.ProtWrite},
	}, nil)

	got := slices.Collect(Search(img, binfmt.ProtRead, scan.PrintableRuns(3)))
	want := []Event{
		ScanRunEvent{Addr: 0x1002, Length: 5, Bytes: []byte("hello"), Prot: binfmt.ProtRead | binfmt.ProtExec},
		ScanRunEvent{Addr: 0x1008, Length: 5, Bytes: []byte("world"), Prot: binfmt.ProtRead | binfmt.ProtExec},
		ScanSummaryEvent{Segment: img.Segments[0], Count: 2},
		ScanRunEvent{Addr: 0x2000, Length: 3, Bytes: []byte("AAA"), Prot: binfmt.ProtRead | binfmt.ProtWrite},
		ScanRunEvent{Addr: 0x2004, Length: 4, Bytes: []byte("BBBB"), Prot: binfmt.ProtRead | binfmt.ProtWrite},
		ScanSummaryEvent{Segment: img.Segments[1], Count: 2},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
}

func TestSearchPattern(t *testing.T) {
	text := []byte{0x58, 0xc3, 0x90, 0x58, 0xc3}
	img := binfmt.NewImage(nil, binfmt.ArchX8664, 0, []*binfmt.Segment{
		{Addr: 0x1000, Length: 5, Data: text, Prot: binfmt.ProtExec},
	}, nil)

	var addrs []uint64
	var total int
	for ev := range Search(img, binfmt.ProtExec, scan.PatternMatches([]byte{0x58, 0xc3})) {
		switch ev := ev.(type) {
		case ScanRunEvent:
			addrs = append(addrs, ev.Addr)
		case ScanSummaryEvent:
			total += ev.Count
		}
	}
	if diff := cmp.Diff([]uint64{0x1000, 0x1003}, addrs); diff != "" {
		t.Errorf("matches (-want +got):\n%s", diff)
	}
	if total != 2 {
		t.Errorf("summary count = %d, want 2", total)
	}
}

func TestSearchEarlyStop(t *testing.T) {
	img := binfmt.NewImage(nil, binfmt.ArchX8664, 0, []*binfmt.Segment{
		{Addr: 0, Length: 7, Data: []byte("aa bb cc"[:7]), Prot: binfmt.ProtRead},
		{Addr: 0x100, Length: 2, Data: []byte("dd"), Prot: binfmt.ProtRead},
	}, nil)
	var n int
	for range Search(img, binfmt.ProtRead, scan.PrintableRuns(1)) {
		n++
		if n == 2 {
			break
		}
	}
	if n != 2 {
		t.Errorf("consumed %d events", n)
	}
}
