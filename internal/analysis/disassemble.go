package analysis

import (
	"iter"

	"roptool/internal/binfmt"
	"roptool/internal/disasm"
)

// SymbolLookup names the symbol starting at an address, if any.
type SymbolLookup interface {
	ByAddress(addr uint64) (string, bool)
}

// Range is one contiguous walk planned for a request.
type Range struct {
	Base   uint64 // address (or file offset) of Code[0]
	Code   []byte // every byte visible to the decoder
	Length uint64 // bytes to walk, already clipped to len(Code)
	Offset bool   // Base is a file offset
}

// Disassembler walks an image with a decoder. Symbols is optional.
type Disassembler struct {
	Image   *binfmt.Image
	Decoder disasm.Decoder
	Symbols SymbolLookup
}

// Plan resolves spec and clips length, without decoding anything. An
// address can resolve to several ranges when segments are adjacent.
func (d *Disassembler) Plan(spec AddressSpec, length uint64) ([]Range, error) {
	if spec.IsOffset() {
		off, err := d.Image.ResolveOffset(spec.Value())
		if err != nil {
			return nil, err
		}
		code := d.Image.Mapped[off:]
		return []Range{{
			Base:   off,
			Code:   code,
			Length: binfmt.ClipLength(length, uint64(len(code))),
			Offset: true,
		}}, nil
	}

	locs, err := d.Image.ResolveAddress(spec.Value())
	if err != nil {
		return nil, err
	}
	ranges := make([]Range, 0, len(locs))
	for _, loc := range locs {
		ranges = append(ranges, Range{
			Base:   loc.Addr(),
			Code:   loc.Bytes(),
			Length: binfmt.ClipLength(length, loc.Remaining()),
		})
	}
	return ranges, nil
}

// Disassemble resolves spec and returns the events of walking length
// bytes from there; zero means up to the end of the segment (or file).
// Resolution errors are returned before any event is produced.
//
// Instructions at file offsets are never annotated with symbols.
func (d *Disassembler) Disassemble(spec AddressSpec, length uint64) (iter.Seq[Event], error) {
	ranges, err := d.Plan(spec, length)
	if err != nil {
		return nil, err
	}
	return d.Events(ranges), nil
}

// Events walks planned ranges in order.
func (d *Disassembler) Events(ranges []Range) iter.Seq[Event] {
	return func(yield func(Event) bool) {
		named := make(map[uint64]bool)
		for _, r := range ranges {
			for o := range disasm.Walk(d.Decoder, r.Code, r.Base, r.Length) {
				if o.Kind == disasm.Undecodable {
					if !yield(UndecodableEvent{Addr: o.Addr}) {
						return
					}
					continue
				}
				if !r.Offset && d.Symbols != nil && !named[o.Addr] {
					if name, ok := d.Symbols.ByAddress(o.Addr); ok {
						named[o.Addr] = true
						if !yield(SymbolEvent{Addr: o.Addr, Name: name}) {
							return
						}
					}
				}
				if !yield(InstructionEvent{Inst: o.Inst}) {
					return
				}
			}
		}
	}
}
