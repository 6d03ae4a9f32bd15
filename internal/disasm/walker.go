package disasm

import "iter"

// Kind tells decoded instructions from bytes that could not be decoded.
type Kind int

const (
	Decoded Kind = iota
	Undecodable
)

func (k Kind) String() string {
	if k == Undecodable {
		return "undecodable"
	}
	return "decoded"
}

// Outcome is one step of a walk. An Undecodable outcome always stands for
// exactly one consumed byte at Addr.
type Outcome struct {
	Kind Kind
	Addr uint64
	Inst Inst // set when Kind == Decoded
}

// Size is the number of bytes the outcome consumed.
func (o Outcome) Size() int {
	if o.Kind == Undecodable {
		return 1
	}
	return o.Inst.Size
}

// Walker decodes instructions sequentially over code. Each step starts
// where the previous one ended, so a walk cannot be resumed from an
// arbitrary midpoint; start a new Walker instead.
//
// The walk stops once at least requested bytes were consumed. The last
// instruction is never truncated, so the total may overrun requested by up
// to MaxInstructionSize()-1 bytes, but decoding never reads past code.
type Walker struct {
	dec       Decoder
	code      []byte
	base      uint64
	requested uint64
	consumed  uint64
}

// NewWalker prepares a walk over code, whose first byte lives at base.
// code holds every byte available to the decoder; requested bounds the walk
// and is clipped to len(code).
func NewWalker(dec Decoder, code []byte, base, requested uint64) *Walker {
	if requested > uint64(len(code)) {
		requested = uint64(len(code))
	}
	return &Walker{dec: dec, code: code, base: base, requested: requested}
}

// Next decodes the next instruction. It returns false once the requested
// length has been consumed.
func (w *Walker) Next() (Outcome, bool) {
	if w.consumed >= w.requested {
		return Outcome{}, false
	}

	addr := w.base + w.consumed
	inst, err := w.dec.Decode(w.code[w.consumed:], addr)
	if err != nil || inst.Size < 1 {
		w.consumed++
		return Outcome{Kind: Undecodable, Addr: addr}, true
	}

	w.consumed += uint64(inst.Size)
	return Outcome{Kind: Decoded, Addr: addr, Inst: inst}, true
}

// Consumed returns the number of bytes walked so far.
func (w *Walker) Consumed() uint64 {
	return w.consumed
}

// All yields the remaining outcomes of the walk.
func (w *Walker) All() iter.Seq[Outcome] {
	return func(yield func(Outcome) bool) {
		for {
			o, ok := w.Next()
			if !ok || !yield(o) {
				return
			}
		}
	}
}

// Walk returns a sequence that decodes code from the start every time it
// is ranged over.
func Walk(dec Decoder, code []byte, base, requested uint64) iter.Seq[Outcome] {
	return func(yield func(Outcome) bool) {
		NewWalker(dec, code, base, requested).All()(yield)
	}
}
