// Package analysis drives the decoders and analyzers over an image and
// reports what it finds as an ordered stream of events.
package analysis

import (
	"roptool/internal/binfmt"
	"roptool/internal/disasm"
)

// Event is one item of an analysis stream. The concrete types are listed
// below; consumers switch on them.
type Event interface {
	isEvent()
}

// SymbolEvent precedes the first instruction at a symbol's address.
type SymbolEvent struct {
	Addr uint64
	Name string
}

// InstructionEvent is a decoded instruction.
type InstructionEvent struct {
	disasm.Inst
}

// UndecodableEvent marks one byte no instruction could be decoded from.
type UndecodableEvent struct {
	Addr uint64
}

// ScanRunEvent is one analyzer hit. Bytes aliases the image.
type ScanRunEvent struct {
	Addr   uint64
	Length int
	Bytes  []byte
	Prot   binfmt.Prot
}

// ScanSummaryEvent closes the results of one scanned segment.
type ScanSummaryEvent struct {
	Segment *binfmt.Segment
	Count   int
}

func (SymbolEvent) isEvent()      {}
func (InstructionEvent) isEvent() {}
func (UndecodableEvent) isEvent() {}
func (ScanRunEvent) isEvent()     {}
func (ScanSummaryEvent) isEvent() {}
