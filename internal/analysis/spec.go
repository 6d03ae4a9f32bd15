package analysis

import (
	"fmt"

	"roptool/internal/binfmt"
)

type specKind int

const (
	kindVirtual specKind = iota
	kindOffset
)

// AddressSpec says where a disassembly starts: a virtual address or a
// file offset. The zero value is virtual address 0.
type AddressSpec struct {
	kind  specKind
	value uint64
}

// Virtual starts at a virtual address.
func Virtual(addr uint64) AddressSpec {
	return AddressSpec{kind: kindVirtual, value: addr}
}

// FileOffset starts at a byte offset into the file.
func FileOffset(off uint64) AddressSpec {
	return AddressSpec{kind: kindOffset, value: off}
}

// IsOffset reports whether s is a file offset.
func (s AddressSpec) IsOffset() bool { return s.kind == kindOffset }

// Value is the address or offset.
func (s AddressSpec) Value() uint64 { return s.value }

func (s AddressSpec) String() string {
	if s.IsOffset() {
		return fmt.Sprintf("offset 0x%x", s.value)
	}
	return fmt.Sprintf("address 0x%x", s.value)
}

// DefaultSpec picks the start of a disassembly when the caller named
// none: the entry point, or the start of the file when there is no entry.
func DefaultSpec(img *binfmt.Image) AddressSpec {
	if img.Entry != 0 {
		return Virtual(img.Entry)
	}
	return FileOffset(0)
}
