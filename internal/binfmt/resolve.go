package binfmt

import (
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrNotMapped is returned when no segment contains a virtual address.
	ErrNotMapped = errors.New("address not mapped")

	// ErrOutOfRange is returned when a file offset is past the end of the file.
	ErrOutOfRange = errors.New("offset out of range")
)

// Location is a position inside a segment.
type Location struct {
	Segment *Segment
	Cursor  uint64 // offset of the address from Segment.Addr
}

// Addr returns the virtual address of the location.
func (l Location) Addr() uint64 {
	return l.Segment.Addr + l.Cursor
}

// Remaining returns the number of segment bytes from the cursor to the end
// of the segment.
func (l Location) Remaining() uint64 {
	return l.Segment.Length - l.Cursor
}

// Bytes returns the segment bytes from the cursor to the end of the segment.
func (l Location) Bytes() []byte {
	return l.Segment.Data[l.Cursor:]
}

// ResolveAddress returns every segment containing addr, in image order.
//
// A segment matches when Addr <= addr <= Addr+Length. The upper bound is
// inclusive, so the one-past-end address resolves to a location with zero
// remaining bytes. When two segments are adjacent, the shared boundary
// address therefore matches both of them.
func (im *Image) ResolveAddress(addr uint64) ([]Location, error) {
	// first segment (in address order) starting after addr
	hi := sort.Search(len(im.byAddr), func(i int) bool {
		return im.Segments[im.byAddr[i]].Addr > addr
	})

	var hits []int
	for i := hi - 1; i >= 0; i-- {
		idx := im.byAddr[i]
		if addr <= im.Segments[idx].End() {
			hits = append(hits, idx)
		}
	}
	if len(hits) == 0 {
		return nil, fmt.Errorf("%w: 0x%x", ErrNotMapped, addr)
	}
	sort.Ints(hits)

	locs := make([]Location, 0, len(hits))
	for _, idx := range hits {
		seg := im.Segments[idx]
		locs = append(locs, Location{Segment: seg, Cursor: addr - seg.Addr})
	}
	return locs, nil
}

// ResolveOffset checks a file offset against the mapped file size.
func (im *Image) ResolveOffset(off uint64) (uint64, error) {
	if off >= im.MappedSize() {
		return 0, fmt.Errorf("%w: 0x%x (file size 0x%x)", ErrOutOfRange, off, im.MappedSize())
	}
	return off, nil
}

// ClipLength applies the length policy shared by address and offset
// requests: zero, or anything larger than what remains, means everything
// that remains.
func ClipLength(requested, remaining uint64) uint64 {
	if requested == 0 || requested > remaining {
		return remaining
	}
	return requested
}
