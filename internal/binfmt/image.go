// Package binfmt describes a loaded executable image: its loadable segments,
// the raw mapped file, its architecture, entry point and symbols. It also
// resolves virtual addresses and file offsets against that description.
package binfmt

import (
	"fmt"
	"sort"
	"strings"
)

// Arch identifies the instruction set of an image.
type Arch int

const (
	ArchUndef Arch = iota
	ArchX86
	ArchX8664
	ArchARM
	ArchARM64
)

var archNames = map[Arch]string{
	ArchUndef: "undefined",
	ArchX86:   "x86",
	ArchX8664: "x86-64",
	ArchARM:   "arm",
	ArchARM64: "arm64",
}

func (a Arch) String() string {
	if s, ok := archNames[a]; ok {
		return s
	}
	return fmt.Sprintf("arch(%d)", int(a))
}

// AddrSize returns the pointer width in bytes.
func (a Arch) AddrSize() int {
	switch a {
	case ArchX8664, ArchARM64:
		return 8
	default:
		return 4
	}
}

// ParseArch maps a user supplied architecture name to an Arch.
// It returns ArchUndef for names it does not know.
func ParseArch(s string) Arch {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "x86", "i386", "386":
		return ArchX86
	case "x86-64", "x86_64", "amd64", "x64":
		return ArchX8664
	case "arm", "arm32":
		return ArchARM
	case "arm64", "aarch64":
		return ArchARM64
	default:
		return ArchUndef
	}
}

// Prot is a set of segment protection flags.
type Prot uint8

const (
	ProtExec  Prot = 1 << iota // x
	ProtWrite                  // w
	ProtRead                   // r

	ProtAll = ProtRead | ProtWrite | ProtExec
)

// String renders the flags the way ls does, e.g. "r-x".
func (p Prot) String() string {
	b := []byte("---")
	if p&ProtRead != 0 {
		b[0] = 'r'
	}
	if p&ProtWrite != 0 {
		b[1] = 'w'
	}
	if p&ProtExec != 0 {
		b[2] = 'x'
	}
	return string(b)
}

// ParseProt accepts any combination of r, w and x ("r", "rx", "r-x").
func ParseProt(s string) (Prot, error) {
	var p Prot
	for _, c := range strings.ToLower(s) {
		switch c {
		case 'r':
			p |= ProtRead
		case 'w':
			p |= ProtWrite
		case 'x':
			p |= ProtExec
		case '-':
		default:
			return 0, fmt.Errorf("bad protection flag %q in %q", c, s)
		}
	}
	if p == 0 {
		return 0, fmt.Errorf("empty protection filter %q", s)
	}
	return p, nil
}

// Segment is one loadable region of an image. Data is a read-only view into
// the mapped file and len(Data) == Length always holds.
type Segment struct {
	Name   string
	Addr   uint64
	Length uint64
	Offset uint64 // file offset of Data[0]
	Data   []byte
	Prot   Prot
}

// End returns the one-past-end address of the segment.
func (s *Segment) End() uint64 {
	return s.Addr + s.Length
}

// Symbol is a named address.
type Symbol struct {
	Name string
	Addr uint64
	Func bool
}

// Format is the container format an image was loaded from.
type Format string

const (
	FormatELF   Format = "elf"
	FormatMachO Format = "mach-o"
	FormatPE    Format = "pe"
	FormatRaw   Format = "raw"
)

// Image is a loaded binary. Segments keep the order they appear in the file.
type Image struct {
	Path     string
	Format   Format
	Arch     Arch
	Entry    uint64
	Segments []*Segment
	Mapped   []byte
	Symbols  []Symbol

	// segment indices sorted by start address
	byAddr []int
	unmap  func() error
}

// NewImage builds an image over an already mapped buffer. It is what the
// loaders use and what tests use to assemble images in memory.
func NewImage(mapped []byte, arch Arch, entry uint64, segs []*Segment, syms []Symbol) *Image {
	im := &Image{
		Format:   FormatRaw,
		Arch:     arch,
		Entry:    entry,
		Segments: segs,
		Mapped:   mapped,
		Symbols:  syms,
	}
	im.index()
	return im
}

func (im *Image) index() {
	im.byAddr = make([]int, len(im.Segments))
	for i := range im.byAddr {
		im.byAddr[i] = i
	}
	sort.SliceStable(im.byAddr, func(i, j int) bool {
		return im.Segments[im.byAddr[i]].Addr < im.Segments[im.byAddr[j]].Addr
	})
}

// MappedSize is the size of the raw file image.
func (im *Image) MappedSize() uint64 {
	return uint64(len(im.Mapped))
}

// Close releases the file mapping. Segment data must not be used afterwards.
func (im *Image) Close() error {
	if im.unmap == nil {
		return nil
	}
	err := im.unmap()
	im.unmap = nil
	im.Mapped = nil
	for _, s := range im.Segments {
		s.Data = nil
	}
	return err
}

// segment slices [off, off+size) out of the mapped file, clipping at the end
// of the file. It returns nil when nothing of the segment is file backed.
func (im *Image) segment(name string, addr, off, size uint64, prot Prot) *Segment {
	total := im.MappedSize()
	if size == 0 || off >= total {
		return nil
	}
	if size > total-off {
		size = total - off
	}
	return &Segment{
		Name:   name,
		Addr:   addr,
		Length: size,
		Offset: off,
		Data:   im.Mapped[off : off+size : off+size],
		Prot:   prot,
	}
}
