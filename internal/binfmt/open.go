package binfmt

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"syscall"
)

// ErrUnknownFormat is returned for files that are not ELF, Mach-O or PE
// when no architecture was given to load them as raw code.
var ErrUnknownFormat = errors.New("unknown binary format (use --arch to load raw code)")

// Open maps path read-only and parses it. A non-undefined arch overrides the
// architecture recorded in the file, and is required to load files in an
// unknown format as a single raw segment.
func Open(path string, arch Arch) (*Image, error) {
	f, err := os.OpenFile(path, os.O_RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat file: %w", err)
	}

	var all []byte
	unmap := func() error { return nil }
	if fi.Size() > 0 {
		all, err = syscall.Mmap(int(f.Fd()), 0, int(fi.Size()), syscall.PROT_READ, syscall.MAP_SHARED)
		if err != nil {
			return nil, fmt.Errorf("mmap file: %w", err)
		}
		mapped := all
		unmap = func() error { return syscall.Munmap(mapped) }
	}

	im, err := Parse(all, arch)
	if err != nil {
		unmap()
		return nil, err
	}
	im.Path = path
	im.unmap = unmap
	return im, nil
}

// Parse decodes an image from an in-memory file.
func Parse(data []byte, arch Arch) (*Image, error) {
	im := &Image{Mapped: data}

	var err error
	switch detect(data) {
	case FormatELF:
		err = im.loadELF()
	case FormatMachO:
		err = im.loadMachO()
	case FormatPE:
		err = im.loadPE()
	default:
		if arch == ArchUndef {
			return nil, ErrUnknownFormat
		}
		im.loadRaw()
	}
	if err != nil {
		return nil, err
	}

	if arch != ArchUndef {
		im.Arch = arch
	}
	im.index()
	return im, nil
}

func detect(data []byte) Format {
	switch {
	case bytes.HasPrefix(data, []byte("\x7fELF")):
		return FormatELF
	case bytes.HasPrefix(data, []byte("MZ")):
		return FormatPE
	case len(data) >= 4:
		switch binary.LittleEndian.Uint32(data) {
		case 0xfeedface, 0xfeedfacf, 0xcefaedfe, 0xcffaedfe:
			return FormatMachO
		}
	}
	return FormatRaw
}

// loadRaw treats the whole file as one rwx segment at address zero.
func (im *Image) loadRaw() {
	im.Format = FormatRaw
	im.Entry = 0
	if seg := im.segment("raw", 0, 0, im.MappedSize(), ProtAll); seg != nil {
		im.Segments = append(im.Segments, seg)
	}
}
