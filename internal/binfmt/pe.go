package binfmt

import (
	"bytes"
	"debug/pe"
	"fmt"
)

var peArchs = map[uint16]Arch{
	pe.IMAGE_FILE_MACHINE_I386:  ArchX86,
	pe.IMAGE_FILE_MACHINE_AMD64: ArchX8664,
	pe.IMAGE_FILE_MACHINE_ARMNT: ArchARM,
	pe.IMAGE_FILE_MACHINE_ARM64: ArchARM64,
}

// PE sections are mapped at ImageBase+VirtualAddress. COFF symbols are
// section relative and usually stripped from images, so none are loaded.
func (im *Image) loadPE() error {
	f, err := pe.NewFile(bytes.NewReader(im.Mapped))
	if err != nil {
		return fmt.Errorf("open pe: %w", err)
	}
	defer f.Close()

	im.Format = FormatPE
	im.Arch = peArchs[f.Machine]

	var base uint64
	switch oh := f.OptionalHeader.(type) {
	case *pe.OptionalHeader32:
		base = uint64(oh.ImageBase)
		im.Entry = base + uint64(oh.AddressOfEntryPoint)
	case *pe.OptionalHeader64:
		base = oh.ImageBase
		im.Entry = base + uint64(oh.AddressOfEntryPoint)
	}

	for _, s := range f.Sections {
		seg := im.segment(s.Name, base+uint64(s.VirtualAddress), uint64(s.Offset), uint64(s.Size), peProt(s.Characteristics))
		if seg != nil {
			im.Segments = append(im.Segments, seg)
		}
	}
	return nil
}

func peProt(c uint32) Prot {
	var p Prot
	if c&pe.IMAGE_SCN_MEM_READ != 0 {
		p |= ProtRead
	}
	if c&pe.IMAGE_SCN_MEM_WRITE != 0 {
		p |= ProtWrite
	}
	if c&pe.IMAGE_SCN_MEM_EXECUTE != 0 {
		p |= ProtExec
	}
	return p
}
