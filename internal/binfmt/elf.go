package binfmt

import (
	"bytes"
	"debug/elf"
	"fmt"
)

var elfArchs = map[elf.Machine]Arch{
	elf.EM_386:     ArchX86,
	elf.EM_X86_64:  ArchX8664,
	elf.EM_ARM:     ArchARM,
	elf.EM_AARCH64: ArchARM64,
}

func (im *Image) loadELF() error {
	f, err := elf.NewFile(bytes.NewReader(im.Mapped))
	if err != nil {
		return fmt.Errorf("open elf: %w", err)
	}
	defer f.Close()

	im.Format = FormatELF
	im.Arch = elfArchs[f.Machine]
	im.Entry = f.Entry

	for i, p := range f.Progs {
		if p.Type != elf.PT_LOAD {
			continue
		}
		seg := im.segment(fmt.Sprintf("LOAD%d", i), p.Vaddr, p.Off, p.Filesz, elfProt(p.Flags))
		if seg != nil {
			im.Segments = append(im.Segments, seg)
		}
	}

	// Static symbols first, dynamic ones fill in stripped binaries.
	if syms, err := f.Symbols(); err == nil {
		im.addELFSymbols(syms)
	}
	if syms, err := f.DynamicSymbols(); err == nil {
		im.addELFSymbols(syms)
	}
	return nil
}

func (im *Image) addELFSymbols(syms []elf.Symbol) {
	for _, s := range syms {
		// undefined, unnamed and bookkeeping symbols carry no useful address
		if s.Value == 0 || s.Name == "" || s.Section == elf.SHN_UNDEF {
			continue
		}
		typ := elf.ST_TYPE(s.Info)
		if typ == elf.STT_SECTION || typ == elf.STT_FILE {
			continue
		}
		addr := s.Value
		if im.Arch == ArchARM && typ == elf.STT_FUNC {
			addr &^= 1 // thumb bit
		}
		im.Symbols = append(im.Symbols, Symbol{Name: s.Name, Addr: addr, Func: typ == elf.STT_FUNC})
	}
}

func elfProt(flags elf.ProgFlag) Prot {
	var p Prot
	if flags&elf.PF_R != 0 {
		p |= ProtRead
	}
	if flags&elf.PF_W != 0 {
		p |= ProtWrite
	}
	if flags&elf.PF_X != 0 {
		p |= ProtExec
	}
	return p
}
