package binfmt

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/blacktop/go-macho"
	"github.com/blacktop/go-macho/types"
)

var machoArchs = map[types.CPU]Arch{
	types.CPUI386:  ArchX86,
	types.CPUAmd64: ArchX8664,
	types.CPUArm:   ArchARM,
	types.CPUArm64: ArchARM64,
}

// VM_PROT_* bits of a segment's initial protection
const (
	vmProtRead    = 0x1
	vmProtWrite   = 0x2
	vmProtExecute = 0x4
)

func (im *Image) loadMachO() error {
	f, err := macho.NewFile(bytes.NewReader(im.Mapped))
	if err != nil {
		return fmt.Errorf("open mach-o: %w", err)
	}

	im.Format = FormatMachO
	im.Arch = machoArchs[f.CPU]

	for _, s := range f.Segments() {
		// __PAGEZERO has no file backing and no protection
		seg := im.segment(s.Name, s.Addr, s.Offset, s.Filesz, machoProt(uint32(s.Prot)))
		if seg != nil {
			im.Segments = append(im.Segments, seg)
		}
	}

	for _, l := range f.Loads {
		switch l := l.(type) {
		case *macho.EntryPoint:
			if va, err := f.GetVMAddress(l.EntryOffset); err == nil {
				im.Entry = va
			}
		case *macho.UnixThread:
			if pc, ok := threadPC(l.Threads, im.Arch, f.ByteOrder); ok {
				im.Entry = pc
			}
		}
	}

	if f.Symtab != nil {
		for _, s := range f.Symtab.Syms {
			if s.Value == 0 || s.Name == "" {
				continue
			}
			im.Symbols = append(im.Symbols, Symbol{Name: s.Name, Addr: s.Value})
		}
	}
	return nil
}

// threadPC reads the initial program counter out of an LC_UNIXTHREAD
// register dump. x86 and ARM reuse flavor numbers, so arch picks the layout.
func threadPC(states []types.ThreadState, arch Arch, bo binary.ByteOrder) (uint64, bool) {
	for _, st := range states {
		var off, size int
		switch {
		case arch == ArchX8664 && st.Flavor == types.ThreadFlavor(types.X86_THREAD_STATE64):
			off, size = 16*8, 8 // rip
		case arch == ArchX86 && st.Flavor == types.ThreadFlavor(types.X86_THREAD_STATE32):
			off, size = 10*4, 4 // eip
		case arch == ArchARM64 && st.Flavor == types.ThreadFlavor(types.ARM_THREAD_STATE64):
			off, size = 32*8, 8 // pc
		case arch == ArchARM && st.Flavor == types.ThreadFlavor(types.ARM_THREAD_STATE):
			off, size = 15*4, 4 // pc
		default:
			continue
		}
		if len(st.Data) < off+size {
			continue
		}
		if size == 8 {
			return bo.Uint64(st.Data[off:]), true
		}
		return uint64(bo.Uint32(st.Data[off:])), true
	}
	return 0, false
}

func machoProt(vm uint32) Prot {
	var p Prot
	if vm&vmProtRead != 0 {
		p |= ProtRead
	}
	if vm&vmProtWrite != 0 {
		p |= ProtWrite
	}
	if vm&vmProtExecute != 0 {
		p |= ProtExec
	}
	return p
}
