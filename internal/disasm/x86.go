package disasm

import (
	"fmt"

	"golang.org/x/arch/x86/x86asm"

	"roptool/internal/binfmt"
)

// maxX86InstLen is the architectural limit on x86 instruction length.
const maxX86InstLen = 15

type x86Decoder struct {
	mode   int // 32 or 64
	syntax func(inst x86asm.Inst, pc uint64, symname x86asm.SymLookup) string
}

func newX86(mode int, flavor Flavor) (Decoder, error) {
	d := x86Decoder{mode: mode}
	switch flavor {
	case FlavorIntel:
		d.syntax = x86asm.IntelSyntax
	case FlavorATT:
		d.syntax = x86asm.GNUSyntax
	default:
		return nil, fmt.Errorf("%w %s for x86", ErrUnsupportedFlavor, flavor)
	}
	return d, nil
}

func (d x86Decoder) Decode(code []byte, addr uint64) (Inst, error) {
	inst, err := x86asm.Decode(code, d.mode)
	if err != nil {
		return Inst{}, err
	}
	// relative targets print as absolute addresses unless addr is zero
	mnemonic, operands := splitText(d.syntax(inst, addr, nil))
	return Inst{
		Addr:     addr,
		Size:     inst.Len,
		Mnemonic: mnemonic,
		Operands: operands,
	}, nil
}

func (d x86Decoder) Arch() binfmt.Arch {
	if d.mode == 64 {
		return binfmt.ArchX8664
	}
	return binfmt.ArchX86
}

func (d x86Decoder) MaxInstructionSize() int { return maxX86InstLen }
