package disasm

import (
	"strings"

	"golang.org/x/arch/arm/armasm"
	"golang.org/x/arch/arm64/arm64asm"

	"roptool/internal/binfmt"
)

// Both ARM decoders use fixed 4-byte little-endian encodings and print
// ARM reference syntax, lowercased.
const armInstLen = 4

type armDecoder struct{}

func (armDecoder) Decode(code []byte, addr uint64) (Inst, error) {
	if len(code) < armInstLen {
		return Inst{}, errTruncated
	}
	inst, err := armasm.Decode(code[:armInstLen], armasm.ModeARM)
	if err != nil {
		return Inst{}, err
	}
	mnemonic, operands := splitText(strings.ToLower(inst.String()))
	return Inst{Addr: addr, Size: inst.Len, Mnemonic: mnemonic, Operands: operands}, nil
}

func (armDecoder) Arch() binfmt.Arch { return binfmt.ArchARM }

func (armDecoder) MaxInstructionSize() int { return armInstLen }

type arm64Decoder struct{}

func (arm64Decoder) Decode(code []byte, addr uint64) (Inst, error) {
	if len(code) < armInstLen {
		return Inst{}, errTruncated
	}
	inst, err := arm64asm.Decode(code[:armInstLen])
	if err != nil {
		return Inst{}, err
	}
	mnemonic, operands := splitText(strings.ToLower(inst.String()))
	return Inst{Addr: addr, Size: armInstLen, Mnemonic: mnemonic, Operands: operands}, nil
}

func (arm64Decoder) Arch() binfmt.Arch { return binfmt.ArchARM64 }

func (arm64Decoder) MaxInstructionSize() int { return armInstLen }
