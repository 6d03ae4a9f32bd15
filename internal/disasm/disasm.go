// Package disasm defines a common instruction representation used
// across architecture-specific disassemblers, and the walker that drives
// them over a byte range.
package disasm

import (
	"errors"
	"fmt"
	"strings"

	"roptool/internal/binfmt"
)

var (
	// ErrUnsupportedArch is returned by New for architectures without a decoder.
	ErrUnsupportedArch = errors.New("unsupported architecture")

	// ErrUnsupportedFlavor is returned by New when the decoder has no such syntax.
	ErrUnsupportedFlavor = errors.New("unsupported flavor")

	// errTruncated is returned by fixed width decoders given too few bytes.
	errTruncated = errors.New("truncated instruction")
)

// Inst is a decoded instruction.
type Inst struct {
	Addr     uint64 // virtual address (or file offset) of the instruction
	Size     int    // encoded length, always >= 1
	Mnemonic string
	Operands string
}

// Text is the instruction as one line of assembly.
func (i Inst) Text() string {
	if i.Operands == "" {
		return i.Mnemonic
	}
	return i.Mnemonic + " " + i.Operands
}

// Flavor selects the assembly dialect used to render instructions.
type Flavor int

const (
	FlavorUndef Flavor = iota
	FlavorIntel
	FlavorATT
)

func (f Flavor) String() string {
	switch f {
	case FlavorIntel:
		return "intel"
	case FlavorATT:
		return "att"
	default:
		return "undefined"
	}
}

// ParseFlavor returns FlavorUndef for unknown names.
func ParseFlavor(s string) Flavor {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "intel":
		return FlavorIntel
	case "att", "at&t", "gnu":
		return FlavorATT
	default:
		return FlavorUndef
	}
}

// Decoder decodes one instruction at a time. Decode sees every byte from
// the instruction start to the end of the available range and reports an
// error when no valid instruction starts at code[0].
type Decoder interface {
	Decode(code []byte, addr uint64) (Inst, error)
	Arch() binfmt.Arch
	MaxInstructionSize() int
}

// New returns a decoder for arch rendering in the given flavor.
func New(arch binfmt.Arch, flavor Flavor) (Decoder, error) {
	switch arch {
	case binfmt.ArchX86:
		return newX86(32, flavor)
	case binfmt.ArchX8664:
		return newX86(64, flavor)
	case binfmt.ArchARM:
		if flavor != FlavorIntel {
			return nil, fmt.Errorf("%w %s for %s", ErrUnsupportedFlavor, flavor, arch)
		}
		return armDecoder{}, nil
	case binfmt.ArchARM64:
		if flavor != FlavorIntel {
			return nil, fmt.Errorf("%w %s for %s", ErrUnsupportedFlavor, flavor, arch)
		}
		return arm64Decoder{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedArch, arch)
	}
}

// splitText separates "mnemonic operands". Leading prefixes such as
// "rep" or "lock" stay with the mnemonic.
func splitText(text string) (string, string) {
	text = strings.TrimSpace(text)
	var mnemonic []string
	for {
		head, rest, found := strings.Cut(text, " ")
		mnemonic = append(mnemonic, head)
		text = strings.TrimSpace(rest)
		if !found || !prefixes[head] {
			break
		}
	}
	return strings.Join(mnemonic, " "), text
}

var prefixes = map[string]bool{
	"lock":     true,
	"rep":      true,
	"repe":     true,
	"repz":     true,
	"repne":    true,
	"repnz":    true,
	"data16":   true,
	"data32":   true,
	"addr16":   true,
	"addr32":   true,
	"xacquire": true,
	"xrelease": true,
	"bnd":      true,
	"notrack":  true,
}
