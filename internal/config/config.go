package config

import (
	"path/filepath"

	"github.com/adrg/xdg"

	"roptool/internal/binfmt"
	"roptool/internal/disasm"
)

const (
	// AppName is used for the XDG config directory.
	AppName = "roptool"

	// DefaultFile is disassembled when no file is named.
	DefaultFile = "a.out"

	// DefaultFlavor is the assembly dialect.
	DefaultFlavor = "intel"

	// DefaultMinStringLength is the shortest printable run reported by
	// search --all-strings.
	DefaultMinStringLength = 6

	// DefaultProtection limits search to readable segments.
	DefaultProtection = "r"
)

// Config holds every option of one invocation.
type Config struct {
	// File is the binary to load.
	File string

	// Arch overrides the detected architecture; empty keeps it. A file in
	// an unknown format is loaded as raw bytes only when Arch is set.
	Arch string

	// Flavor is intel or att.
	Flavor string

	// Color enables ANSI colors in listings.
	Color bool

	// Highlight replaces the plain operand colors with syntax highlighting.
	Highlight bool

	// Demangle shows C++ and Rust symbols in source form.
	Demangle bool

	// Start of a disassembly. At most one of HasAddress and HasOffset is set;
	// with neither, the entry point (or offset 0) is used.
	Address    uint64
	HasAddress bool
	Offset     uint64
	HasOffset  bool

	// Length bounds the disassembly in bytes; zero means to the end of the
	// segment or file.
	Length uint64

	// MinStringLength is the shortest printable run search reports.
	MinStringLength int

	// Protection is the segment filter for search, e.g. "r" or "rx".
	Protection string

	// Pattern is the byte sequence search looks for instead of strings.
	Pattern []byte
}

// NewConfig returns a Config with default values.
func NewConfig() Config {
	return Config{
		File:            DefaultFile,
		Flavor:          DefaultFlavor,
		Color:           true,
		MinStringLength: DefaultMinStringLength,
		Protection:      DefaultProtection,
	}
}

// XDGConfigDir returns the per-user configuration directory.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate returns the first problem found.
func (c Config) Validate() error {
	if c.Arch != "" && binfmt.ParseArch(c.Arch) == binfmt.ArchUndef {
		return ErrBadArch
	}
	if disasm.ParseFlavor(c.Flavor) == disasm.FlavorUndef {
		return ErrBadFlavor
	}
	if c.HasAddress && c.HasOffset {
		return ErrAddressAndOffset
	}
	if c.MinStringLength < 1 {
		return ErrBadStringLength
	}
	if _, err := binfmt.ParseProt(c.Protection); err != nil {
		return ErrBadProtection
	}
	return nil
}

// ArchValue is the parsed architecture override, ArchUndef when unset.
func (c Config) ArchValue() binfmt.Arch {
	if c.Arch == "" {
		return binfmt.ArchUndef
	}
	return binfmt.ParseArch(c.Arch)
}

// FlavorValue is the parsed flavor.
func (c Config) FlavorValue() disasm.Flavor {
	return disasm.ParseFlavor(c.Flavor)
}

// ProtValue is the parsed protection filter. Call Validate first.
func (c Config) ProtValue() binfmt.Prot {
	p, _ := binfmt.ParseProt(c.Protection)
	return p
}
