package config

import "errors"

// Validation errors returned by Config.Validate, usable with errors.Is.
var (
	// ErrBadArch is returned for an architecture name no decoder knows.
	ErrBadArch = errors.New("bad architecture: want x86, x86-64, arm or arm64")

	// ErrBadFlavor is returned for a flavor other than intel or att.
	ErrBadFlavor = errors.New("bad flavor: want intel or att")

	// ErrAddressAndOffset is returned when both a start address and a start
	// offset were given.
	ErrAddressAndOffset = errors.New("specify an address or an offset, not both")

	// ErrBadStringLength is returned when the minimum string length is not positive.
	ErrBadStringLength = errors.New("minimum string length must be positive")

	// ErrBadProtection is returned for a protection filter with characters
	// other than r, w and x.
	ErrBadProtection = errors.New("bad protection filter: use a combination of r, w and x")

	// ErrBadPattern is returned for a search pattern that is empty or not valid hex.
	ErrBadPattern = errors.New("bad search pattern")

	// ErrConfigNotFound is returned when an explicitly named config file does not exist.
	ErrConfigNotFound = errors.New("configuration file not found")
)
