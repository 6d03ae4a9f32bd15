package config

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
)

// ParsePattern turns the search --string or --hex argument into bytes.
// Hex may contain spaces and an optional 0x prefix ("0xc3", "58 c3").
func ParsePattern(str, hexStr string) ([]byte, error) {
	switch {
	case str != "" && hexStr != "":
		return nil, fmt.Errorf("%w: use --string or --hex, not both", ErrBadPattern)
	case str != "":
		return []byte(str), nil
	case hexStr != "":
		h := strings.Join(strings.Fields(hexStr), "")
		h = strings.TrimPrefix(strings.TrimPrefix(h, "0x"), "0X")
		b, err := hex.DecodeString(h)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrBadPattern, err)
		}
		if len(b) == 0 {
			return nil, fmt.Errorf("%w: empty", ErrBadPattern)
		}
		return b, nil
	default:
		return nil, nil
	}
}

// ParseNumber accepts decimal, 0x hex and 0 prefixed octal.
func ParseNumber(s string) (uint64, error) {
	return strconv.ParseUint(strings.TrimSpace(s), 0, 64)
}
