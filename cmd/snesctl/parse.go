package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/danmuck/snesctl/internal/protocol"
)

// maxAddress is the top of the 24-bit USB2SNES address space.
const maxAddress = 0xFFFFFF

// parseAddress reads a hex address with an optional 0x or $ prefix.
func parseAddress(s string) (uint32, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	v = strings.TrimPrefix(strings.TrimPrefix(v, "0x"), "$")
	addr, err := protocol.ParseHex(v)
	if err != nil {
		return 0, fmt.Errorf("address %q: %w", s, err)
	}
	if addr > maxAddress {
		return 0, fmt.Errorf("address %q beyond %06x", s, maxAddress)
	}
	return uint32(addr), nil
}

// parseSize reads a positive byte count. Decimal by default, 0x for hex.
func parseSize(s string) (int, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(s), 0, 31)
	if err != nil {
		return 0, fmt.Errorf("size %q: %w", s, err)
	}
	if n == 0 {
		return 0, fmt.Errorf("size %q must be positive", s)
	}
	return int(n), nil
}

// parseRegions reads address/size pairs.
func parseRegions(args []string) ([]protocol.Region, error) {
	if len(args) == 0 || len(args)%2 != 0 {
		return nil, fmt.Errorf("expected <addr> <size> pairs, got %d arguments", len(args))
	}
	regions := make([]protocol.Region, 0, len(args)/2)
	for i := 0; i < len(args); i += 2 {
		addr, err := parseAddress(args[i])
		if err != nil {
			return nil, err
		}
		size, err := parseSize(args[i+1])
		if err != nil {
			return nil, err
		}
		regions = append(regions, protocol.Region{Address: addr, Size: size})
	}
	return regions, nil
}
