package protocol

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatHex renders v as lowercase hex without a prefix.
func FormatHex(v uint64) string {
	return strconv.FormatUint(v, 16)
}

// ParseHex parses a lowercase or uppercase hex operand without a prefix.
func ParseHex(s string) (uint64, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 16, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidHex, s)
	}
	return v, nil
}

// RegionOperands interleaves address and size operands in request order and
// returns the total requested size.
func RegionOperands(regions []Region) ([]string, int) {
	operands := make([]string, 0, len(regions)*2)
	total := 0
	for _, r := range regions {
		operands = append(operands, FormatHex(uint64(r.Address)), FormatHex(uint64(r.Size)))
		total += r.Size
	}
	return operands, total
}
