package models

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParseCents converts a decimal money string to integer cents, accepting
// either "." or "," as the decimal separator and rounding to the nearest
// cent ("12,5" -> 1250, "3.999" -> 400). An empty string means the field
// was left blank and is worth zero; anything else that does not parse is
// an error rather than a silent zero.
func ParseCents(value string) (int64, error) {
	s := strings.TrimSpace(value)
	if s == "" {
		return 0, nil
	}
	s = strings.ReplaceAll(s, ",", ".")
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid monetary value %q", value)
	}
	return int64(math.Round(n * 100)), nil
}
