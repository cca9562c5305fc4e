// Package formatting parses and prints the loosely structured values the
// service exchanges with people and models: byte sizes and JSON embedded in
// prose.
package formatting

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// byteUnits are base-1024 multiples, smallest first.
var byteUnits = []string{"B", "KB", "MB", "GB", "TB"}

var sizePattern = regexp.MustCompile(`^(\d+(?:\.\d+)?)\s*([A-Za-z]*)$`)

// FormatBytes renders n with the largest unit that keeps the value at or
// above 1, using precision decimal places.
func FormatBytes(n int64, precision int) string {
	precision = max(precision, 0)
	v := float64(n)
	i := 0
	for v >= 1024 && i < len(byteUnits)-1 {
		v /= 1024
		i++
	}
	if i == 0 {
		return strconv.FormatInt(n, 10) + " B"
	}
	return strconv.FormatFloat(v, 'f', precision, 64) + " " + byteUnits[i]
}

// ParseBytes reads sizes such as "50MB", "1.5 gb", or "4096". A bare
// number is a count of bytes.
func ParseBytes(s string) (int64, error) {
	m := sizePattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, fmt.Errorf("invalid byte size: %q", s)
	}

	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid byte size %q: %w", s, err)
	}

	unit := strings.ToUpper(m[2])
	if unit == "" {
		unit = "B"
	}
	for i, u := range byteUnits {
		if u == unit {
			return int64(v * float64(int64(1)<<(10*i))), nil
		}
	}
	return 0, fmt.Errorf("unknown byte size unit: %q", m[2])
}
