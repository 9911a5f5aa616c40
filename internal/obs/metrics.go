package obs

import (
	"slices"
	"strconv"
	"strings"
	"time"
)

// ParseBucketsCSV reads histogram boundaries in milliseconds from a comma
// separated list such as "1,5,25". Blank, malformed and non-positive entries
// are skipped; the result is sorted and free of duplicates.
func ParseBucketsCSV(csv string) []float64 {
	var out []float64
	for _, field := range strings.FieldsFunc(csv, func(r rune) bool { return r == ',' }) {
		v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
		if err != nil || v <= 0 {
			continue
		}
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// DurationMillis expresses d in the unit the calculation histogram uses.
func DurationMillis(d time.Duration) float64 {
	return d.Seconds() * 1000
}
