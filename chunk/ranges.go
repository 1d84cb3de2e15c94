package chunk

import (
	"slices"
	"strconv"
	"strings"
)

// FormatRanges renders indices as compact ranges, e.g. "0-3,7,9-10".
// Input order and duplicates do not matter. An empty set renders as "-".
func FormatRanges(indices []int) string {
	if len(indices) == 0 {
		return "-"
	}
	sorted := slices.Clone(indices)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	var b strings.Builder
	start, prev := sorted[0], sorted[0]
	flush := func() {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(start))
		if prev != start {
			b.WriteByte('-')
			b.WriteString(strconv.Itoa(prev))
		}
	}
	for _, n := range sorted[1:] {
		if n == prev+1 {
			prev = n
			continue
		}
		flush()
		start, prev = n, n
	}
	flush()
	return b.String()
}
