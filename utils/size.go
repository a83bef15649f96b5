package utils

import (
	"math"
	"strconv"
)

var sizeUnits = []string{"B", "KB", "MB", "GB", "TB"}

// FormatSize renders a byte count using decimal units, eg; 1500 -> "1.5KB".
// Anything at or above 1000 TB stays in TB rather than running off the unit table.
func FormatSize(bytes int64) string {
	if bytes == 0 {
		return "0 B"
	}
	// Integer comparisons avoid log() landing just under a whole number for exact powers of 1000
	idx := 0
	divisor := int64(1)
	for idx < len(sizeUnits)-1 && bytes/divisor >= 1000 {
		divisor *= 1000
		idx++
	}
	value := math.Round(float64(bytes)/float64(divisor)*100) / 100
	return strconv.FormatFloat(value, 'f', -1, 64) + sizeUnits[idx]
}
