package analytics

import (
	"math"
	"strconv"
)

// Round2 rounds to two decimal places, half away from zero:
// Round2(0.125) == 0.13, Round2(-0.125) == -0.13.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Format2 renders a monetary value as a fixed two-decimal string. The
// weekly and day-of-week reports use text fields; the daily report and
// the inventory/dashboard views use rounded numerics.
func Format2(v float64) string {
	return strconv.FormatFloat(Round2(v), 'f', 2, 64)
}
