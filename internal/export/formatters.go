package export

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// usesPace lists the type ids rendered as minutes per kilometer instead of
// kilometers per hour: running, hiking, walking.
var usesPace = map[int]bool{1: true, 3: true, 9: true}

// trunc6 truncates (never rounds) f to six decimal places.
func trunc6(f float64) string {
	truncated := math.Floor(f*1e6) / 1e6
	return strings.TrimLeft(fmt.Sprintf("%12.6f", truncated), " ")
}

// hhmmss renders whole seconds as H:MM:SS zero-padded to at least eight
// characters, with a day prefix past 24 hours.
func hhmmss(seconds float64) string {
	total := int64(seconds)
	days := total / 86400
	rem := total % 86400
	h := rem / 3600
	m := rem % 3600 / 60
	s := rem % 60
	switch {
	case days == 1:
		return fmt.Sprintf("1 day, %d:%02d:%02d", h, m, s)
	case days > 1:
		return fmt.Sprintf("%d days, %d:%02d:%02d", days, h, m, s)
	default:
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
}

// paceOrSpeed converts meters/second into the unit the activity type calls
// for: MM:SS minutes-per-kilometer for pace-based types, one-decimal km/h for
// everything else.
func paceOrSpeed(typeID, parentTypeID int, mps float64) string {
	kmh := 3.6 * mps
	if usesPace[typeID] || usesPace[parentTypeID] {
		secondsPerKm := int(roundHalfUp(3600 / kmh))
		return fmt.Sprintf("%02d:%02d", secondsPerKm/60, secondsPerKm%60)
	}
	return fmt.Sprintf("%.1f", kmh)
}

// roundHalfUp rounds to the nearest integer with ties away from zero.
func roundHalfUp(f float64) float64 {
	return math.Round(f)
}

// roundTo2 rounds to two decimals and renders with a trailing ".0" on whole
// values, matching the catalog format of prior runs.
func roundTo2(f float64) string {
	return floatString(math.Round(f*100) / 100)
}

// floatString renders a float minimally but always with a decimal point.
func floatString(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}
