// Package reports turns estimation result documents into human-readable
// dashboards: grouped key/value rows rendered as text, HTML, or JSON.
// Everything here is pure and stateless.
package reports

import (
	"fmt"
	"strings"
)

// durationUnits are ordered largest first so FormatDuration picks the
// biggest unit the value fills completely.
var durationUnits = []struct {
	name string
	ns   float64
}{
	{"hours", 3600e9},
	{"mins", 60e9},
	{"secs", 1e9},
	{"ms", 1e6},
	{"us", 1e3},
	{"ns", 1},
}

// FormatDuration renders a nanosecond quantity using the largest unit it
// reaches, with two decimals. Zero is "0 ns"; exact unit boundaries use
// the larger unit ("1.00 secs", not "1000.00 ms").
func FormatDuration(ns float64) string {
	if ns == 0 {
		return "0 ns"
	}
	if ns < 0 {
		return "-" + FormatDuration(-ns)
	}

	for _, unit := range durationUnits {
		if ns >= unit.ns {
			return fmt.Sprintf("%.2f %s", ns/unit.ns, unit.name)
		}
	}
	return fmt.Sprintf("%.2f ns", ns)
}

// FormatPercent renders a rate in [0,1] as a percentage with two decimals,
// falling back to scientific notation for rates too small to show.
func FormatPercent(rate float64) string {
	pct := rate * 100
	if pct != 0 && pct < 0.01 {
		return fmt.Sprintf("%.2e %%", pct)
	}
	return fmt.Sprintf("%.2f %%", pct)
}

// FormatRate renders an error rate in scientific notation, the way
// per-operation error probabilities are usually quoted.
func FormatRate(rate float64) string {
	if rate == 0 {
		return "0"
	}
	return fmt.Sprintf("%.2e", rate)
}

// FormatCount renders an integer with thousands separators.
func FormatCount(n int64) string {
	s := fmt.Sprintf("%d", n)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}

	var b strings.Builder
	for i, digit := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(digit)
	}

	if neg {
		return "-" + b.String()
	}
	return b.String()
}
