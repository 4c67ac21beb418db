// Package score converts an ad probability into the percentage and colour
// band shown by the progress indicator.
package score

import (
	"fmt"
	"math"
)

// Band is the progress bar's colour step.
type Band string

const (
	BandA Band = "a"
	BandB Band = "b"
	BandC Band = "c"
	BandD Band = "d"
	BandE Band = "e"
)

// Percent maps a probability to [0, 100]. Values within [0, 1] are treated as
// fractions; larger values are assumed to be percentages already, which is
// what the hosted backend returns.
func Percent(prob float64) float64 {
	if math.IsNaN(prob) {
		return 0
	}

	pct := prob
	if prob >= 0 && prob <= 1 {
		pct = prob * 100
	}

	return math.Min(math.Max(pct, 0), 100)
}

// BandOf returns the band for a percentage.
func BandOf(pct float64) Band {
	switch {
	case pct < 20:
		return BandA
	case pct < 40:
		return BandB
	case pct < 60:
		return BandC
	case pct < 80:
		return BandD
	default:
		return BandE
	}
}

// Label formats a percentage for display, e.g. "5%".
func Label(pct float64) string {
	return fmt.Sprintf("%.0f%%", pct)
}

// Indicator is everything needed to draw the progress bar.
type Indicator struct {
	Percent float64
	Band    Band
	Label   string
}

// NewIndicator builds the indicator for a raw probability.
func NewIndicator(prob float64) Indicator {
	pct := Percent(prob)

	return Indicator{
		Percent: pct,
		Band:    BandOf(pct),
		Label:   Label(pct),
	}
}
