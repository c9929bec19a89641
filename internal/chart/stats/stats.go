// Package stats computes the rolling volume score used to flag anomalous
// activity on the chart.
package stats

import (
	"math"

	"fpchart/internal/chart/store"
)

// DefaultWindow is the trailing window, in bars, used when no override is configured.
const DefaultWindow = 200

// Recompute walks the full series and writes NormVol on every bar: the bar's
// total volume divided by the population standard deviation of total volume
// over the trailing window ending at that bar. Windows shorter than two bars,
// and windows with zero deviation, score 0.
//
// The whole series is recomputed on every call. The series is bounded by
// session length, so this stays cheap; a prefix-sum cache would have to
// reproduce these exact results.
func Recompute(bars []*store.Bar, window int) {
	if window <= 0 {
		window = DefaultWindow
	}

	for i, b := range bars {
		start := i - window + 1
		if start < 0 {
			start = 0
		}
		n := i - start + 1
		if n < 2 {
			b.NormVol = 0
			continue
		}

		var sum float64
		for j := start; j <= i; j++ {
			sum += bars[j].TotalVol
		}
		mean := sum / float64(n)

		var variance float64
		for j := start; j <= i; j++ {
			d := bars[j].TotalVol - mean
			variance += d * d
		}
		variance /= float64(n)
		stdev := math.Sqrt(variance)

		if stdev == 0 {
			b.NormVol = 0
		} else {
			b.NormVol = b.TotalVol / stdev
		}
	}
}
