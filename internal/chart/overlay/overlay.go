// Package overlay maps trade records onto the bar-index timeline established
// by the bar store.
package overlay

import (
	"sort"

	"fpchart/internal/chart/store"
)

// NearestIndex resolves a timestamp to the index of the bar whose ts is
// closest by absolute difference, using binary search over the ts-sorted
// series. Ties resolve to the earlier bar. Returns -1 for an empty series or
// a zero timestamp.
//
// No maximum-distance cutoff is applied: a trade far outside the loaded
// window still binds to the nearest bar. That is a known approximation, not a
// guarantee of temporal accuracy.
func NearestIndex(bars []*store.Bar, ts int64) int {
	if len(bars) == 0 || ts == 0 {
		return -1
	}

	i := sort.Search(len(bars), func(i int) bool { return bars[i].Ts >= ts })
	if i == 0 {
		return 0
	}
	if i == len(bars) {
		return len(bars) - 1
	}

	if absDiff(bars[i-1].Ts, ts) <= absDiff(bars[i].Ts, ts) {
		return i - 1
	}
	return i
}

func absDiff(a, b int64) int64 {
	if a > b {
		return a - b
	}
	return b - a
}
