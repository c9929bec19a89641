package stats

import (
	"testing"

	"fpchart/internal/chart/store"
)

func barsWithVolumes(vols ...float64) []*store.Bar {
	bars := make([]*store.Bar, len(vols))
	for i, v := range vols {
		bars[i] = &store.Bar{Ts: int64(i+1) * 1000, TotalVol: v}
	}
	return bars
}

// go test -v --run TestConstantSeriesScoresZero
func TestConstantSeriesScoresZero(t *testing.T) {
	bars := barsWithVolumes(10, 10, 10, 10, 10, 10, 10, 10)
	Recompute(bars, DefaultWindow)

	for i, b := range bars {
		if b.NormVol != 0 {
			t.Errorf("bar %d: normVol got %v want 0 (stdev is zero)", i, b.NormVol)
		}
	}
}

// go test -v --run TestOutlierScoresHigh
func TestOutlierScoresHigh(t *testing.T) {
	vols := make([]float64, 51)
	for i := 0; i < 50; i++ {
		vols[i] = 10
	}
	vols[50] = 1000 // single spike over a flat run

	bars := barsWithVolumes(vols...)
	Recompute(bars, DefaultWindow)

	if bars[50].NormVol <= 3 {
		t.Errorf("outlier normVol got %v, want > 3", bars[50].NormVol)
	}
}

// go test -v --run TestShortWindowScoresZero
func TestShortWindowScoresZero(t *testing.T) {
	bars := barsWithVolumes(42)
	Recompute(bars, DefaultWindow)
	if bars[0].NormVol != 0 {
		t.Errorf("single-bar window must score 0, got %v", bars[0].NormVol)
	}
}

// go test -v --run TestWindowBoundsOlderBars
func TestWindowBoundsOlderBars(t *testing.T) {
	// A huge early spike must fall out of the trailing window.
	vols := make([]float64, 210)
	vols[0] = 100000
	for i := 1; i < 205; i++ {
		vols[i] = 10
	}
	for i := 205; i < 210; i++ {
		vols[i] = float64(10 + i%3) // mild variation so stdev is non-zero
	}

	bars := barsWithVolumes(vols...)
	Recompute(bars, 200)

	// Bar 209's window is [10..209], which excludes the spike at index 0;
	// its score is driven only by the mild tail variation.
	if bars[209].NormVol > 100 {
		t.Errorf("spike outside the window leaked into the score: %v", bars[209].NormVol)
	}
	if bars[209].NormVol == 0 {
		t.Error("tail variation should produce a non-zero score")
	}
}

// go test -v --run TestRecomputeOverwritesStaleScores
func TestRecomputeOverwritesStaleScores(t *testing.T) {
	bars := barsWithVolumes(10, 10, 10)
	bars[1].NormVol = 99 // stale value from a previous series state

	Recompute(bars, DefaultWindow)
	if bars[1].NormVol != 0 {
		t.Errorf("stale normVol not overwritten: %v", bars[1].NormVol)
	}
}
