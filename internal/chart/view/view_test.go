package view

import (
	"math"
	"testing"

	"fpchart/internal/chart/store"
)

func barAt(ts int64, prices ...float64) *store.Bar {
	levels := make(map[float64]store.PriceLevel, len(prices))
	for _, p := range prices {
		levels[p] = store.PriceLevel{Bid: 1, Ask: 1}
	}
	return &store.Bar{Ts: ts, Levels: levels}
}

// go test -v --run TestProjection
func TestProjection(t *testing.T) {
	v := New()
	v.EndIndex = 10
	v.ScaleX = 10
	v.OffsetY = 100
	v.ScaleY = 2

	// The bar at EndIndex sits at the right anchor.
	if x := v.XForIndex(10, 800); x != 800-RightAnchorPx {
		t.Errorf("anchor x got %d want %d", x, 800-RightAnchorPx)
	}
	if x := v.XForIndex(8, 800); x != 800-RightAnchorPx-20 {
		t.Errorf("x got %d want %d", x, 800-RightAnchorPx-20)
	}

	// OffsetY maps to vertical center; higher prices map upward.
	if y := v.PriceToY(100, 900); y != 450 {
		t.Errorf("center y got %d want 450", y)
	}
	if y := v.PriceToY(110, 900); y != 430 {
		t.Errorf("y got %d want 430", y)
	}
}

// go test -v --run TestVisibleRange
func TestVisibleRange(t *testing.T) {
	v := New()
	v.ScaleX = 100
	v.EndIndex = 20.7

	start, end := v.VisibleRange(1000)
	if end != 20 {
		t.Errorf("end got %d want 20", end)
	}
	// ceil(1000/100)+1 = 11 bars back from the end index
	if start != 9 {
		t.Errorf("start got %d want 9", start)
	}
}

// go test -v --run TestPan
func TestPan(t *testing.T) {
	v := New()
	v.EndIndex = 50
	v.ScaleX = 10
	v.OffsetY = 100
	v.ScaleY = 4

	v.Pan(20, -8)
	if v.EndIndex != 48 {
		t.Errorf("endIndex got %v want 48", v.EndIndex)
	}
	if v.OffsetY != 98 {
		t.Errorf("offsetY got %v want 98", v.OffsetY)
	}
}

// go test -v --run TestZoomClamped
func TestZoomClamped(t *testing.T) {
	v := New()

	v.ScaleX = 999
	v.Zoom(-100) // wheel zoom in: ×1.1
	if v.ScaleX != 1000 {
		t.Errorf("scaleX not clamped high: %v", v.ScaleX)
	}

	v.ScaleX = 1.01
	v.Zoom(100) // wheel zoom out
	if v.ScaleX != 1 {
		t.Errorf("scaleX not clamped low: %v", v.ScaleX)
	}

	// Small deltas use the gentle trackpad factor
	v.ScaleX = 100
	v.Zoom(-10)
	if math.Abs(v.ScaleX-102) > 1e-9 {
		t.Errorf("trackpad zoom got %v want 102", v.ScaleX)
	}
}

// go test -v --run TestClampSelfHeals
func TestClampSelfHeals(t *testing.T) {
	v := New()
	v.ScaleX = math.NaN()
	v.EndIndex = 2e6

	v.Clamp(30)
	if v.ScaleX != DefaultScaleX {
		t.Errorf("scaleX got %v want %v", v.ScaleX, float64(DefaultScaleX))
	}
	if v.EndIndex != 32 {
		t.Errorf("endIndex got %v want 32", v.EndIndex)
	}

	// A healthy viewport is untouched.
	v.ScaleX = 80
	v.EndIndex = 12
	v.Clamp(30)
	if v.ScaleX != 80 || v.EndIndex != 12 {
		t.Errorf("healthy viewport mutated: scaleX=%v endIndex=%v", v.ScaleX, v.EndIndex)
	}
}

// go test -v --run TestAutoCenterFromBars
func TestAutoCenterFromBars(t *testing.T) {
	v := New()
	bars := []*store.Bar{
		barAt(100, 10, 20),
		barAt(200, 48, 52), // newest bar wins
	}

	if !v.AutoCenter(bars, store.DomSnapshot{}) {
		t.Fatal("expected centering")
	}
	if v.OffsetY != 50 {
		t.Errorf("offsetY got %v want 50", v.OffsetY)
	}
	if v.EndIndex != 4 {
		t.Errorf("endIndex got %v want 4 (len+2)", v.EndIndex)
	}
}

// go test -v --run TestAutoCenterSentinel
func TestAutoCenterSentinel(t *testing.T) {
	v := New()
	v.OffsetY = 50

	bars := []*store.Bar{barAt(100, 500, 600)} // wildly different prices
	if v.AutoCenter(bars, store.DomSnapshot{}) {
		t.Fatal("must not re-center once offsetY is set")
	}
	if v.OffsetY != 50 {
		t.Errorf("offsetY moved to %v", v.OffsetY)
	}
}

// go test -v --run TestAutoCenterDomFallback
func TestAutoCenterDomFallback(t *testing.T) {
	v := New()
	dom := store.DomSnapshot{
		Bids: map[float64]float64{99: 10, 98: 5},
		Asks: map[float64]float64{101: 7},
	}

	if !v.AutoCenter(nil, dom) {
		t.Fatal("expected centering from dom")
	}
	if v.OffsetY != 99.5 {
		t.Errorf("offsetY got %v want 99.5 (midpoint of 98..101)", v.OffsetY)
	}
	// No bars: the index axis stays put.
	if v.EndIndex != 0 {
		t.Errorf("endIndex moved to %v", v.EndIndex)
	}
}

// go test -v --run TestAutoCenterNothingToCenterOn
func TestAutoCenterNothingToCenterOn(t *testing.T) {
	v := New()
	if v.AutoCenter(nil, store.DomSnapshot{}) {
		t.Fatal("nothing to center on")
	}
	if v.OffsetY != 0 {
		t.Errorf("sentinel cleared: %v", v.OffsetY)
	}
}

// go test -v --run TestFitVisible
func TestFitVisible(t *testing.T) {
	v := New()
	v.ScaleX = 50
	v.EndIndex = 1

	bars := []*store.Bar{barAt(100, 95, 105)}
	v.FitVisible(bars, 100, 100)

	if v.OffsetY != 100 {
		t.Errorf("offsetY got %v want 100", v.OffsetY)
	}
	// Range 10 fills 70% of 100px
	if math.Abs(v.ScaleY-7) > 1e-9 {
		t.Errorf("scaleY got %v want 7", v.ScaleY)
	}
}

// go test -v --run TestFitVisibleFallbackWindow
func TestFitVisibleFallbackWindow(t *testing.T) {
	v := New()
	v.ScaleX = 50
	v.EndIndex = 1000 // scrolled far past the data
	v.OffsetY = 200

	bars := []*store.Bar{barAt(100, 95, 105)}
	v.FitVisible(bars, 100, 100)

	// ±10 around the current center keeps the render non-degenerate.
	if v.OffsetY != 200 {
		t.Errorf("offsetY got %v want 200", v.OffsetY)
	}
	if math.Abs(v.ScaleY-3.5) > 1e-9 {
		t.Errorf("scaleY got %v want 3.5 (70%% of height over a 20 range)", v.ScaleY)
	}
}

// go test -v --run TestFitVisibleDisabled
func TestFitVisibleDisabled(t *testing.T) {
	v := New()
	v.AutoFitY = false
	v.OffsetY = 42
	v.ScaleY = 13

	v.FitVisible([]*store.Bar{barAt(100, 95, 105)}, 100, 100)
	if v.OffsetY != 42 || v.ScaleY != 13 {
		t.Errorf("manual Y lock violated: offsetY=%v scaleY=%v", v.OffsetY, v.ScaleY)
	}
}

// go test -v --run TestFitVisibleSinglePrice
func TestFitVisibleSinglePrice(t *testing.T) {
	v := New()
	v.ScaleX = 50
	v.EndIndex = 1

	// One price level: the range degenerates to 0 and falls back to 1.
	v.FitVisible([]*store.Bar{barAt(100, 50)}, 100, 100)
	if math.Abs(v.ScaleY-70) > 1e-9 {
		t.Errorf("scaleY got %v want 70", v.ScaleY)
	}
	if v.OffsetY != 50 {
		t.Errorf("offsetY got %v want 50", v.OffsetY)
	}
}
