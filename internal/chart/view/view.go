// Package view owns the chart viewport: the fractional bar index pinned near
// the right edge, the price at vertical center, and the per-axis scales. It
// converts between (bar index, price) and pixel coordinates and applies the
// auto-center and auto-fit policies.
package view

import (
	"math"

	"fpchart/internal/chart/store"
)

const (
	// RightAnchorPx is the fixed pixel anchor: the bar at EndIndex sits this
	// many pixels left of the canvas right edge.
	RightAnchorPx = 150

	// DefaultScaleX restores a sane bar width after numeric drift.
	DefaultScaleX = 60

	minScaleX = 1
	maxScaleX = 1000

	// maxEndIndexDrift bounds EndIndex before it is treated as runaway input.
	maxEndIndexDrift = 1e6

	// fitHeightFrac is the share of the viewport height the visible price
	// range should occupy after auto-fit.
	fitHeightFrac = 0.70
)

// View is the viewport state. It persists across frames and is mutated only
// by the documented pan/zoom/auto-fit operations, never by ingestion itself.
//
// OffsetY == 0 is the sentinel for "not yet centered": a real traded price of
// exactly zero cannot occur, so the zero value doubles as uninitialized and a
// symbol switch resets it to re-arm auto-centering.
type View struct {
	EndIndex  float64 // fractional bar index aligned to the right anchor
	OffsetY   float64 // price at vertical screen center; 0 = sentinel
	ScaleX    float64 // pixels per bar
	ScaleY    float64 // pixels per price unit
	PriceStep float64 // derived grid spacing, written by the composer

	// AutoFitY keeps the every-frame vertical re-center/re-scale enabled.
	// It intentionally overrides manual vertical panning; turning it off is
	// the hook for a future manual Y lock mode.
	AutoFitY bool
}

func New() *View {
	return &View{
		ScaleX:    120,
		ScaleY:    20,
		PriceStep: 0.05,
		AutoFitY:  true,
	}
}

// Reset re-arms auto-centering for a new symbol. Scales are kept so the user's
// zoom level survives a symbol switch.
func (v *View) Reset() {
	v.OffsetY = 0
}

// XForIndex maps a bar index to its pixel x at the current viewport.
func (v *View) XForIndex(i float64, width int) int {
	return int(math.Floor((i-v.EndIndex)*v.ScaleX + float64(width) - RightAnchorPx))
}

// PriceToY maps a price to its pixel y. The vertical center of the canvas is
// OffsetY; the result is floored so labels land on whole pixels.
func (v *View) PriceToY(price float64, height int) int {
	return int(math.Floor(float64(height)/2 - (price-v.OffsetY)*v.ScaleY))
}

// VisibleRange returns the inclusive index range [start, end] that can appear
// on a canvas of the given width. Indices may run past either end of the
// series; callers bound-check per bar.
func (v *View) VisibleRange(width int) (start, end int) {
	count := int(math.Ceil(float64(width)/v.ScaleX)) + 1
	end = int(math.Floor(v.EndIndex))
	return end - count, end
}

// Pan shifts the viewport by a pixel delta: horizontal drag moves the index
// window, vertical drag moves the centered price. Auto-fit will snap OffsetY
// back on the next frame while it is enabled.
func (v *View) Pan(dx, dy float64) {
	v.EndIndex -= dx / v.ScaleX
	v.OffsetY += dy / v.ScaleY
}

// Zoom rescales the X axis from a wheel delta. Small deltas are treated as
// trackpad gestures and zoom gently; direction follows the scroll sign. The
// scale is clamped to [1, 1000] pixels per bar.
func (v *View) Zoom(deltaY float64) {
	factor := 1.1
	if math.Abs(deltaY) < 50 {
		factor = 1.02
	}
	if deltaY > 0 {
		v.ScaleX /= factor
	} else {
		v.ScaleX *= factor
	}
	if v.ScaleX < minScaleX {
		v.ScaleX = minScaleX
	}
	if v.ScaleX > maxScaleX {
		v.ScaleX = maxScaleX
	}
}

// SnapToLive advances the viewport so the most recent bar sits just left of
// the right anchor.
func (v *View) SnapToLive(barCount int) {
	v.EndIndex = float64(barCount) + 2
}

// Clamp self-heals the viewport after numeric drift or bad input: a NaN or
// zero X scale is reset to the default, and a runaway end index snaps back to
// the live edge. Never surfaced to the user.
func (v *View) Clamp(barCount int) {
	if math.IsNaN(v.ScaleX) || v.ScaleX == 0 {
		v.ScaleX = DefaultScaleX
	}
	if math.Abs(v.EndIndex) > maxEndIndexDrift {
		v.SnapToLive(barCount)
	}
}

// AutoCenter centers the viewport on the market the first time data allows it.
// It is a no-op once OffsetY is set. The newest bar with levels wins; a symbol
// with no bars yet centers on the midpoint of the live dom ladder instead, so
// a live quote alone is enough to place the view. When centering succeeds with
// bars present the view also snaps to the live edge. Reports whether the view
// was centered.
func (v *View) AutoCenter(bars []*store.Bar, dom store.DomSnapshot) bool {
	if v.OffsetY != 0 {
		return false
	}

	target := 0.0
	for i := len(bars) - 1; i >= 0; i-- {
		if len(bars[i].Levels) == 0 {
			continue
		}
		min, max := levelBounds(bars[i].Levels)
		target = (min + max) / 2
		break
	}

	if target == 0 && !dom.Empty() {
		min := math.Inf(1)
		max := math.Inf(-1)
		for _, side := range []map[float64]float64{dom.Bids, dom.Asks} {
			for p := range side {
				if p < min {
					min = p
				}
				if p > max {
					max = p
				}
			}
		}
		target = (min + max) / 2
	}

	if target == 0 {
		return false
	}

	v.OffsetY = target
	if len(bars) > 0 {
		v.SnapToLive(len(bars))
	}
	return true
}

// FitVisible is the every-frame Y policy: it re-centers OffsetY on the
// midpoint of the prices visible in the current index window and rescales
// ScaleY so that range fills ~70% of the canvas height. The scale snaps with
// no easing. When no bars are visible a ±10 window around the current center
// keeps the render non-degenerate. Disabled entirely when AutoFitY is off.
func (v *View) FitVisible(bars []*store.Bar, width, height int) {
	if !v.AutoFitY {
		return
	}

	start, end := v.VisibleRange(width)

	min := math.Inf(1)
	max := math.Inf(-1)
	visible := false
	for i := start; i <= end; i++ {
		if i < 0 || i >= len(bars) {
			continue
		}
		lo, hi := levelBounds(bars[i].Levels)
		if lo < min {
			min = lo
		}
		if hi > max {
			max = hi
		}
		visible = true
	}

	if !visible {
		min = v.OffsetY - 10
		max = v.OffsetY + 10
	}
	if math.IsInf(min, 1) || math.IsInf(max, -1) {
		return
	}

	priceRange := max - min
	if priceRange == 0 {
		priceRange = 1
	}

	v.OffsetY = (min + max) / 2
	v.ScaleY = float64(height) * fitHeightFrac / priceRange
}

func levelBounds(levels map[float64]store.PriceLevel) (min, max float64) {
	min = math.Inf(1)
	max = math.Inf(-1)
	for p := range levels {
		if p < min {
			min = p
		}
		if p > max {
			max = p
		}
	}
	return min, max
}
