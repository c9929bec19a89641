// Package render composes one frame of draw primitives from the bar store,
// viewport and trade overlay. Pixel output, colors and typography belong to
// the presentation layer.
package render

import (
	"fmt"
	"math"
	"sort"

	"fpchart/internal/chart/overlay"
	"fpchart/internal/chart/store"
	"fpchart/internal/chart/view"
)

const (
	gridPxTarget = 50  // target pixels between price gridlines
	tickPxTarget = 100 // target pixels between time labels
	domDepth     = 20  // ladder rows shown per side
	bubbleShowAt = 0.5 // minimum NormVol for a bubble
)

// ComposeFrame runs the per-frame render pass: it self-heals the viewport,
// applies the auto-fit Y policy, and emits the ordered primitives for one
// frame. It reads bar data and writes only derived viewport fields, so it is
// safe to run on every tick regardless of what ingestion did in between.
func ComposeFrame(bars []*store.Bar, v *view.View, dom store.DomSnapshot, trades []store.Trade, width, height int, overlayMsg string) *Frame {
	f := &Frame{Overlay: overlayMsg}
	f.Dom = composeDomRows(dom)

	if len(bars) == 0 {
		return f
	}

	v.Clamp(len(bars))
	v.FitVisible(bars, width, height)

	composeGrid(f, v, width, height)
	composeTicks(f, bars, v, width)
	composeBars(f, bars, v, width, height)
	composeTrades(f, bars, v, trades, width, height)

	return f
}

// NiceStep snaps a raw per-gridline price delta to a 1/2/5 magnitude step so
// labels land on round values. scaleY is pixels per price unit. The 5
// threshold is inclusive: a ratio of exactly 5 (e.g. scaleY=1000) still snaps
// up to the ×5 step. The 2 threshold is strict, so a ratio of exactly 2 stays
// at the plain magnitude.
func NiceStep(scaleY float64) float64 {
	raw := gridPxTarget / scaleY
	mag := math.Pow(10, math.Floor(math.Log10(raw)))
	switch {
	case raw/mag >= 5:
		return mag * 5
	case raw/mag > 2:
		return mag * 2
	default:
		return mag
	}
}

// BubbleTier buckets a volume score for visual severity.
func BubbleTier(normVol float64) int {
	switch {
	case normVol < 1:
		return 0
	case normVol < 3:
		return 1
	case normVol < 5:
		return 2
	default:
		return 3
	}
}

func composeGrid(f *Frame, v *view.View, width, height int) {
	step := NiceStep(v.ScaleY)
	v.PriceStep = step

	cy := float64(height) / 2
	topPrice := v.OffsetY + cy/v.ScaleY
	bottomPrice := v.OffsetY - (float64(height)-cy)/v.ScaleY

	startP := math.Floor(bottomPrice/step) * step
	endP := math.Ceil(topPrice/step) * step

	// Integer loop count avoids accumulating float drift across gridlines.
	n := int(math.Round((endP - startP) / step))
	for k := 0; k <= n; k++ {
		p := startP + float64(k)*step
		f.Grid = append(f.Grid, GridLine{
			Y:     v.PriceToY(p, height),
			Price: p,
			Label: fmt.Sprintf("%.2f", p),
		})
	}
}

func composeTicks(f *Frame, bars []*store.Bar, v *view.View, width int) {
	barStep := int(math.Ceil(tickPxTarget / v.ScaleX))
	if barStep < 1 {
		barStep = 1
	}

	start, end := v.VisibleRange(width)
	for i := start; i <= end; i++ {
		if i < 0 || i >= len(bars) || i%barStep != 0 {
			continue
		}
		f.Ticks = append(f.Ticks, TimeTick{
			X:  v.XForIndex(float64(i), width),
			Ts: bars[i].Ts,
		})
	}
}

func composeBars(f *Frame, bars []*store.Bar, v *view.View, width, height int) {
	barW := v.ScaleX
	cellH := math.Max(14, v.ScaleY)

	start, end := v.VisibleRange(width)
	for i := start; i <= end; i++ {
		if i < 0 || i >= len(bars) {
			continue
		}
		bar := bars[i]
		x := v.XForIndex(float64(i), width)

		// Off-screen cull; the index range already bounds X loosely.
		if float64(x)+barW < 0 || x > width {
			continue
		}

		if bar.NormVol > bubbleShowAt {
			r := math.Min(barW/2-2, 3+bar.NormVol*2)
			if r < 2 {
				r = 2
			}
			f.Bubbles = append(f.Bubbles, VolumeBubble{
				X:       x - int(barW/2),
				Y:       height - 25,
				Radius:  r,
				NormVol: bar.NormVol,
				Tier:    BubbleTier(bar.NormVol),
			})
		}

		composeCells(f, bar, v, x, int(barW), int(cellH), height)
	}
}

func composeCells(f *Frame, bar *store.Bar, v *view.View, x, barW, cellH, height int) {
	prices := make([]float64, 0, len(bar.Levels))
	for p := range bar.Levels {
		prices = append(prices, p)
	}
	sort.Float64s(prices)

	// Largest delta scales the per-level histogram strip; POC is the level
	// with the largest combined volume.
	maxDelta := 1.0
	maxLevelVol := 0.0
	pocPrice := math.NaN()
	for _, p := range prices {
		lv := bar.Levels[p]
		if d := math.Abs(lv.Ask - lv.Bid); d > maxDelta {
			maxDelta = d
		}
		if tot := lv.Ask + lv.Bid; tot > maxLevelVol {
			maxLevelVol = tot
			pocPrice = p
		}
	}

	labelled := v.ScaleY > 12
	for _, p := range prices {
		y := v.PriceToY(p, height)
		if y < -cellH || y > height+cellH {
			continue
		}
		lv := bar.Levels[p]
		delta := lv.Ask - lv.Bid

		f.Cells = append(f.Cells, Cell{
			X:            x - barW,
			Y:            y,
			W:            barW,
			H:            cellH,
			Price:        p,
			Bid:          lv.Bid,
			Ask:          lv.Ask,
			Delta:        delta,
			DeltaScale:   math.Abs(delta) / maxDelta,
			POC:          p == pocPrice,
			BidImbalance: lv.Bid > 3*lv.Ask && lv.Bid > 5,
			AskImbalance: lv.Ask > 3*lv.Bid && lv.Ask > 5,
			Labelled:     labelled,
		})
	}
}

func composeTrades(f *Frame, bars []*store.Bar, v *view.View, trades []store.Trade, width, height int) {
	xFor := func(ts int64) (int, bool) {
		idx := overlay.NearestIndex(bars, ts)
		if idx < 0 {
			return 0, false
		}
		return v.XForIndex(float64(idx), width), true
	}

	for _, t := range trades {
		ex, ok := xFor(t.EntryTs)
		if !ok {
			continue
		}
		ey := v.PriceToY(t.EntryPrice, height)
		long := t.IsLong()

		if t.Closed() {
			if xx, ok := xFor(t.ExitTs); ok {
				xy := v.PriceToY(t.ExitPrice, height)
				f.Lines = append(f.Lines, TradeLine{X1: ex, Y1: ey, X2: xx, Y2: xy, Long: long, Dashed: true})
				f.Markers = append(f.Markers, TradeMarker{X: xx, Y: xy, Kind: MarkerExit, Long: long})
			}
		} else if t.Status == "OPEN" {
			// Open positions ride as a ray at the entry price out to the
			// right edge; no interpolation to a last traded price.
			f.Lines = append(f.Lines, TradeLine{X1: ex, Y1: ey, X2: width, Y2: ey, Long: long, Dashed: true})
		}

		label := "S"
		if long {
			label = "L"
		}
		f.Markers = append(f.Markers, TradeMarker{X: ex, Y: ey, Kind: MarkerEntry, Long: long, Label: label})
	}
}

func composeDomRows(dom store.DomSnapshot) []DomRow {
	if dom.Empty() {
		return nil
	}

	asks := sortedPrices(dom.Asks, false) // best ask first
	if len(asks) > domDepth {
		asks = asks[:domDepth]
	}
	rows := make([]DomRow, 0, 2*domDepth)
	// Display order: highest shown ask at the top, down to the best ask.
	for i := len(asks) - 1; i >= 0; i-- {
		rows = append(rows, DomRow{Side: "ASK", Price: asks[i], Qty: dom.Asks[asks[i]]})
	}

	bids := sortedPrices(dom.Bids, true) // best bid first
	if len(bids) > domDepth {
		bids = bids[:domDepth]
	}
	for _, p := range bids {
		rows = append(rows, DomRow{Side: "BID", Price: p, Qty: dom.Bids[p]})
	}
	return rows
}

func sortedPrices(side map[float64]float64, descending bool) []float64 {
	out := make([]float64, 0, len(side))
	for p := range side {
		out = append(out, p)
	}
	sort.Float64s(out)
	if descending {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}
	return out
}
