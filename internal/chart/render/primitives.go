package render

// Frame is one composed frame: the ordered draw instructions for the
// presentation layer, grouped by layer in painting order (grid, cells,
// bubbles, trades, dom ladder, overlay text). The composer does no pixel
// work itself.
type Frame struct {
	Grid    []GridLine
	Ticks   []TimeTick
	Cells   []Cell
	Bubbles []VolumeBubble
	Lines   []TradeLine
	Markers []TradeMarker
	Dom     []DomRow
	Overlay string // transient status message, empty when none
}

// GridLine is one horizontal price gridline with its right-edge label.
type GridLine struct {
	Y     int
	Price float64
	Label string
}

// TimeTick marks a labelled bar on the time axis.
type TimeTick struct {
	X  int
	Ts int64 // bar timestamp (ms) for label formatting downstream
}

// Cell is one price level of one bar: the bid/ask magnitudes plus the flags
// driving visual emphasis.
type Cell struct {
	X, Y, W, H int // X is the bar's left edge, Y the level's vertical center

	Price float64
	Bid   float64
	Ask   float64

	Delta      float64 // ask - bid
	DeltaScale float64 // |delta| relative to the bar's largest delta, 0..1

	POC          bool // largest bid+ask level of the bar
	BidImbalance bool // bid > 3*ask and bid > 5
	AskImbalance bool // ask > 3*bid and ask > 5

	Labelled bool // zoomed in far enough for per-cell volume text
}

// VolumeBubble flags a bar with anomalous volume; radius grows with NormVol.
type VolumeBubble struct {
	X, Y    int
	Radius  float64
	NormVol float64
	Tier    int // 0 quiet, 1 elevated, 2 high, 3 extreme
}

// MarkerKind distinguishes trade entry and exit markers.
type MarkerKind int

const (
	MarkerEntry MarkerKind = iota
	MarkerExit
)

// TradeMarker is a trade entry/exit point on the chart.
type TradeMarker struct {
	X, Y  int
	Kind  MarkerKind
	Long  bool
	Label string // "L" or "S", entry markers only
}

// TradeLine connects a trade's entry to its exit, or runs to the live edge
// for an open position.
type TradeLine struct {
	X1, Y1, X2, Y2 int
	Long           bool
	Dashed         bool
}

// DomRow is one ladder row, emitted in display order: asks from highest shown
// price down to the best ask, then bids from the best bid downward.
type DomRow struct {
	Side  string // "ASK" or "BID"
	Price float64
	Qty   float64
}
