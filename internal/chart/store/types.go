package store

// PriceLevel holds the traded volume aggregated at one price tick within a bar.
type PriceLevel struct {
	Bid float64 `json:"bid"` // volume traded at the bid
	Ask float64 `json:"ask"` // volume traded at the ask
}

// Bar is one time bucket of the footprint series: a full price-level volume
// profile plus derived totals. NormVol is written by the stats engine, never
// at ingestion.
type Bar struct {
	Ts       int64                 `json:"ts"` // bucket start (milliseconds since epoch), unique within a store
	Levels   map[float64]PriceLevel `json:"levels"`
	TotalVol float64               `json:"totalVol"` // sum of bid+ask over all levels
	MaxVol   float64               `json:"maxVol"`   // largest bid+ask of any single level
	NormVol  float64               `json:"normVol"`  // rolling volume score, see stats.Recompute
}

// Clone returns a deep copy of the bar. A live merge for the same ts mutates
// the stored bar in place, so anything leaving the session lock (the
// persistence hand-off) works on a clone instead of the live pointer.
func (b *Bar) Clone() *Bar {
	levels := make(map[float64]PriceLevel, len(b.Levels))
	for p, lv := range b.Levels {
		levels[p] = lv
	}
	c := *b
	c.Levels = levels
	return &c
}

// RawBar is a history/live record as it arrives on the wire. Older feeds key
// the timestamp as "ltt" instead of "ts".
type RawBar struct {
	Ts     int64                 `json:"ts"`
	Ltt    int64                 `json:"ltt"`
	Levels map[string]PriceLevel `json:"levels"`
}

// Timestamp returns the record timestamp, falling back to the legacy ltt field.
func (r RawBar) Timestamp() int64 {
	if r.Ts != 0 {
		return r.Ts
	}
	return r.Ltt
}

// DomSnapshot is the latest depth-of-market ladder for the active symbol.
// It is replaced wholesale on every dom message, never patched.
type DomSnapshot struct {
	Bids map[float64]float64 `json:"bids"` // price -> resting quantity
	Asks map[float64]float64 `json:"asks"`
}

// Empty reports whether the snapshot carries no levels on either side.
func (d DomSnapshot) Empty() bool {
	return len(d.Bids) == 0 && len(d.Asks) == 0
}

// Trade is an executed (or still open) position received from the trades API.
// Trades are immutable once received; rendering only reads them.
type Trade struct {
	Side       string  `json:"side"`   // "LONG"/"BUY" or "SHORT"/"SELL"
	Status     string  `json:"status"` // "OPEN" or "CLOSED"
	EntryTs    int64   `json:"entry_ts"`
	EntryPrice float64 `json:"entry_price"`
	ExitTs     int64   `json:"exit_ts,omitempty"`
	ExitPrice  float64 `json:"exit_price,omitempty"`
}

// IsLong reports whether the trade is a long position.
func (t Trade) IsLong() bool {
	return t.Side == "LONG" || t.Side == "BUY"
}

// Closed reports whether the trade has a recorded exit.
func (t Trade) Closed() bool {
	return t.Status == "CLOSED" && t.ExitTs != 0
}
