package store

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// BarStore owns the footprint series for the active symbol, ordered ascending
// by Ts. The store itself is not locked: all mutation happens on the session's
// single event path, which serializes ingestion, input and frame composition.
type BarStore struct {
	bars []*Bar
}

func NewBarStore() *BarStore {
	return &BarStore{}
}

// Load validates and replaces the whole series from raw history records.
// Records with a missing or empty level map are dropped; individual levels
// whose price key does not parse are dropped. Survivors are sorted ascending
// by timestamp. Returns the number of bars loaded.
func (s *BarStore) Load(raw []RawBar) int {
	bars := make([]*Bar, 0, len(raw))
	for _, r := range raw {
		if len(r.Levels) == 0 {
			continue
		}
		b := buildBar(r.Timestamp(), r.Levels)
		if b == nil {
			continue
		}
		bars = append(bars, b)
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Ts < bars[j].Ts })
	s.bars = bars
	return len(bars)
}

// Merge applies one live footprint update. If a bar with the same timestamp
// exists its levels and totals are replaced in place, which preserves the
// ordering invariant. Otherwise the bar is appended; live bars are assumed
// non-decreasing in ts, so no re-sort happens on append. Returns whether a new
// bar was appended (the caller applies the sticky-live viewport rule on
// append) and the merged bar, nil when the update was rejected.
func (s *BarStore) Merge(ts int64, levels map[string]PriceLevel) (appended bool, bar *Bar) {
	b := buildBar(ts, levels)
	if b == nil {
		return false, nil
	}

	if i, ok := s.indexOf(ts); ok {
		existing := s.bars[i]
		existing.Levels = b.Levels
		existing.TotalVol = b.TotalVol
		existing.MaxVol = b.MaxVol
		return false, existing
	}

	s.bars = append(s.bars, b)
	return true, b
}

// Bars exposes the underlying ordered series. Callers on the session path may
// read it freely; the stats engine writes NormVol through it.
func (s *BarStore) Bars() []*Bar {
	return s.bars
}

func (s *BarStore) Len() int {
	return len(s.bars)
}

// At returns the bar at index i, nil when out of range.
func (s *BarStore) At(i int) *Bar {
	if i < 0 || i >= len(s.bars) {
		return nil
	}
	return s.bars[i]
}

// indexOf locates a bar by exact timestamp via binary search over the sorted series.
func (s *BarStore) indexOf(ts int64) (int, bool) {
	i := sort.Search(len(s.bars), func(i int) bool { return s.bars[i].Ts >= ts })
	if i < len(s.bars) && s.bars[i].Ts == ts {
		return i, true
	}
	return 0, false
}

// buildBar parses the string price keys and computes the bar totals.
// Price keys are canonicalized through decimal so numerically equal keys with
// different textual forms ("100.0" vs "100.00") collapse to one level; the
// colliding levels' bid and ask volumes are summed, keeping the result
// independent of key order. Keys that fail to parse are dropped. Returns nil
// when no level survives.
func buildBar(ts int64, raw map[string]PriceLevel) *Bar {
	levels := make(map[float64]PriceLevel, len(raw))
	for k, v := range raw {
		d, err := decimal.NewFromString(strings.TrimSpace(k))
		if err != nil {
			continue
		}
		p, _ := d.Float64()
		lv := levels[p]
		lv.Bid += v.Bid
		lv.Ask += v.Ask
		levels[p] = lv
	}
	if len(levels) == 0 {
		return nil
	}

	var totalVol, maxVol float64
	for _, v := range levels {
		vol := v.Bid + v.Ask
		totalVol += vol
		if vol > maxVol {
			maxVol = vol
		}
	}

	return &Bar{
		Ts:       ts,
		Levels:   levels,
		TotalVol: totalVol,
		MaxVol:   maxVol,
	}
}

// ParseDomLadder converts one side of a raw dom payload (string price keys) to
// the numeric ladder, dropping unparsable keys. Keys that canonicalize to the
// same price have their quantities summed.
func ParseDomLadder(raw map[string]float64) map[float64]float64 {
	out := make(map[float64]float64, len(raw))
	for k, q := range raw {
		d, err := decimal.NewFromString(strings.TrimSpace(k))
		if err != nil {
			continue
		}
		p, _ := d.Float64()
		out[p] += q
	}
	return out
}
