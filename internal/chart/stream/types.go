package stream

import "fpchart/internal/chart/store"

// Envelope is the common header of every live channel message.
type Envelope struct {
	Type   string `json:"type"` // "footprint" or "dom"
	Symbol string `json:"symbol"`
}

// FootprintMessage carries one live bar update.
type FootprintMessage struct {
	Type   string                      `json:"type"`
	Symbol string                      `json:"symbol"`
	Ts     int64                       `json:"ts"`
	Levels map[string]store.PriceLevel `json:"levels"`
}

// DomMessage carries a full replacement depth-of-market ladder.
type DomMessage struct {
	Type   string             `json:"type"`
	Symbol string             `json:"symbol"`
	Bids   map[string]float64 `json:"bids"`
	Asks   map[string]float64 `json:"asks"`
}
