// Package session owns the per-symbol chart state: bar store, dom snapshot,
// trades, viewport and the transient overlay message. Every mutation runs as
// one atomic step under the session lock, so ingestion, user input and frame
// composition can interleave freely without observing partial state.
package session

import (
	"context"
	"strings"
	"sync"

	"fpchart/internal/chart/render"
	"fpchart/internal/chart/stats"
	"fpchart/internal/chart/store"
	"fpchart/internal/chart/view"

	"go.uber.org/zap"
)

// Client is the upstream feed surface the session loads from.
type Client interface {
	GetSymbols(ctx context.Context) ([]string, error)
	GetHistory(ctx context.Context, symbol string) ([]store.RawBar, error)
	GetTrades(ctx context.Context, symbol string) ([]store.Trade, error)
}

// BarPersister receives every ingested bar; failures are logged and ignored.
type BarPersister interface {
	SaveBar(ctx context.Context, symbol string, bar *store.Bar) error
}

type Session struct {
	logger  *zap.Logger
	client  Client
	persist BarPersister // optional, may be nil

	width       int
	height      int
	statsWindow int

	mu         sync.Mutex
	symbol     string
	symbols    []string
	loadGen    uint64 // bumped on every symbol switch; stale responses are dropped
	store      *store.BarStore
	dom        store.DomSnapshot
	trades     []store.Trade
	view       *view.View
	overlayMsg string
}

func New(client Client, persist BarPersister, width, height, statsWindow int, logger *zap.Logger) *Session {
	return &Session{
		logger:      logger,
		client:      client,
		persist:     persist,
		width:       width,
		height:      height,
		statsWindow: statsWindow,
		store:       store.NewBarStore(),
		view:        view.New(),
	}
}

// FetchSymbols loads the symbol list. A failed or malformed response leaves an
// empty list; symbol search simply matches nothing.
func (s *Session) FetchSymbols(ctx context.Context) {
	symbols, err := s.client.GetSymbols(ctx)
	if err != nil {
		s.logger.Warn("failed to fetch symbols", zap.Error(err))
		symbols = nil
	}

	s.mu.Lock()
	s.symbols = symbols
	s.mu.Unlock()
}

// FilterSymbols returns up to 100 symbols containing the query,
// case-insensitive. An empty query returns the head of the full list.
func (s *Session) FilterSymbols(query string) []string {
	q := strings.ToLower(query)

	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]string, 0, 100)
	for _, sym := range s.symbols {
		if !strings.Contains(strings.ToLower(sym), q) {
			continue
		}
		out = append(out, sym)
		if len(out) == 100 {
			break
		}
	}
	return out
}

// LoadSymbol switches the active symbol: the bar store, dom snapshot, trades
// and the offsetY sentinel are reset together before any fetch starts, so the
// new symbol begins from a clean slate and auto-center re-arms. History and
// trades are then fetched and applied only if the session still targets the
// same load generation — a stale in-flight response for a previous symbol is
// discarded.
func (s *Session) LoadSymbol(ctx context.Context, symbol string) error {
	s.mu.Lock()
	s.loadGen++
	gen := s.loadGen
	s.symbol = symbol
	s.store = store.NewBarStore()
	s.dom = store.DomSnapshot{}
	s.trades = nil
	s.view.Reset()
	s.overlayMsg = "Loading " + symbol + "..."
	s.mu.Unlock()

	raw, err := s.client.GetHistory(ctx, symbol)
	if err != nil {
		s.mu.Lock()
		if s.loadGen == gen {
			s.overlayMsg = "Error loading history"
		}
		s.mu.Unlock()
		return err
	}

	// Trade history is best-effort: a failure means an empty overlay, never a
	// failed load.
	trades, err := s.client.GetTrades(ctx, symbol)
	if err != nil {
		s.logger.Warn("failed to load trades", zap.String("symbol", symbol), zap.Error(err))
		trades = nil
	}

	s.mu.Lock()
	if s.loadGen != gen {
		s.mu.Unlock()
		s.logger.Debug("dropping stale history response", zap.String("symbol", symbol))
		return nil
	}

	n := s.store.Load(raw)
	stats.Recompute(s.store.Bars(), s.statsWindow)
	s.trades = trades
	s.view.AutoCenter(s.store.Bars(), s.dom)
	if s.store.Len() > 0 {
		s.view.SnapToLive(s.store.Len())
	}
	s.overlayMsg = ""
	var snapshot []*store.Bar
	if s.persist != nil {
		snapshot = cloneBars(s.store.Bars())
	}
	s.mu.Unlock()

	s.logger.Info("history loaded",
		zap.String("symbol", symbol),
		zap.Int("bars", n),
		zap.Int("trades", len(trades)))

	s.persistBars(ctx, symbol, snapshot)
	return nil
}

// HandleFootprint merges one live bar for the active symbol. Updates for any
// other symbol are dropped. Appending a new bar applies the sticky-live rule:
// if the viewport was within 5 bars of the live edge it advances with the
// series, otherwise a user scrolled back in history stays put.
func (s *Session) HandleFootprint(symbol string, ts int64, levels map[string]store.PriceLevel) {
	s.mu.Lock()
	if symbol != s.symbol {
		s.mu.Unlock()
		return
	}

	lenBefore := s.store.Len()
	appended, bar := s.store.Merge(ts, levels)
	if bar == nil {
		s.mu.Unlock()
		return
	}
	if appended && s.view.EndIndex >= float64(lenBefore)-5 {
		s.view.SnapToLive(s.store.Len())
	}

	stats.Recompute(s.store.Bars(), s.statsWindow)
	s.view.AutoCenter(s.store.Bars(), s.dom)
	var snapshot *store.Bar
	if s.persist != nil {
		snapshot = bar.Clone()
	}
	s.mu.Unlock()

	if snapshot != nil {
		s.persistBars(context.Background(), symbol, []*store.Bar{snapshot})
	}
}

// HandleDom replaces the dom snapshot wholesale for the active symbol and
// re-attempts auto-centering — with no history yet, the live ladder alone can
// place the view.
func (s *Session) HandleDom(symbol string, bids, asks map[string]float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if symbol != s.symbol {
		return
	}

	s.dom = store.DomSnapshot{
		Bids: store.ParseDomLadder(bids),
		Asks: store.ParseDomLadder(asks),
	}
	s.view.AutoCenter(s.store.Bars(), s.dom)
}

// Pan applies a drag delta to the viewport.
func (s *Session) Pan(dx, dy float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view.Pan(dx, dy)
}

// Zoom applies a wheel delta to the X scale.
func (s *Session) Zoom(deltaY float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view.Zoom(deltaY)
}

// Frame composes one frame from the current state. It only reads bar data and
// writes derived viewport fields, so it is idempotent and safe to call on
// every tick.
func (s *Session) Frame() *render.Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	return render.ComposeFrame(s.store.Bars(), s.view, s.dom, s.trades, s.width, s.height, s.overlayMsg)
}

// ActiveSymbol returns the currently loaded symbol, empty when none.
func (s *Session) ActiveSymbol() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.symbol
}

// OverlayMessage returns the transient status message for the presentation layer.
func (s *Session) OverlayMessage() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.overlayMsg
}

// BarCount reports the size of the active series, for periodic logging.
func (s *Session) BarCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Len()
}

// persistBars hands bars to the persister outside the lock. Callers pass
// cloned bars, never live store pointers: a concurrent same-ts merge rewrites
// the stored bar's levels and totals in place.
func (s *Session) persistBars(ctx context.Context, symbol string, bars []*store.Bar) {
	if s.persist == nil {
		return
	}
	for _, b := range bars {
		if err := s.persist.SaveBar(ctx, symbol, b); err != nil {
			s.logger.Warn("failed to persist bar",
				zap.String("symbol", symbol), zap.Int64("ts", b.Ts), zap.Error(err))
		}
	}
}

func cloneBars(bars []*store.Bar) []*store.Bar {
	out := make([]*store.Bar, len(bars))
	for i, b := range bars {
		out[i] = b.Clone()
	}
	return out
}
