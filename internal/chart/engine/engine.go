package engine

import (
	"context"
	"fmt"
	"time"

	"fpchart/config"
	"fpchart/internal/chart/render"
	"fpchart/internal/chart/session"
	"fpchart/internal/chart/stream"
	"fpchart/pkg/feed"
	"fpchart/pkg/storage/postgres"

	"go.uber.org/zap"
)

// FrameSink receives every composed frame. Passing nil still runs the frame
// loop, which keeps the viewport policies (auto-fit, safety clamps) applied.
type FrameSink func(*render.Frame)

// StartEngine wires the chart pipeline: REST history + trades, the WebSocket
// live channel, the chart session, optional bar persistence, and the frame
// loop driving composition.
func StartEngine(cfg *config.Config, logger *zap.Logger, sink FrameSink) error {

	// Optional Postgres persistence for ingested bars
	var persist session.BarPersister
	if cfg.Postgres.Enabled {
		client, err := postgres.InitializeAndMigrateFootprintRecord(cfg.Postgres, cfg.Log.Environment, true)
		if err != nil {
			return fmt.Errorf("failed to connect to DB: %w", err)
		}
		persist = client
	}

	restClient := feed.NewRESTClient(cfg.Feed.REST.BaseURL, cfg.Feed.REST.Timeout)

	sess := session.New(restClient, persist,
		cfg.Chart.Width, cfg.Chart.Height, cfg.Chart.StatsWindow, logger)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Feed.REST.Timeout)
	sess.FetchSymbols(ctx)
	cancel()

	// Preselected symbol (the deep-link case): load its history after the
	// symbol list, before the live channel starts delivering.
	if cfg.Chart.Symbol != "" {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Feed.REST.Timeout)
		if err := sess.LoadSymbol(ctx, cfg.Chart.Symbol); err != nil {
			logger.Warn("failed to load startup symbol",
				zap.String("symbol", cfg.Chart.Symbol), zap.Error(err))
		}
		cancel()
	}

	// Live channel with fixed-backoff reconnect
	wsClient := feed.NewWSClient(cfg.Feed.WS.URL, cfg.Feed.WS.ReconnectWait, sess.ActiveSymbol, logger)
	wsClient.SetMessageHandler(stream.MakeMessageHandler(logger, sess))

	if err := wsClient.Connect(); err != nil {
		return err
	}
	go wsClient.Listen()

	// Frame loop: compose on a fixed cadence and hand off to the sink.
	go func() {
		ticker := time.NewTicker(cfg.Chart.FrameInterval)
		defer ticker.Stop()

		for range ticker.C {
			frame := sess.Frame()
			if sink != nil {
				sink(frame)
			}
		}
	}()

	// Periodically log series size for visibility
	go func() {
		for {
			logger.Info("chart state",
				zap.String("symbol", sess.ActiveSymbol()),
				zap.Int("bars", sess.BarCount()))

			time.Sleep(5 * time.Second)
		}
	}()

	return nil
}
