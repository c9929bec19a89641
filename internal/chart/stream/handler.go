package stream

import (
	"encoding/json"

	"fpchart/internal/chart/session"

	"go.uber.org/zap"
)

// MakeMessageHandler returns the live channel message handler: it decodes the
// envelope, routes footprint and dom payloads into the session, and ignores
// everything else (subscription acks, heartbeats). Symbol filtering against
// the active symbol happens inside the session, atomically with its state.
func MakeMessageHandler(logger *zap.Logger, sess *session.Session) func(msg []byte) {
	return func(msg []byte) {
		var env Envelope
		if err := json.Unmarshal(msg, &env); err != nil {
			logger.Warn("failed to decode message envelope", zap.Error(err))
			return
		}

		switch env.Type {
		case "footprint":
			var fp FootprintMessage
			if err := json.Unmarshal(msg, &fp); err != nil {
				logger.Warn("failed to decode footprint payload", zap.Error(err))
				return
			}
			sess.HandleFootprint(fp.Symbol, fp.Ts, fp.Levels)

		case "dom":
			var dom DomMessage
			if err := json.Unmarshal(msg, &dom); err != nil {
				logger.Warn("failed to decode dom payload", zap.Error(err))
				return
			}
			sess.HandleDom(dom.Symbol, dom.Bids, dom.Asks)
		}
	}
}
