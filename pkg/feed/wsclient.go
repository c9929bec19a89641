package feed

import (
	"fmt"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// WSClient maintains the live channel to the feed service and routes raw
// messages to the registered handler. A dropped connection is retried with a
// fixed backoff and re-subscribed; missed updates are not replayed — gaps are
// an accepted limitation.
type WSClient struct {
	url           string
	reconnectWait time.Duration
	conn          *websocket.Conn
	handler       func([]byte)
	activeSymbol  func() string // current symbol for (re)subscription
	logger        *zap.Logger
}

func NewWSClient(url string, reconnectWait time.Duration, activeSymbol func() string, logger *zap.Logger) *WSClient {
	return &WSClient{
		url:           url,
		reconnectWait: reconnectWait,
		activeSymbol:  activeSymbol,
		logger:        logger,
	}
}

// SetMessageHandler sets the function to handle incoming messages.
func (c *WSClient) SetMessageHandler(h func([]byte)) {
	c.handler = h
}

// Connect establishes the WebSocket connection and subscribes to the active
// symbol's stream. It does not start the listener.
func (c *WSClient) Connect() error {
	conn, _, err := websocket.DefaultDialer.Dial(c.url, nil)
	if err != nil {
		c.logger.Error("failed to connect to feed", zap.String("url", c.url), zap.Error(err))
		return err
	}
	c.conn = conn
	c.logger.Info("live channel connected", zap.String("url", c.url))

	return c.subscribe()
}

// Listen reads messages until the connection drops, then reconnects with the
// fixed backoff and resumes. It never returns.
func (c *WSClient) Listen() {
	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			c.logger.Error("live channel read error", zap.Error(err))

			for {
				time.Sleep(c.reconnectWait)
				if err := c.reconnectAndResubscribe(); err != nil {
					c.logger.Warn("retrying reconnect", zap.Error(err))
					continue
				}
				c.logger.Info("reconnected")
				break
			}
			continue // resume listening on the new connection
		}

		if c.handler != nil {
			c.handler(msg)
		}
	}
}

func (c *WSClient) reconnectAndResubscribe() error {
	newConn, _, err := websocket.DefaultDialer.Dial(c.url, nil)
	if err != nil {
		return err
	}

	if c.conn != nil {
		_ = c.conn.Close()
	}
	c.conn = newConn

	return c.subscribe()
}

// subscribe announces the active symbol on the channel. With no symbol loaded
// yet there is nothing to announce; the server pushes for all symbols and the
// session filters.
func (c *WSClient) subscribe() error {
	symbol := ""
	if c.activeSymbol != nil {
		symbol = c.activeSymbol()
	}
	if symbol == "" {
		return nil
	}

	subMsg := map[string]interface{}{
		"op":     "subscribe",
		"symbol": symbol,
	}
	if err := c.conn.WriteJSON(subMsg); err != nil {
		return fmt.Errorf("websocket subscribe failed: %w", err)
	}
	return nil
}
