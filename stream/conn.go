// Package stream maintains the websocket subscription to the fleet backend.
package stream

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Conn is a single-shot push subscription. It is dialed once at startup and
// never redialed: when the read loop ends the process is expected to restart
// rather than resynchronize a half-stale session.
type Conn struct {
	ws        *websocket.Conn
	log       *zap.SugaredLogger
	closeOnce sync.Once
}

// Dial opens the subscription.
func Dial(ctx context.Context, url string, log *zap.SugaredLogger) (*Conn, error) {
	ws, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	log.Infow("stream connected", "url", url)
	return &Conn{ws: ws, log: log}, nil
}

// ReadLoop delivers raw messages to handle, one at a time, in arrival order.
// It blocks until the connection drops or Close is called.
func (c *Conn) ReadLoop(handle func(data []byte)) {
	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.log.Infow("stream closed")
			} else {
				c.log.Warnw("stream read failed", "error", err)
			}
			return
		}
		handle(data)
	}
}

// Close sends a close frame and tears down the connection. Safe to call more
// than once.
func (c *Conn) Close() {
	c.closeOnce.Do(func() {
		deadline := time.Now().Add(time.Second)
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		if err := c.ws.WriteControl(websocket.CloseMessage, msg, deadline); err != nil {
			c.log.Debugw("close frame not sent", "error", err)
		}
		c.ws.Close()
	})
}
