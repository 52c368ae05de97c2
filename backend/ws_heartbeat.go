package main

import (
	"context"
	"time"

	"github.com/gorilla/websocket"
)

const (
	wsIdlePingInterval = 30 * time.Second
	wsWriteTimeout     = 10 * time.Second
)

// pumpGameUpdates writes queued messages to conn until send closes or ctx
// ends, sending a ping message whenever the socket sat idle for interval.
func pumpGameUpdates(ctx context.Context, conn *websocket.Conn, send <-chan []byte, interval time.Duration) error {
	if interval <= 0 {
		interval = wsIdlePingInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	lastWrite := time.Now()
	pingPayload := mustMarshal(wsMessage{Type: "ping"})

	write := func(payload []byte) error {
		if err := conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout)); err != nil {
			return err
		}
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			return err
		}
		lastWrite = time.Now()
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
				time.Now().Add(time.Second))
			return ctx.Err()
		case msg, ok := <-send:
			if !ok {
				return nil
			}
			if err := write(msg); err != nil {
				return err
			}
		case <-ticker.C:
			if time.Since(lastWrite) < interval {
				continue
			}
			if err := write(pingPayload); err != nil {
				return err
			}
		}
	}
}
