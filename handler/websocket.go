package handler

import (
	"context"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

// RequireUpgrade lets only websocket handshakes through.
func RequireUpgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// LiveStats pushes the current zone counts on connect, then every update
// published on the stats channel until the client goes away.
func (h *Handler) LiveStats() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		msgs, unsubscribe, err := h.broker.Subscribe(ctx)
		if err != nil {
			h.logger.Error("live stats subscribe", "error", err)
			return
		}
		defer unsubscribe()

		stats, err := h.reports.LiveStats(ctx)
		if err != nil {
			h.logger.Error("live stats snapshot", "error", err)
			return
		}
		if err := conn.WriteJSON(stats); err != nil {
			return
		}

		// Client frames are ignored; a read error means the peer left.
		go func() {
			defer cancel()
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		for {
			select {
			case <-ctx.Done():
				return
			case payload, ok := <-msgs:
				if !ok {
					return
				}
				if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
					return
				}
			}
		}
	})
}
