// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// NotificationStreamHandler handles WebSocket connections for the realtime
// notification stream. The stream is one-way: the server pushes notification
// events; client frames are drained only to keep the connection alive.
func (s *Server) NotificationStreamHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		return websocket.New(func(conn *websocket.Conn) {
			// Get userID from context locals (set by WebSocketAuthRequired middleware)
			userIDVal := conn.Locals("userID")
			if userIDVal == nil {
				log.Printf("WebSocket notifications: unauthenticated connection attempt")
				_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"unauthorized"}`))
				_ = conn.Close()
				return
			}
			userID := userIDVal.(uint)

			if !s.flags.Enabled("realtime_notifications", userID) {
				_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"realtime stream disabled"}`))
				_ = conn.Close()
				return
			}

			if s.hub == nil {
				_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"realtime stream unavailable"}`))
				_ = conn.Close()
				return
			}

			client, err := s.hub.Register(userID, conn)
			if err != nil {
				log.Printf("WebSocket notifications: failed to register user %d: %v", userID, err)
				_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"`+err.Error()+`"}`))
				_ = conn.Close()
				return
			}

			go client.WritePump()
			// ReadPump blocks until the connection drops and unregisters the client.
			client.ReadPump()
		})(c)
	}
}
