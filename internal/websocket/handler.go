package websocket

import (
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// ServeWs wires an upgraded connection into the hub for one board owner.
func ServeWs(hub *Hub, c *websocket.Conn, ownerUserId uuid.UUID) {
	client := &Client{Hub: hub, Conn: c, OwnerUserId: ownerUserId, Send: make(chan []byte, 256)}
	client.Hub.register <- client

	go client.writePump()
	client.readPump()
}
