package websocket

import (
	"context"
	"encoding/json"

	"sync"

	"hello-ai-be/internal/dto"
	"hello-ai-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const clusterChannel = "cluster_events"

// Hub tracks board connections per owner. One owner may hold several
// connections (multi-device); Redis pub/sub carries events to owners
// connected to other instances.
type Hub struct {
	clients map[uuid.UUID][]*Client

	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex

	rdb *redis.Client
	// instanceId marks our own cluster messages so we skip re-delivering them.
	instanceId string
	logger     logger.ILogger
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[uuid.UUID][]*Client),
		rdb:        rdb,
		instanceId: uuid.NewString(),
		logger:     log,
	}
}

func (h *Hub) Run() {
	if h.rdb != nil {
		go h.subscribeToRedis()
	}

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.OwnerUserId] = append(h.clients[client.OwnerUserId], client)
			h.mu.Unlock()
			h.logger.Info("Hub", "Board client registered", map[string]interface{}{
				"owner_user_id": client.OwnerUserId.String(),
			})

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.OwnerUserId]; ok {
				for i, c := range clients {
					if c == client {
						h.clients[client.OwnerUserId] = append(clients[:i], clients[i+1:]...)
						close(client.Send)
						break
					}
				}
				if len(h.clients[client.OwnerUserId]) == 0 {
					delete(h.clients, client.OwnerUserId)
				}
			}
			h.mu.Unlock()
		}
	}
}

// BroadcastBoardEvent delivers a board event to every connection the
// owner has, on this instance and via Redis on the others.
func (h *Hub) BroadcastBoardEvent(ownerUserId uuid.UUID, event dto.BoardEvent) {
	data, err := json.Marshal(map[string]interface{}{
		"type": "board_event",
		"data": event,
	})
	if err != nil {
		h.logger.Error("Hub", "Failed to encode board event", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	h.deliverLocal(ownerUserId, data)

	if h.rdb != nil {
		payload, _ := json.Marshal(map[string]interface{}{
			"origin":         h.instanceId,
			"target_user_id": ownerUserId.String(),
			"message":        json.RawMessage(data),
		})
		h.rdb.Publish(context.Background(), clusterChannel, payload)
	}
}

func (h *Hub) deliverLocal(ownerUserId uuid.UUID, data []byte) {
	h.mu.RLock()
	clients := append([]*Client(nil), h.clients[ownerUserId]...)
	h.mu.RUnlock()

	for _, client := range clients {
		select {
		case client.Send <- data:
		default:
			// Slow consumer: drop the connection rather than block the hub.
			h.logger.Warn("Hub", "Client send buffer full, dropping connection", map[string]interface{}{
				"owner_user_id": ownerUserId.String(),
			})
			h.unregister <- client
		}
	}
}

func (h *Hub) subscribeToRedis() {
	ctx := context.Background()
	pubsub := h.rdb.Subscribe(ctx, clusterChannel)
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		var payload struct {
			Origin       string          `json:"origin"`
			TargetUserID string          `json:"target_user_id"`
			Message      json.RawMessage `json:"message"`
		}
		if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
			h.logger.Error("Hub", "Bad cluster event payload", map[string]interface{}{
				"error": err.Error(),
			})
			continue
		}
		if payload.Origin == h.instanceId {
			continue
		}

		uid, err := uuid.Parse(payload.TargetUserID)
		if err != nil {
			continue
		}
		h.deliverLocal(uid, payload.Message)
	}
}
