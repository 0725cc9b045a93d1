package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"ai-topic-assist-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const clusterChannel = "cluster_events"

type Hub struct {
	// Registered clients map: UserID -> List of Clients (multi-device)
	clients map[uuid.UUID][]*Client

	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	mu sync.RWMutex

	// Redis connection for cross-instance fan-out, nil on a single instance.
	rdb *redis.Client
	// instanceId lets an instance skip its own cluster messages.
	instanceId string

	logger logger.ILogger
}

type envelope struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

type clusterMessage struct {
	Origin       string          `json:"origin"`
	TargetUserID string          `json:"target_user_id"`
	Message      json.RawMessage `json:"message"`
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
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
			h.clients[client.UserID] = append(h.clients[client.UserID], client)
			h.mu.Unlock()
			h.logger.Info("Hub", "Client registered", map[string]interface{}{"user_id": client.UserID})

		case client := <-h.unregister:
			h.remove(client)

		case <-h.done:
			return
		}
	}
}

func (h *Hub) Stop() {
	close(h.done)
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.clients[client.UserID]
	if !ok {
		return
	}
	for i, c := range clients {
		if c == client {
			h.clients[client.UserID] = append(clients[:i], clients[i+1:]...)
			close(client.Send)
			break
		}
	}
	if len(h.clients[client.UserID]) == 0 {
		delete(h.clients, client.UserID)
		h.logger.Info("Hub", "Client completely unregistered", map[string]interface{}{"user_id": client.UserID})
	}
}

// SendToUser pushes {type, data} to every connection of the user, here and on
// the other instances.
func (h *Hub) SendToUser(userID uuid.UUID, eventType string, data interface{}) {
	payload, err := json.Marshal(envelope{Type: eventType, Data: data})
	if err != nil {
		h.logger.Error("Hub", "Failed to encode push", map[string]interface{}{"type": eventType, "error": err.Error()})
		return
	}

	h.deliverLocal(userID, payload)

	if h.rdb != nil {
		msg, _ := json.Marshal(clusterMessage{
			Origin:       h.instanceId,
			TargetUserID: userID.String(),
			Message:      payload,
		})
		if err := h.rdb.Publish(context.Background(), clusterChannel, msg).Err(); err != nil {
			h.logger.Warn("Hub", "Failed to publish to cluster", map[string]interface{}{"error": err.Error()})
		}
	}
}

// ConnectedClients returns how many connections the user has on this instance.
func (h *Hub) ConnectedClients(userID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

func (h *Hub) deliverLocal(userID uuid.UUID, payload []byte) {
	var slow []*Client

	h.mu.RLock()
	for _, client := range h.clients[userID] {
		select {
		case client.Send <- payload:
		default:
			slow = append(slow, client)
		}
	}
	h.mu.RUnlock()

	for _, client := range slow {
		h.logger.Warn("Hub", "Client Send buffer full, dropping connection", map[string]interface{}{"user_id": userID})
		go func(c *Client) {
			select {
			case h.unregister <- c:
			case <-h.done:
			}
		}(client)
	}
}

func (h *Hub) subscribeToRedis() {
	// Every instance listens on one channel and keeps the messages addressed to
	// users connected locally.
	ctx := context.Background()
	pubsub := h.rdb.Subscribe(ctx, clusterChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-h.done:
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			h.handleClusterMessage([]byte(msg.Payload))
		}
	}
}

func (h *Hub) handleClusterMessage(raw []byte) {
	var payload clusterMessage
	if err := json.Unmarshal(raw, &payload); err != nil {
		h.logger.Warn("Hub", "Cluster message parse error", map[string]interface{}{"error": err.Error()})
		return
	}
	if payload.Origin == h.instanceId {
		return
	}
	uid, err := uuid.Parse(payload.TargetUserID)
	if err != nil {
		return
	}
	h.deliverLocal(uid, payload.Message)
}
