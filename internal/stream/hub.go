package stream

import (
	"context"
	"log"
	"sync"

	"github.com/redis/go-redis/v9"
)

// Hub fans sync-status events out to connected clients, per player. With a
// redis client it also bridges events across processes via pub/sub.
type Hub struct {
	redis   *redis.Client
	clients map[string]map[*Client]struct{}
	mu      sync.RWMutex
}

type Client struct {
	PlayerID string
	Send     chan []byte
}

func NewHub(redisClient *redis.Client) *Hub {
	h := &Hub{
		redis:   redisClient,
		clients: map[string]map[*Client]struct{}{},
	}

	if redisClient != nil {
		go h.subscribeRedis()
	}
	return h
}

func (h *Hub) Register(playerID string) *Client {
	client := &Client{
		PlayerID: playerID,
		Send:     make(chan []byte, 64),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[playerID] == nil {
		h.clients[playerID] = map[*Client]struct{}{}
	}
	h.clients[playerID][client] = struct{}{}
	return client
}

func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if playerClients, ok := h.clients[client.PlayerID]; ok {
		delete(playerClients, client)
		if len(playerClients) == 0 {
			delete(h.clients, client.PlayerID)
		}
	}
	close(client.Send)
}

// Broadcast routes every event through redis pub/sub when a client is
// configured, so each process (this one included) delivers exactly once via
// its subscription. Without redis, or when the publish fails, events fan out
// locally instead.
func (h *Hub) Broadcast(playerID string, payload []byte) {
	if h.redis != nil {
		err := h.redis.Publish(context.Background(), redisChannel(playerID), payload).Err()
		if err == nil {
			return
		}
		log.Printf("redis publish error: %v", err)
	}
	h.deliverLocal(playerID, payload)
}

func (h *Hub) deliverLocal(playerID string, payload []byte) {
	h.mu.RLock()
	clients := h.clients[playerID]
	h.mu.RUnlock()

	for client := range clients {
		select {
		case client.Send <- payload:
		default:
		}
	}
}

func (h *Hub) subscribeRedis() {
	ctx := context.Background()
	pubsub := h.redis.PSubscribe(ctx, "sync:*:events")
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		h.deliverLocal(playerIDFromChannel(msg.Channel), []byte(msg.Payload))
	}
}

func redisChannel(playerID string) string {
	return "sync:" + playerID + ":events"
}

func playerIDFromChannel(ch string) string {
	// sync:{player}:events
	const prefix = "sync:"
	const suffix = ":events"
	if len(ch) <= len(prefix)+len(suffix) {
		return ""
	}
	return ch[len(prefix) : len(ch)-len(suffix)]
}
