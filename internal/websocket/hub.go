package websocket

import (
	"context"
	"encoding/json"
	"log"
	"sync"
)

// Hub maintains active WebSocket connections and pushes route events to
// the owning user. A user may hold several connections at once.
type Hub struct {
	// Registered clients (userID -> set of clients)
	clients map[string]map[*Client]bool

	// Outbound messages addressed to one user
	broadcast chan *Message

	// Outbound messages addressed to one connection
	direct chan *directMessage

	register   chan *Client
	unregister chan *Client

	// Closed when Run returns
	done chan struct{}

	mu sync.RWMutex
}

// Message represents a message to broadcast to a specific user
type Message struct {
	UserID string
	Data   interface{}
}

type directMessage struct {
	client *Client
	data   interface{}
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		broadcast:  make(chan *Message, 256),
		direct:     make(chan *directMessage, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run starts the hub's main loop and returns when ctx is done
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			close(h.done)
			return

		case client := <-h.register:
			h.mu.Lock()
			if h.clients[client.UserID] == nil {
				h.clients[client.UserID] = make(map[*Client]bool)
			}
			h.clients[client.UserID][client] = true
			total := h.countLocked()
			h.mu.Unlock()
			log.Printf("✅ [WEBSOCKET] Client connected: %s (%s), total %d", client.UserID, client.UserRole, total)

		case client := <-h.unregister:
			h.mu.Lock()
			if h.removeLocked(client) {
				log.Printf("🔴 [WEBSOCKET] Client disconnected: %s, remaining %d", client.UserID, h.countLocked())
			}
			h.mu.Unlock()

		case message := <-h.broadcast:
			data, err := json.Marshal(message.Data)
			if err != nil {
				log.Printf("❌ Failed to marshal message: %v", err)
				continue
			}

			h.mu.Lock()
			for client := range h.clients[message.UserID] {
				select {
				case client.send <- data:
				default:
					// Client buffer full, disconnect
					h.removeLocked(client)
					log.Printf("⚠️ Client buffer full, disconnecting: %s", message.UserID)
				}
			}
			h.mu.Unlock()

		case message := <-h.direct:
			data, err := json.Marshal(message.data)
			if err != nil {
				log.Printf("❌ Failed to marshal message: %v", err)
				continue
			}

			h.mu.Lock()
			if h.clients[message.client.UserID][message.client] {
				select {
				case message.client.send <- data:
				default:
					h.removeLocked(message.client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// removeLocked drops client and closes its send channel. h.mu must be held.
func (h *Hub) removeLocked(client *Client) bool {
	set, ok := h.clients[client.UserID]
	if !ok || !set[client] {
		return false
	}
	delete(set, client)
	if len(set) == 0 {
		delete(h.clients, client.UserID)
	}
	close(client.send)
	return true
}

func (h *Hub) countLocked() int {
	n := 0
	for _, set := range h.clients {
		n += len(set)
	}
	return n
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, set := range h.clients {
		for client := range set {
			h.removeLocked(client)
		}
	}
}

// Register adds client; it reports false once the hub has stopped
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

// Unregister removes client if it is still registered
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// BroadcastToUser queues data for every connection of userID. It never
// blocks the caller; messages are dropped when the queue is full.
func (h *Hub) BroadcastToUser(userID string, data interface{}) {
	select {
	case h.broadcast <- &Message{UserID: userID, Data: data}:
	default:
		log.Printf("⚠️ WebSocket broadcast queue full, dropping message for %s", userID)
	}
}

// Reply queues data for a single connection, e.g. a pong. Like
// BroadcastToUser it never blocks.
func (h *Hub) Reply(client *Client, data interface{}) {
	select {
	case h.direct <- &directMessage{client: client, data: data}:
	default:
		log.Printf("⚠️ WebSocket reply queue full, dropping message for %s", client.UserID)
	}
}

// GetClientCount returns the number of connected clients
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.countLocked()
}

// IsUserConnected checks if a user is currently connected
func (h *Hub) IsUserConnected(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID]) > 0
}
