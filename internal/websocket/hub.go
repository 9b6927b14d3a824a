package websocket

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

// UserEvent is a payload addressed to every live connection of one user.
type UserEvent struct {
	TargetUserID uuid.UUID
	Payload      []byte
}

// Hub maintains the set of active clients and routes chat events to them.
// A user may hold several connections (multiple devices); each one receives
// every event addressed to that user.
type Hub struct {
	// Registered clients. Maps user ID to a set of active client connections.
	Clients map[uuid.UUID]map[*Client]bool

	// Channel for events addressed to specific users.
	Events chan *UserEvent

	// Register requests from the clients.
	Register chan *Client

	// Unregister requests from clients.
	Unregister chan *Client

	mu sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		Events:     make(chan *UserEvent),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		Clients:    make(map[uuid.UUID]map[*Client]bool),
	}
}

// Run starts the hub's processing loop.
func (h *Hub) Run() {
	log.Println("WebSocket hub started")
	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			if _, ok := h.Clients[client.UserID]; !ok {
				h.Clients[client.UserID] = make(map[*Client]bool)
			}
			h.Clients[client.UserID][client] = true
			h.mu.Unlock()
			log.Printf("WebSocket client registered for user %s", client.UserID)

		case client := <-h.Unregister:
			h.mu.Lock()
			if userClients, ok := h.Clients[client.UserID]; ok {
				if _, clientOk := userClients[client]; clientOk {
					delete(userClients, client)
					if len(userClients) == 0 {
						delete(h.Clients, client.UserID)
					}
				}
			}
			h.mu.Unlock()
			log.Printf("WebSocket client unregistered for user %s", client.UserID)

		case event := <-h.Events:
			h.mu.RLock()
			for client := range h.Clients[event.TargetUserID] {
				select {
				case client.Send <- event.Payload:
				default:
					log.Printf("Send buffer full for a client of user %s, event dropped", client.UserID)
				}
			}
			h.mu.RUnlock()
		}
	}
}

// SendToUser queues an event for every live connection of the target user.
// Users with no connection simply miss the push; they catch up from the store
// on their next fetch.
func (h *Hub) SendToUser(targetUserID uuid.UUID, payload []byte) {
	event := &UserEvent{
		TargetUserID: targetUserID,
		Payload:      payload,
	}
	select {
	case h.Events <- event:
	case <-time.After(1 * time.Second):
		log.Printf("Timeout queuing event for user %s, hub might be blocked", targetUserID)
	}
}
