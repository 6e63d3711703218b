package websocket

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog"
)

// Hub fans live roster counts out to connected clients. Clients are keyed by
// the event ids they currently watch; one connection can watch several events
// and one event can be watched by many connections.
type Hub struct {
	// Watching clients organized by event ID
	mu       sync.RWMutex
	watchers map[int64]map[*Client]bool

	// Logger for Hub operations
	logger zerolog.Logger
}

// CountMessage is the outbound frame carrying one event's fresh count
type CountMessage struct {
	Type    string `json:"type"`
	EventID int64  `json:"eventId"`
	Count   int    `json:"count"`
}

// SnapshotMessage is the outbound frame answering a watch request with
// one-shot counts for every requested event
type SnapshotMessage struct {
	Type   string        `json:"type"`
	Counts map[int64]int `json:"counts"`
}

// WatchMessage is the inbound frame a client sends when its visible event set
// changes
type WatchMessage struct {
	Type     string  `json:"type"`
	EventIDs []int64 `json:"eventIds"`
}

// NewHub creates a new Hub instance
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		watchers: make(map[int64]map[*Client]bool),
		logger:   logger,
	}
}

// subscribe binds a client to an event's broadcast channel
func (h *Hub) subscribe(eventID int64, client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.watchers[eventID]; !ok {
		h.watchers[eventID] = make(map[*Client]bool)
	}
	h.watchers[eventID][client] = true

	h.logger.Debug().
		Int64("eventID", eventID).
		Int64("userID", client.userID).
		Msg("Client subscribed to event counts")
}

// unsubscribe removes a client from an event's broadcast channel
func (h *Hub) unsubscribe(eventID int64, client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, ok := h.watchers[eventID]; ok {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.watchers, eventID)
		}
	}
}

// removeClient drops a client from every event it watches and closes its
// send channel
func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for eventID, clients := range h.watchers {
		if clients[client] {
			delete(clients, client)
			if len(clients) == 0 {
				delete(h.watchers, eventID)
			}
		}
	}
	client.closeSend()

	h.logger.Info().
		Int64("userID", client.userID).
		Msg("Client disconnected from count feed")
}

// BroadcastCount sends a fresh count to every client watching the event.
// Clients with a full send buffer are skipped; their next snapshot catches
// them up.
func (h *Hub) BroadcastCount(eventID int64, count int) {
	data, err := json.Marshal(CountMessage{Type: "count", EventID: eventID, Count: count})
	if err != nil {
		h.logger.Error().Err(err).Int64("eventID", eventID).Msg("Failed to marshal count message")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	clients, ok := h.watchers[eventID]
	if !ok {
		return
	}

	for client := range clients {
		select {
		case client.send <- data:
		default:
			h.logger.Warn().
				Int64("eventID", eventID).
				Int64("userID", client.userID).
				Msg("Skipped slow count feed client")
		}
	}
}

// WatcherCount returns the number of clients watching an event
func (h *Hub) WatcherCount(eventID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.watchers[eventID])
}
