package websocket

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog"

	"github.com/krswitch/backend/internal/app/models"
)

// Hub maintains the set of connected clients and fans barter events out to
// them. Clients are grouped by the student NIM they registered with, so an
// event can target specific students or every connection at once. Delivery
// is best-effort: a slow client is dropped, never waited on.
type Hub struct {
	// Registered clients organized by student NIM
	clients map[string]map[*Client]bool

	// Channel for outbound events awaiting fan-out
	broadcast chan *envelope

	// Register requests from the clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	// Mutex for concurrent access to clients map
	mu sync.RWMutex

	// Mutex for event listeners
	listenersMu sync.RWMutex

	// In-process event listeners
	eventListeners []chan *models.OfferEvent

	// Logger for Hub operations
	logger zerolog.Logger
}

// envelope pairs an event with its delivery targets. A nil nims slice means
// every connected client.
type envelope struct {
	event *models.OfferEvent
	nims  []string
}

// NewHub creates a new Hub instance
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		broadcast:      make(chan *envelope),
		register:       make(chan *Client),
		unregister:     make(chan *Client),
		clients:        make(map[string]map[*Client]bool),
		eventListeners: []chan *models.OfferEvent{},
		logger:         logger,
	}
}

// Run starts the hub, handling client registrations and event fan-out
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case env := <-h.broadcast:
			h.deliver(env)
		}
	}
}

// registerClient registers a new client to the hub
func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	nim := client.nim
	if _, ok := h.clients[nim]; !ok {
		h.clients[nim] = make(map[*Client]bool)
	}
	h.clients[nim][client] = true

	h.logger.Info().
		Str("nim", nim).
		Str("addr", client.conn.RemoteAddr().String()).
		Msg("Client registered")
}

// unregisterClient unregisters a client from the hub
func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	nim := client.nim
	if _, ok := h.clients[nim]; ok {
		if _, ok := h.clients[nim][client]; ok {
			delete(h.clients[nim], client)
			close(client.send)

			if len(h.clients[nim]) == 0 {
				delete(h.clients, nim)
			}

			h.logger.Info().
				Str("nim", nim).
				Str("addr", client.conn.RemoteAddr().String()).
				Msg("Client unregistered")
		}
	}
}

// deliver fans an event out to in-process listeners and targeted clients.
// Listeners only see the general stream; per-user deliveries are a
// connection-level concern.
func (h *Hub) deliver(env *envelope) {
	if env.nims == nil {
		h.notifyEventListeners(env.event)
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	data, err := json.Marshal(env.event)
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("kind", string(env.event.Kind)).
			Msg("Failed to marshal event for delivery")
		return
	}

	var slow []*Client
	sent := 0
	if env.nims == nil {
		for _, clients := range h.clients {
			for client := range clients {
				if h.send(client, data) {
					sent++
				} else {
					slow = append(slow, client)
				}
			}
		}
	} else {
		for _, nim := range env.nims {
			for client := range h.clients[nim] {
				if h.send(client, data) {
					sent++
				} else {
					slow = append(slow, client)
				}
			}
		}
	}

	// Drop clients whose send buffer is full; they are slow or already gone.
	// Deferred so the read lock is released first.
	for _, client := range slow {
		go func(c *Client) { h.unregister <- c }(client)
	}

	h.logger.Debug().
		Str("kind", string(env.event.Kind)).
		Int("clientCount", sent).
		Msg("Event delivered")
}

func (h *Hub) send(client *Client, data []byte) bool {
	select {
	case client.send <- data:
		return true
	default:
		return false
	}
}

// notifyEventListeners sends an event to all registered in-process listeners
func (h *Hub) notifyEventListeners(event *models.OfferEvent) {
	h.listenersMu.RLock()
	defer h.listenersMu.RUnlock()

	for _, listener := range h.eventListeners {
		// Non-blocking send so a slow listener never stalls delivery
		select {
		case listener <- event:
		default:
			h.logger.Warn().Msg("Skipped slow event listener")
		}
	}
}

// Broadcast delivers an event to every connected client
func (h *Hub) Broadcast(event *models.OfferEvent) {
	h.broadcast <- &envelope{event: event}
}

// BroadcastToUsers delivers an event to every connection registered under
// any of the given NIMs
func (h *Hub) BroadcastToUsers(nims []string, event *models.OfferEvent) {
	h.broadcast <- &envelope{event: event, nims: nims}
}

// GetClientsCount returns the number of connections registered for a NIM
func (h *Hub) GetClientsCount(nim string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.clients[nim])
}

// AddEventListener registers a channel to receive all events
func (h *Hub) AddEventListener(listener chan *models.OfferEvent) {
	h.listenersMu.Lock()
	defer h.listenersMu.Unlock()

	h.eventListeners = append(h.eventListeners, listener)
	h.logger.Info().Msg("Added new event listener")
}

// RemoveEventListener removes a listener from the hub
func (h *Hub) RemoveEventListener(listener chan *models.OfferEvent) {
	h.listenersMu.Lock()
	defer h.listenersMu.Unlock()

	for i, l := range h.eventListeners {
		if l == listener {
			h.eventListeners[i] = h.eventListeners[len(h.eventListeners)-1]
			h.eventListeners = h.eventListeners[:len(h.eventListeners)-1]
			h.logger.Info().Msg("Removed event listener")
			break
		}
	}
}
