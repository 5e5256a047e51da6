package notify

import (
	"errors"
	"sync"

	"github.com/rs/zerolog"
)

// ErrClientClosed is returned when attempting to send to a closed client.
var ErrClientClosed = errors.New("client is closed")

// ClientInterface is what a transport-level connection must implement to
// be registered with the hub (spec.md §6's watcher-per-contract model).
type ClientInterface interface {
	ID() string
	ContractID() string
	Send(data []byte) error
	Close() error
}

// Hub fans out events to clients grouped by the contract they are
// watching. Safe for concurrent use.
type Hub struct {
	contracts map[string]map[string]ClientInterface
	mu        sync.RWMutex
	log       zerolog.Logger
}

// NewHub creates an empty Hub.
func NewHub(log zerolog.Logger) *Hub {
	return &Hub{contracts: make(map[string]map[string]ClientInterface), log: log}
}

// Register adds a client under the contract it watches.
func (h *Hub) Register(client ClientInterface) {
	h.mu.Lock()
	defer h.mu.Unlock()

	contractID := client.ContractID()
	if h.contracts[contractID] == nil {
		h.contracts[contractID] = make(map[string]ClientInterface)
	}
	h.contracts[contractID][client.ID()] = client
	h.log.Debug().Str("contract_id", contractID).Str("client_id", client.ID()).Msg("notify client registered")
}

// Unregister removes a client from the hub.
func (h *Hub) Unregister(client ClientInterface) {
	h.mu.Lock()
	defer h.mu.Unlock()

	contractID := client.ContractID()
	if clients, ok := h.contracts[contractID]; ok {
		if _, exists := clients[client.ID()]; exists {
			delete(clients, client.ID())
			if len(clients) == 0 {
				delete(h.contracts, contractID)
			}
			h.log.Debug().Str("contract_id", contractID).Str("client_id", client.ID()).Msg("notify client unregistered")
		}
	}
}

// Broadcast sends an event to every client watching contractID.
func (h *Hub) Broadcast(contractID string, event Event) {
	data, err := event.ToJSON()
	if err != nil {
		h.log.Error().Err(err).Str("contract_id", contractID).Str("event_type", string(event.Type)).Msg("failed to serialize notify event")
		return
	}

	h.mu.RLock()
	clients, ok := h.contracts[contractID]
	if !ok || len(clients) == 0 {
		h.mu.RUnlock()
		return
	}
	clientsCopy := make([]ClientInterface, 0, len(clients))
	for _, c := range clients {
		clientsCopy = append(clientsCopy, c)
	}
	h.mu.RUnlock()

	for _, c := range clientsCopy {
		go func(c ClientInterface) {
			if err := c.Send(data); err != nil {
				h.log.Warn().Err(err).Str("contract_id", contractID).Str("client_id", c.ID()).Msg("failed to send notify event")
			}
		}(c)
	}
}

// ClientCount returns the number of clients watching contractID.
func (h *Hub) ClientCount(contractID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.contracts[contractID])
}
