package notify

// EventPublisher publishes a notification to every client watching a
// contract. internal/operations depends on this interface, not on Hub
// directly, so write-side operations stay usable with no transport
// wired in.
type EventPublisher interface {
	Publish(contractID string, event Event)
}

var _ EventPublisher = (*Hub)(nil)

// Publish implements EventPublisher by broadcasting to the contract.
func (h *Hub) Publish(contractID string, event Event) {
	h.Broadcast(contractID, event)
}

// NoOpPublisher discards every event; it is the default for Operations
// built with no live-notification transport configured.
type NoOpPublisher struct{}

func (NoOpPublisher) Publish(contractID string, event Event) {}
