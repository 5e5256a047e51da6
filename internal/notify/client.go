package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// Client is a single WebSocket connection watching one contract's fact
// stream.
type Client struct {
	id         string
	contractID string
	conn       *websocket.Conn
	hub        *Hub
	send       chan []byte
	closed     bool
	mu         sync.RWMutex
	closeOnce  sync.Once
	log        zerolog.Logger
}

// NewClient wraps conn as a hub client watching contractID.
func NewClient(conn *websocket.Conn, contractID string, hub *Hub, log zerolog.Logger) *Client {
	return &Client{
		id:         uuid.NewString(),
		contractID: contractID,
		conn:       conn,
		hub:        hub,
		send:       make(chan []byte, 256),
		log:        log,
	}
}

func (c *Client) ID() string         { return c.id }
func (c *Client) ContractID() string { return c.contractID }

// Send queues data for delivery to the client.
func (c *Client) Send(data []byte) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return ErrClientClosed
	}
	select {
	case c.send <- data:
		return nil
	default:
		return ErrClientClosed
	}
}

// Close shuts the connection down. Safe to call more than once.
func (c *Client) Close() error {
	var closeErr error
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		close(c.send)
		c.mu.Unlock()
		closeErr = c.conn.Close()
	})
	return closeErr
}

// ReadPump drains the connection so pong frames are observed; the ledger
// never expects client-to-server messages on this channel.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.log.Warn().Err(err).Str("client_id", c.id).Str("contract_id", c.contractID).Msg("notify connection closed unexpectedly")
			}
			return
		}
	}
}

// WritePump pumps queued events and keepalive pings to the connection.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.log.Warn().Err(err).Str("client_id", c.id).Msg("notify write failed")
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
