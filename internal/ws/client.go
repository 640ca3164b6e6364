package ws

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"factory-chat-service/internal/auth"
)

// writeWait bounds a single frame write. A peer that stops draining
// its socket fails the write at the deadline and gets evicted by the
// hub, instead of blocking the broadcaster.
const writeWait = 10 * time.Second

// envelope is the wire frame for every server-to-client event.
type envelope struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

// Client wraps a websocket connection with the identity established at
// handshake. Writes are serialized; gorilla allows one writer at a time.
type Client struct {
	id           string
	identity     auth.Identity
	conn         *websocket.Conn
	connectedAt  time.Time
	writeTimeout time.Duration

	writeMu sync.Mutex
}

// NewClient wraps an upgraded connection.
func NewClient(conn *websocket.Conn, identity auth.Identity) *Client {
	return &Client{
		id:           uuid.NewString(),
		identity:     identity,
		conn:         conn,
		connectedAt:  time.Now(),
		writeTimeout: writeWait,
	}
}

func (c *Client) ID() string              { return c.id }
func (c *Client) UserID() int             { return c.identity.UserID }
func (c *Client) Username() string        { return c.identity.Username }
func (c *Client) Identity() auth.Identity { return c.identity }
func (c *Client) ConnectedAt() time.Time  { return c.connectedAt }

// Send writes a single named event to the client.
func (c *Client) Send(event string, data any) error {
	payload, err := json.Marshal(envelope{Event: event, Data: data})
	if err != nil {
		return err
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	return c.conn.WriteMessage(websocket.TextMessage, payload)
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// ReadMessage blocks for the next inbound frame.
func (c *Client) ReadMessage() ([]byte, error) {
	_, raw, err := c.conn.ReadMessage()
	return raw, err
}
