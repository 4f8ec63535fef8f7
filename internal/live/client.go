package live

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a frame to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings with this period (must be less than pongWait).
	pingPeriod = (pongWait * 9) / 10

	// Maximum inbound frame size; clients only send small control frames.
	maxMessageSize = 4 * 1024

	// Outbound buffer size per connection.
	sendBufferSize = 64
)

// envelope is the wire format for both directions:
// inbound  {"event":"identify","userId":"…"}
// outbound {"event":"notification","data":{…}}
type envelope struct {
	Event  string          `json:"event"`
	UserID string          `json:"userId,omitempty"`
	Data   json.RawMessage `json:"data,omitempty"`
}

// Client wraps a single WebSocket connection. It satisfies presence.Handle;
// the registry compares clients by pointer identity.
type Client struct {
	conn *websocket.Conn
	send chan []byte

	mu     sync.Mutex
	closed bool
}

func newClient(conn *websocket.Conn) *Client {
	return &Client{
		conn: conn,
		send: make(chan []byte, sendBufferSize),
	}
}

// Emit queues an event frame for delivery. It never blocks: when the send
// buffer is full the frame is dropped and an error is returned so the caller
// can log it. The write pump owns the actual socket writes.
//
// The presence registry may hand out this handle concurrently with the
// connection tearing down, so the enqueue is guarded by the same mutex that
// protects closeSend: a push racing a disconnect fails with an error instead
// of hitting a closed channel.
func (c *Client) Emit(event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	frame, err := json.Marshal(envelope{Event: event, Data: data})
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return fmt.Errorf("connection closed, frame dropped")
	}
	select {
	case c.send <- frame:
		return nil
	default:
		return fmt.Errorf("send buffer full, frame dropped")
	}
}

// closeSend closes the outbound buffer exactly once and marks the client
// closed so late Emit calls fail instead of panicking.
func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// readPump reads inbound frames until the connection drops and hands each
// one to handle. It enforces read deadlines refreshed by pongs.
func (c *Client) readPump(handle func(env envelope)) {
	defer c.conn.Close()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Debug("websocket read error", "err", err)
			}
			return
		}

		var env envelope
		if err := json.Unmarshal(message, &env); err != nil {
			slog.Debug("ignoring malformed client frame", "err", err)
			continue
		}
		handle(env)
	}
}

// writePump drains the send buffer onto the socket and keeps the connection
// alive with periodic pings. It exits when the send channel is closed or a
// write fails.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
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
