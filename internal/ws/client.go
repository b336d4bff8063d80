package ws

import (
	"encoding/json"
	"sync"
	"time"

	"sales_dashboard/internal/logger"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 30 * time.Second
	pingPeriod = 25 * time.Second
)

// Client is one dashboard connection. Only the hub sends on Send and it is
// never closed; replies to the client itself go through control.
type Client struct {
	UserID uuid.UUID
	Conn   *websocket.Conn
	Send   chan []byte
	Hub    *Hub

	control  chan []byte
	done     chan struct{}
	stopOnce sync.Once
}

func NewClient(userID uuid.UUID, conn *websocket.Conn, hub *Hub) *Client {
	return &Client{
		UserID:  userID,
		Conn:    conn,
		Send:    make(chan []byte, 64),
		Hub:     hub,
		control: make(chan []byte, 8),
		done:    make(chan struct{}),
	}
}

// stop tells the write pump to close the connection. Safe to call more than once.
func (c *Client) stop() {
	c.stopOnce.Do(func() { close(c.done) })
}

// Run registers the client and pumps until the connection drops.
func (c *Client) Run() {
	c.Hub.Register(c)
	go c.writePump()

	ready, _ := json.Marshal(Event{Type: MsgReady})
	c.reply(ready)

	c.readPump()
}

// reply queues a message for this client only. It never blocks.
func (c *Client) reply(msg []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.control <- msg:
	default:
	}
	return true
}

//read
func (c *Client) readPump() {
	defer func() {
		c.Hub.Unregister(c)
		_ = c.Conn.Close()
	}()

	c.Conn.SetReadLimit(4096)
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, msg, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("ws read error", "user_id", c.UserID, "error", err)
			}
			return
		}
		var in Event
		if err := json.Unmarshal(msg, &in); err != nil {
			continue
		}
		if in.Type == MsgPing {
			pong, _ := json.Marshal(Event{Type: MsgPong})
			if !c.reply(pong) {
				return
			}
		}
	}
}

//write
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Conn.Close()
	}()

	for {
		select {
		case <-c.done:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case msg := <-c.control:
			if !c.write(msg) {
				return
			}
		case msg := <-c.Send:
			if !c.write(msg) {
				return
			}
		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) write(msg []byte) bool {
	_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
		logger.Debug("ws write error", "user_id", c.UserID, "error", err)
		return false
	}
	return true
}
