package ws

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mcoot/mafiagame-go/internal/model"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period; must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 4096

	// Buffer size for outgoing events
	sendBufferSize = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Client is one websocket connection. Events queue on the send channel
// and the write pump owns every write to the underlying connection.
type Client struct {
	conn   *websocket.Conn
	send   chan model.Outbound
	done   chan struct{}
	logger *slog.Logger

	closeOnce sync.Once
}

// NewClient wraps an upgraded connection
func NewClient(conn *websocket.Conn, logger *slog.Logger) *Client {
	return &Client{
		conn:   conn,
		send:   make(chan model.Outbound, sendBufferSize),
		done:   make(chan struct{}),
		logger: logger,
	}
}

// Send enqueues an event for delivery, reporting false when the buffer
// is full. It never blocks.
func (c *Client) Send(event model.Outbound) bool {
	select {
	case c.send <- event:
		return true
	default:
		return false
	}
}

// Close asks the write pump to flush and shut the connection down
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}

// readPump consumes frames from the connection and hands decoded events
// to the session. It runs the session's disconnect cleanup on exit.
func (c *Client) readPump(session *Session) {
	defer func() {
		session.disconnected(context.Background())
		c.Close()
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.logger.Warn("websocket read failed", slog.Any("error", err))
			}
			return
		}
		event, err := model.DecodeInbound(data)
		if err != nil {
			session.sendError(err)
			continue
		}
		session.dispatch(context.Background(), event)
	}
}

// writePump drains the send channel onto the connection and keeps the
// peer alive with pings. On shutdown it flushes what is already queued,
// so a kick notice still reaches the displaced connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case event := <-c.send:
			if err := c.writeEvent(event); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.done:
			for {
				select {
				case event := <-c.send:
					if err := c.writeEvent(event); err != nil {
						return
					}
				default:
					_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
					_ = c.conn.WriteMessage(websocket.CloseMessage,
						websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
					return
				}
			}
		}
	}
}

func (c *Client) writeEvent(event model.Outbound) error {
	data, err := model.EncodeOutbound(event)
	if err != nil {
		c.logger.Error("failed to encode outbound event", slog.Any("error", err))
		return nil
	}
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// ServeWS upgrades an HTTP request and runs the connection's session
func ServeWS(hub *Hub, deps SessionDeps, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Warn("websocket upgrade failed", slog.Any("error", err))
			return
		}
		client := NewClient(conn, logger)
		session := NewSession(hub, client, deps, logger)

		go client.writePump()
		go client.readPump(session)
	}
}
