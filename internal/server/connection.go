package server

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gorilla/websocket"

	"github.com/gnpanschur/Schwimmen/internal/game"
	"github.com/gnpanschur/Schwimmen/internal/i18n"
)

// Connection represents a WebSocket connection to a client
type Connection struct {
	id         string
	conn       *websocket.Conn
	send       chan *Message
	server     *Server
	translator *i18n.Translator
	logger     *log.Logger
	clock      quartz.Clock
	ctx        context.Context
	cancel     context.CancelFunc
	closeOnce  sync.Once

	mu       sync.RWMutex
	playerID game.PlayerID
	roomID   string
}

// NewConnection creates a new connection wrapper
func NewConnection(parent context.Context, id string, conn *websocket.Conn, server *Server, translator *i18n.Translator) *Connection {
	ctx, cancel := context.WithCancel(parent)

	return &Connection{
		id:         id,
		conn:       conn,
		send:       make(chan *Message, 256),
		server:     server,
		translator: translator,
		logger:     server.logger.WithPrefix("conn").With("conn", id),
		clock:      server.clock,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// ID returns the connection handle bound to a seat.
func (c *Connection) ID() string { return c.id }

// Start begins handling the connection
func (c *Connection) Start() {
	go c.writePump()
	go c.readPump()
}

// Done is closed once the connection has shut down.
func (c *Connection) Done() <-chan struct{} { return c.ctx.Done() }

// Close closes the connection
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()
		close(c.send)
		err = c.conn.Close()
	})
	return err
}

// SendMessage sends a message to the client
func (c *Connection) SendMessage(msg *Message) (err error) {
	defer func() {
		if r := recover(); r != nil {
			// Channel was closed, this is expected during shutdown
			c.logger.Debug("Attempted to send message on closed connection", "error", r)
			err = ErrConnectionClosed
		}
	}()

	select {
	case c.send <- msg:
		return nil
	case <-c.ctx.Done():
		return c.ctx.Err()
	default:
		c.logger.Warn("Connection send buffer full, closing connection")
		_ = c.Close() // Ignore close errors
		return ErrConnectionClosed
	}
}

// Bind associates this connection with a seat in a room.
func (c *Connection) Bind(roomID string, playerID game.PlayerID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.roomID = roomID
	c.playerID = playerID
}

// Unbind clears the seat association.
func (c *Connection) Unbind() {
	c.Bind("", "")
}

// Player returns the associated player ID
func (c *Connection) Player() game.PlayerID {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.playerID
}

// Room returns the associated room ID
func (c *Connection) Room() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.roomID
}

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 8192
)

var (
	ErrConnectionClosed = websocket.ErrCloseSent
)

// readPump handles incoming messages from the client
func (c *Connection) readPump() {
	defer func() { _ = c.Close() }() // Ignore close errors during cleanup

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		var msg Message
		err := c.conn.ReadJSON(&msg)
		if err != nil {
			var syntaxErr *json.SyntaxError
			var typeErr *json.UnmarshalTypeError
			if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
				// a frame that is not JSON does not end the session
				c.sendError(game.NewError(game.CodeInvalidAction, "malformed message: %v", err), "")
				continue
			}
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket error", "error", err)
			}
			break
		}

		c.server.dispatch(c.ctx, c, &msg)
	}
}

// writePump handles outgoing messages to the client
func (c *Connection) writePump() {
	ticker := c.clock.NewTicker(pingPeriod, "conn", "ping")
	defer func() {
		ticker.Stop()
		_ = c.conn.Close() // Ignore close errors during cleanup
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteJSON(message); err != nil {
				c.logger.Error("Failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			return
		}
	}
}

// sendError sends a localized error message to the client
func (c *Connection) sendError(err error, requestID string) {
	code := game.CodeOf(err)
	errorMsg, mErr := c.server.newMessage(MessageTypeError, ErrorData{
		Code:    string(code),
		Message: c.translator.Error(string(code)),
	})
	if mErr != nil {
		c.logger.Error("Failed to create error message", "error", mErr)
		return
	}
	errorMsg.RequestID = requestID

	_ = c.SendMessage(errorMsg) // Ignore send errors during error handling
}

// sendData marshals data and queues it for the client.
func (c *Connection) sendData(messageType MessageType, data any, requestID string) {
	msg, err := c.server.newMessage(messageType, data)
	if err != nil {
		c.logger.Error("Failed to create message", "type", messageType, "error", err)
		return
	}
	msg.RequestID = requestID
	_ = c.SendMessage(msg) // Ignore send errors
}
