package client

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gorilla/websocket"

	"github.com/gnpanschur/Schwimmen/internal/game"
	"github.com/gnpanschur/Schwimmen/internal/i18n"
	"github.com/gnpanschur/Schwimmen/internal/server" // Reuse message types
)

const (
	pingPeriod = 54 * time.Second
	writeWait  = 10 * time.Second
)

// ErrNotInRoom is returned by room actions before a room was created or joined.
var ErrNotInRoom = errors.New("not in a room")

// ServerError is an error reply from the server.
type ServerError struct {
	Code    string
	Message string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Client represents a WebSocket client for a Schwimmen server
type Client struct {
	serverURL string
	name      string
	locale    string
	conn      *websocket.Conn
	send      chan *server.Message
	receive   chan *server.Message
	logger    *log.Logger
	clock     quartz.Clock
	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once

	mu        sync.RWMutex
	connected bool
	roomID    string
	playerID  game.PlayerID

	// Event handlers
	eventHandlers map[server.MessageType][]EventHandler
	pending       map[string]chan *server.Message
	nextRequest   atomic.Uint64
}

// EventHandler is a function that handles incoming events
type EventHandler func(*server.Message)

// Option configures a Client.
type Option func(*Client)

// WithLocale asks the server for messages in the given language.
func WithLocale(locale string) Option {
	return func(c *Client) {
		c.locale = locale
	}
}

// WithPlayerID reuses a player id from an earlier session.
func WithPlayerID(id string) Option {
	return func(c *Client) {
		c.playerID = game.PlayerID(id)
	}
}

// WithClock sets the clock driving the ping ticker.
func WithClock(clock quartz.Clock) Option {
	return func(c *Client) {
		c.clock = clock
	}
}

// NewClient creates a new WebSocket client playing as name
func NewClient(serverURL, name string, logger *log.Logger, opts ...Option) *Client {
	ctx, cancel := context.WithCancel(context.Background())

	c := &Client{
		serverURL:     serverURL,
		name:          name,
		send:          make(chan *server.Message, 256),
		receive:       make(chan *server.Message, 256),
		logger:        logger.WithPrefix("client"),
		clock:         quartz.NewReal(),
		ctx:           ctx,
		cancel:        cancel,
		eventHandlers: make(map[server.MessageType][]EventHandler),
		pending:       make(map[string]chan *server.Message),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// websocketURL converts an http(s) server URL into the ws(s) endpoint.
func websocketURL(serverURL, locale string) (string, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return "", fmt.Errorf("invalid server URL: %w", err)
	}

	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("invalid server URL scheme %q", u.Scheme)
	}

	u.Path = "/ws"
	if locale != "" {
		q := u.Query()
		q.Set(i18n.LangParam, locale)
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

// Connect establishes a WebSocket connection to the server
func (c *Client) Connect(ctx context.Context) error {
	target, err := websocketURL(c.serverURL, c.locale)
	if err != nil {
		return err
	}
	c.logger.Info("Connecting to server", "url", target)

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, target, nil)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.connected = true
	c.mu.Unlock()

	go c.readPump()
	go c.writePump()
	go c.eventProcessor()

	c.logger.Info("Connected to server")
	return nil
}

// Disconnect closes the WebSocket connection
func (c *Client) Disconnect() error {
	c.closeOnce.Do(func() {
		c.cancel()

		c.mu.Lock()
		defer c.mu.Unlock()

		if c.conn != nil {
			_ = c.conn.Close() // Ignore close errors during shutdown
			c.connected = false
		}

		c.logger.Info("Disconnected from server")
	})
	return nil
}

// Done is closed once the client has been disconnected.
func (c *Client) Done() <-chan struct{} { return c.ctx.Done() }

// IsConnected returns whether the client is connected
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

// SendMessage queues a message for the server
func (c *Client) SendMessage(msg *server.Message) error {
	select {
	case c.send <- msg:
		return nil
	case <-c.ctx.Done():
		return c.ctx.Err()
	default:
		return fmt.Errorf("send buffer full")
	}
}

// readPump handles incoming messages from the server
func (c *Client) readPump() {
	defer func() {
		c.mu.Lock()
		c.connected = false
		c.mu.Unlock()
		_ = c.Disconnect()
	}()

	for {
		var msg server.Message
		err := c.conn.ReadJSON(&msg)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket error", "error", err)
			}
			return
		}

		c.logger.Debug("Received message", "type", msg.Type)

		select {
		case c.receive <- &msg:
		case <-c.ctx.Done():
			return
		}
	}
}

// writePump handles outgoing messages to the server
func (c *Client) writePump() {
	ticker := c.clock.NewTicker(pingPeriod, "client", "ping")
	defer func() {
		ticker.Stop()
		_ = c.conn.Close() // Ignore close errors during cleanup
	}()

	for {
		select {
		case message := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
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
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

// eventProcessor handles messages one at a time so handlers see them in
// the order the server sent them.
func (c *Client) eventProcessor() {
	for {
		select {
		case msg := <-c.receive:
			c.handleMessage(msg)
		case <-c.ctx.Done():
			return
		}
	}
}

// handleMessage tracks the seat, completes pending requests and dispatches
// to registered handlers
func (c *Client) handleMessage(msg *server.Message) {
	switch msg.Type {
	case server.MessageTypeRoomCreated, server.MessageTypeRoomJoined:
		var data server.RoomJoinedData
		if err := msg.Decode(&data); err == nil {
			c.setSeat(data.RoomID, data.PlayerID)
		}
	}

	if msg.RequestID != "" {
		c.mu.Lock()
		ch, ok := c.pending[msg.RequestID]
		delete(c.pending, msg.RequestID)
		c.mu.Unlock()
		if ok {
			ch <- msg
		}
	}

	c.mu.RLock()
	handlers := c.eventHandlers[msg.Type]
	c.mu.RUnlock()

	if len(handlers) == 0 {
		c.logger.Debug("No handler for message type", "type", msg.Type)
	}
	for _, handler := range handlers {
		handler(msg)
	}
}

// AddEventHandler adds an event handler for a specific message type
func (c *Client) AddEventHandler(messageType server.MessageType, handler EventHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.eventHandlers[messageType] = append(c.eventHandlers[messageType], handler)
}

func (c *Client) setSeat(roomID string, playerID game.PlayerID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.roomID = roomID
	c.playerID = playerID
}

// Room returns the current room code.
func (c *Client) Room() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.roomID
}

// PlayerID returns the id of this client's seat.
func (c *Client) PlayerID() game.PlayerID {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.playerID
}

// Name returns the display name used when creating or joining rooms.
func (c *Client) Name() string { return c.name }

// request sends a message tagged with a fresh request id and waits for the
// reply carrying the same id. Error replies become *ServerError.
func (c *Client) request(ctx context.Context, messageType server.MessageType, data any) (*server.Message, error) {
	msg, err := server.NewMessage(messageType, data)
	if err != nil {
		return nil, err
	}
	msg.RequestID = strconv.FormatUint(c.nextRequest.Add(1), 10)

	reply := make(chan *server.Message, 1)
	c.mu.Lock()
	c.pending[msg.RequestID] = reply
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		delete(c.pending, msg.RequestID)
		c.mu.Unlock()
	}()

	if err := c.SendMessage(msg); err != nil {
		return nil, err
	}

	select {
	case resp := <-reply:
		if resp.Type == server.MessageTypeError {
			var data server.ErrorData
			if err := resp.Decode(&data); err != nil {
				return nil, fmt.Errorf("decode error reply: %w", err)
			}
			return nil, &ServerError{Code: data.Code, Message: data.Message}
		}
		return resp, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-c.ctx.Done():
		return nil, fmt.Errorf("waiting for %s reply: %w", messageType, c.ctx.Err())
	}
}

// CreateRoom opens a room and takes the first seat. An empty roomID lets the
// server pick a code.
func (c *Client) CreateRoom(ctx context.Context, roomID string) (server.RoomCreatedData, error) {
	var data server.RoomCreatedData
	resp, err := c.request(ctx, server.MessageTypeCreateRoom, server.CreateRoom{
		Name:     c.name,
		PlayerID: string(c.PlayerID()),
		RoomID:   roomID,
	})
	if err != nil {
		return data, err
	}
	err = resp.Decode(&data)
	return data, err
}

// JoinRoom takes a seat in an existing room
func (c *Client) JoinRoom(ctx context.Context, roomID string) (server.RoomJoinedData, error) {
	var data server.RoomJoinedData
	resp, err := c.request(ctx, server.MessageTypeJoinRoom, server.JoinRoom{
		RoomID:   roomID,
		Name:     c.name,
		PlayerID: string(c.PlayerID()),
	})
	if err != nil {
		return data, err
	}
	err = resp.Decode(&data)
	return data, err
}

// RequestState reclaims this client's seat in roomID and returns the state.
func (c *Client) RequestState(ctx context.Context, roomID string) (game.Snapshot, error) {
	var snap game.Snapshot
	playerID := c.PlayerID()
	if playerID == "" {
		return snap, fmt.Errorf("request state: no player id")
	}

	resp, err := c.request(ctx, server.MessageTypeRequestState, server.RequestState{
		RoomID:   roomID,
		PlayerID: string(playerID),
	})
	if err != nil {
		return snap, err
	}
	if err := resp.Decode(&snap); err != nil {
		return snap, err
	}
	c.setSeat(snap.RoomID, playerID)
	return snap, nil
}

// sendRoomAction sends a fire-and-forget action for the current room.
// Success shows up as a state broadcast, failure as an error message.
func (c *Client) sendRoomAction(messageType server.MessageType, build func(roomID string) any) error {
	roomID := c.Room()
	if roomID == "" {
		return ErrNotInRoom
	}
	msg, err := server.NewMessage(messageType, build(roomID))
	if err != nil {
		return err
	}
	return c.SendMessage(msg)
}

// StartGame deals the first round
func (c *Client) StartGame() error {
	return c.sendRoomAction(server.MessageTypeStartGame, func(id string) any { return server.StartGame{RoomID: id} })
}

// StartNextRound deals the next round after a round has been scored
func (c *Client) StartNextRound() error {
	return c.sendRoomAction(server.MessageTypeStartNextRound, func(id string) any { return server.StartNextRound{RoomID: id} })
}

// Draw takes the center card at index into the hand
func (c *Client) Draw(index int) error {
	return c.sendRoomAction(server.MessageTypeDrawFromCenter, func(id string) any {
		return server.DrawFromCenter{RoomID: id, CenterIndex: &index}
	})
}

// Discard puts the hand card at index into the center
func (c *Client) Discard(index int) error {
	return c.sendRoomAction(server.MessageTypeDiscardToCenter, func(id string) any {
		return server.DiscardToCenter{RoomID: id, HandIndex: &index}
	})
}

// SwapAll exchanges the whole hand with the center
func (c *Client) SwapAll() error {
	return c.sendRoomAction(server.MessageTypeSwapAll, func(id string) any { return server.SwapAll{RoomID: id} })
}

// Pass ends the turn after an exchange
func (c *Client) Pass() error {
	return c.sendRoomAction(server.MessageTypePass, func(id string) any { return server.Pass{RoomID: id} })
}

// Knock announces the last round of turns
func (c *Client) Knock() error {
	return c.sendRoomAction(server.MessageTypeKnock, func(id string) any { return server.Knock{RoomID: id} })
}

// LeaveRoom gives up the seat
func (c *Client) LeaveRoom() error {
	err := c.sendRoomAction(server.MessageTypeLeaveRoom, func(id string) any { return server.LeaveRoom{RoomID: id} })
	if err == nil {
		c.setSeat("", c.PlayerID())
	}
	return err
}
