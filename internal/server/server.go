package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"

	"github.com/gnpanschur/Schwimmen/internal/game"
	"github.com/gnpanschur/Schwimmen/internal/i18n"
	"github.com/gnpanschur/Schwimmen/internal/lobby"
	"github.com/gnpanschur/Schwimmen/internal/telemetry"
)

// shutdownTimeout bounds the graceful HTTP shutdown.
const shutdownTimeout = 5 * time.Second

// Server represents the WebSocket server
type Server struct {
	addr          string
	upgrader      websocket.Upgrader
	logger        *log.Logger
	clock         quartz.Clock
	tracer        trace.Tracer
	directory     *lobby.Directory
	defaultLocale language.Tag
	newID         func() string

	mu          sync.RWMutex
	connections map[*Connection]bool

	ctx    context.Context
	cancel context.CancelFunc
}

// Option configures a Server.
type Option func(*Server)

// WithClock sets the clock used for message timestamps and ping tickers.
func WithClock(clock quartz.Clock) Option {
	return func(s *Server) {
		s.clock = clock
	}
}

// WithTracer sets the tracer for action spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(s *Server) {
		s.tracer = tracer
	}
}

// WithDefaultLocale sets the language used when a client asks for none.
func WithDefaultLocale(tag language.Tag) Option {
	return func(s *Server) {
		s.defaultLocale = tag
	}
}

// WithAllowedOrigins restricts WebSocket upgrades to the given origins.
// "*" or an empty list allows every origin.
func WithAllowedOrigins(origins []string) Option {
	return func(s *Server) {
		if len(origins) == 0 || slices.Contains(origins, "*") {
			s.upgrader.CheckOrigin = func(*http.Request) bool { return true }
			return
		}
		s.upgrader.CheckOrigin = func(r *http.Request) bool {
			return slices.Contains(origins, r.Header.Get("Origin"))
		}
	}
}

// WithIDGenerator sets the source of connection and player ids.
func WithIDGenerator(newID func() string) Option {
	return func(s *Server) {
		s.newID = newID
	}
}

// NewServer creates a new WebSocket server serving the rooms of directory
func NewServer(addr string, directory *lobby.Directory, logger *log.Logger, opts ...Option) *Server {
	ctx, cancel := context.WithCancel(context.Background())

	s := &Server{
		addr: addr,
		upgrader: websocket.Upgrader{
			CheckOrigin:     func(*http.Request) bool { return true },
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		logger:        logger.WithPrefix("server"),
		clock:         quartz.NewReal(),
		tracer:        telemetry.Tracer(),
		directory:     directory,
		defaultLocale: i18n.Default(),
		newID:         uuid.NewString,
		connections:   make(map[*Connection]bool),
		ctx:           ctx,
		cancel:        cancel,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the HTTP routes of the server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/rooms", s.handleRooms)
	return mux
}

// Run serves until ctx is cancelled, then shuts down gracefully: the HTTP
// listener stops, every connection is closed and every room is stopped.
func (s *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return s.ctx },
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("Starting WebSocket server", "addr", s.addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		s.logger.Info("Shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err := httpServer.Shutdown(shutdownCtx)
		s.Stop()
		if err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}

// Stop closes every connection and stops every room.
func (s *Server) Stop() {
	s.cancel()

	// Close all connections
	s.mu.Lock()
	conns := make([]*Connection, 0, len(s.connections))
	for conn := range s.connections {
		conns = append(conns, conn)
	}
	s.mu.Unlock()
	for _, conn := range conns {
		_ = conn.Close() // Ignore close errors during shutdown
	}

	s.directory.Close()
}

func (s *Server) register(conn *Connection) {
	s.mu.Lock()
	s.connections[conn] = true
	total := len(s.connections)
	s.mu.Unlock()
	s.logger.Info("Client connected", "conn", conn.ID(), "total", total)
}

func (s *Server) unregister(conn *Connection) {
	s.mu.Lock()
	_, ok := s.connections[conn]
	delete(s.connections, conn)
	total := len(s.connections)
	s.mu.Unlock()
	if !ok {
		return
	}

	_ = conn.Close() // Ignore close errors during unregistration
	s.logger.Info("Client disconnected", "conn", conn.ID(), "total", total)

	if conn.Room() != "" && s.ctx.Err() == nil {
		s.handleDisconnect(s.ctx, conn)
	}
}

// handleDisconnect applies the disconnect policy: a player who leaves a
// waiting room loses the seat, a player in a running game keeps it so a new
// connection can take it over with request_state.
func (s *Server) handleDisconnect(ctx context.Context, conn *Connection) {
	roomID, playerID := conn.Room(), conn.Player()
	room, ok := s.directory.Lookup(roomID)
	if !ok {
		return
	}

	var name string
	err := room.Do(ctx, func(g *game.Game) error {
		p, ok := g.Player(playerID)
		// a newer connection owns the seat
		if !ok || p.ConnID != conn.ID() {
			return nil
		}
		if g.Status() != game.StatusWaiting {
			s.logger.Info("Keeping seat of disconnected player", "room", roomID, "player", playerID)
			return nil
		}
		if err := g.RemovePlayer(playerID); err != nil {
			return err
		}
		name = p.Name
		s.broadcast(g, roomID, []event{{messageType: MessageTypePlayerLeft, data: PlayerLeftData{Name: name}}})
		return nil
	})
	if err != nil {
		s.logger.Warn("Failed to clean up disconnected player", "room", roomID, "player", playerID, "error", err)
		return
	}
	if name != "" {
		s.logger.Info("Removed disconnected player", "room", roomID, "player", playerID)
		s.directory.RemoveEmptyRoom(ctx, roomID)
	}
}

// handleWebSocket handles WebSocket upgrade requests
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	tag := i18n.ResolveTag(r, s.defaultLocale)

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("Failed to upgrade connection", "error", err)
		return
	}

	client := NewConnection(s.ctx, s.newID(), conn, s, i18n.NewTranslator(tag))
	s.register(client)
	client.Start()

	// Connection cleanup is handled by the connection itself
	go func() {
		<-client.Done()
		s.unregister(client)
	}()
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "OK") // Ignore write errors for health check
}

// handleRooms lists the open rooms as JSON.
func (s *Server) handleRooms(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.directory.List()); err != nil {
		s.logger.Error("Failed to encode room list", "error", err)
	}
}

// newMessage stamps a message with the server clock.
func (s *Server) newMessage(messageType MessageType, data any) (*Message, error) {
	msg, err := NewMessage(messageType, data)
	if err != nil {
		return nil, err
	}
	msg.Timestamp = s.clock.Now()
	return msg, nil
}

// roomConnections returns the connections bound to a room.
func (s *Server) roomConnections(roomID string) []*Connection {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var conns []*Connection
	for conn := range s.connections {
		if conn.Room() == roomID {
			conns = append(conns, conn)
		}
	}
	return conns
}

// ConnectionCount returns the number of open connections.
func (s *Server) ConnectionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.connections)
}
