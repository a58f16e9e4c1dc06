package lobby

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/gnpanschur/Schwimmen/internal/game"
	"github.com/gnpanschur/Schwimmen/internal/roomcode"
)

// codeAttempts bounds the collision retries when drawing a random room code.
const codeAttempts = 64

// PlayerInfo identifies a player joining a room.
type PlayerInfo struct {
	ConnID string
	Name   string
	ID     game.PlayerID
}

// Directory maps room ids to running rooms. Lookups may run concurrently;
// creation and removal are serialized.
type Directory struct {
	logger   *log.Logger
	clock    quartz.Clock
	codes    *roomcode.Generator
	gameOpts []game.Option

	mu    sync.RWMutex
	rooms map[string]*Room
}

// Option configures a Directory.
type Option func(*Directory)

// WithClock sets the clock used to stamp room creation times.
func WithClock(clock quartz.Clock) Option {
	return func(d *Directory) {
		d.clock = clock
	}
}

// WithCodeGenerator sets the generator for random room codes.
func WithCodeGenerator(gen *roomcode.Generator) Option {
	return func(d *Directory) {
		d.codes = gen
	}
}

// WithGameOptions passes options to every game the directory creates.
func WithGameOptions(opts ...game.Option) Option {
	return func(d *Directory) {
		d.gameOpts = append(d.gameOpts, opts...)
	}
}

// NewDirectory creates an empty directory.
func NewDirectory(logger *log.Logger, opts ...Option) *Directory {
	d := &Directory{
		logger: logger.WithPrefix("lobby"),
		clock:  quartz.NewReal(),
		codes:  roomcode.NewGenerator(nil, roomcode.DefaultLength),
		rooms:  make(map[string]*Room),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// CreateRoom creates an empty room. A non-blank desiredID is normalized and
// used as the room id; otherwise a random code is drawn.
func (d *Directory) CreateRoom(desiredID string) (*Room, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	id := roomcode.Normalize(desiredID)
	if id != "" {
		if err := roomcode.Validate(id); err != nil {
			return nil, game.NewError(game.CodeInvalidAction, "room id %q: %v", desiredID, err)
		}
		if _, exists := d.rooms[id]; exists {
			return nil, game.NewError(game.CodeRoomAlreadyExists, "room %s", id)
		}
	} else {
		code, err := d.codes.GenerateUnique(func(c string) bool {
			_, taken := d.rooms[c]
			return taken
		}, codeAttempts)
		if err != nil {
			return nil, game.NewError(game.CodeInternal, "%v", err)
		}
		id = code
	}

	room := newRoom(id, game.New(id, d.gameOpts...), d.clock.Now(), d.logger)
	d.rooms[id] = room
	d.logger.Info("Room created", "room", id, "rooms", len(d.rooms))
	return room, nil
}

// JoinRoom seats a player in an existing room. Failures are reported in the
// order ROOM_NOT_FOUND, ROOM_FULL, GAME_ALREADY_STARTED.
func (d *Directory) JoinRoom(ctx context.Context, id string, info PlayerInfo) (*Room, error) {
	room, ok := d.Lookup(id)
	if !ok {
		return nil, game.NewError(game.CodeRoomNotFound, "room %s", roomcode.Normalize(id))
	}

	err := room.Do(ctx, func(g *game.Game) error {
		if g.PlayerCount() >= game.MaxPlayers {
			return game.NewError(game.CodeRoomFull, "room %s has %d players", room.id, g.PlayerCount())
		}
		if g.Status() != game.StatusWaiting {
			return game.NewError(game.CodeGameAlreadyStarted, "room %s is %s", room.id, g.Status())
		}
		return g.AddPlayer(info.ConnID, info.Name, info.ID)
	})
	if err != nil {
		return nil, err
	}
	d.logger.Info("Player joined", "room", room.id, "player", info.ID, "name", info.Name)
	return room, nil
}

// Lookup returns the room with the given id. The id is normalized first.
func (d *Directory) Lookup(id string) (*Room, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	room, ok := d.rooms[roomcode.Normalize(id)]
	return room, ok
}

// RemoveEmptyRoom deletes the room if nobody is seated in it and stops its
// goroutine. It reports whether the room was removed. A join queued on the
// room while it is being removed fails with ROOM_NOT_FOUND.
func (d *Directory) RemoveEmptyRoom(ctx context.Context, id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	id = roomcode.Normalize(id)
	room, ok := d.rooms[id]
	if !ok {
		return false
	}

	empty := false
	err := room.Do(ctx, func(g *game.Game) error {
		empty = room.closeIfEmpty(g)
		return nil
	})
	if err != nil || !empty {
		return false
	}

	delete(d.rooms, id)
	room.stop()
	d.logger.Info("Room removed", "room", id, "rooms", len(d.rooms))
	return true
}

// List returns a summary of every room, sorted by id.
func (d *Directory) List() []RoomSummary {
	d.mu.RLock()
	summaries := make([]RoomSummary, 0, len(d.rooms))
	for _, room := range d.rooms {
		summaries = append(summaries, room.Summary())
	}
	d.mu.RUnlock()

	slices.SortFunc(summaries, func(a, b RoomSummary) int {
		return strings.Compare(a.ID, b.ID)
	})
	return summaries
}

// Len returns the number of rooms.
func (d *Directory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.rooms)
}

// Close stops every room and empties the directory.
func (d *Directory) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()

	for id, room := range d.rooms {
		room.stop()
		delete(d.rooms, id)
	}
	d.logger.Debug("Directory closed")
}
