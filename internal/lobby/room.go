package lobby

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/gnpanschur/Schwimmen/internal/game"
)

// RoomSummary is the public listing entry of a room.
type RoomSummary struct {
	ID         string      `json:"id"`
	Status     game.Status `json:"status"`
	Players    int         `json:"players"`
	MaxPlayers int         `json:"max_players"`
	CreatedAt  time.Time   `json:"created_at"`
}

// Room owns one game and serializes every access to it on a single
// goroutine.
type Room struct {
	id        string
	createdAt time.Time
	game      *game.Game
	logger    *log.Logger

	inbox    chan func()
	done     chan struct{}
	stopOnce sync.Once

	// closed is only touched on the room goroutine. Once set, jobs still
	// queued behind the closing one fail instead of reaching the game.
	closed bool

	summary atomic.Pointer[RoomSummary]
}

func newRoom(id string, g *game.Game, createdAt time.Time, logger *log.Logger) *Room {
	r := &Room{
		id:        id,
		createdAt: createdAt,
		game:      g,
		logger:    logger.With("room", id),
		inbox:     make(chan func()),
		done:      make(chan struct{}),
	}
	r.refreshSummary()
	go r.run()
	return r
}

// ID returns the room identifier.
func (r *Room) ID() string { return r.id }

// Summary returns the state of the room after the last completed Do.
func (r *Room) Summary() RoomSummary { return *r.summary.Load() }

func (r *Room) run() {
	for {
		select {
		case job := <-r.inbox:
			job()
		case <-r.done:
			return
		}
	}
}

// Do runs fn on the room goroutine and returns its error. Calls from any
// number of goroutines are executed one at a time in arrival order. Do fails
// with ROOM_NOT_FOUND once the room has been closed or stopped.
func (r *Room) Do(ctx context.Context, fn func(*game.Game) error) error {
	errCh := make(chan error, 1)
	job := func() {
		if r.closed {
			errCh <- game.NewError(game.CodeRoomNotFound, "room %s is closed", r.id)
			return
		}
		defer func() {
			if p := recover(); p != nil {
				r.logger.Error("Room action panicked", "panic", p)
				errCh <- game.NewError(game.CodeInternal, "room %s: %v", r.id, p)
			}
			r.refreshSummary()
		}()
		errCh <- fn(r.game)
	}

	select {
	case r.inbox <- job:
	case <-r.done:
		return game.NewError(game.CodeRoomNotFound, "room %s is closed", r.id)
	case <-ctx.Done():
		return ctx.Err()
	}
	// the job has been picked up and engine calls never block
	return <-errCh
}

// closeIfEmpty marks the room closed when nobody is seated. It must run on
// the room goroutine.
func (r *Room) closeIfEmpty(g *game.Game) bool {
	if g.PlayerCount() == 0 {
		r.closed = true
	}
	return r.closed
}

// stop ends the room goroutine. Pending and future Do calls fail.
func (r *Room) stop() {
	r.stopOnce.Do(func() {
		close(r.done)
		r.logger.Debug("Room stopped")
	})
}

// Done is closed when the room has been stopped.
func (r *Room) Done() <-chan struct{} { return r.done }

// refreshSummary runs on the room goroutine (or before it starts).
func (r *Room) refreshSummary() {
	r.summary.Store(&RoomSummary{
		ID:         r.id,
		Status:     r.game.Status(),
		Players:    r.game.PlayerCount(),
		MaxPlayers: game.MaxPlayers,
		CreatedAt:  r.createdAt,
	})
}
