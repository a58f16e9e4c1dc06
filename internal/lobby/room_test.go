package lobby

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnpanschur/Schwimmen/internal/game"
)

func TestRoomSerializesCalls(t *testing.T) {
	d := newTestDirectory(t)
	room, err := d.CreateRoom("")
	require.NoError(t, err)

	// counter is deliberately unsynchronized; the race detector flags any
	// overlap between jobs
	counter := 0
	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, room.Do(context.Background(), func(*game.Game) error {
				counter++
				return nil
			}))
		}()
	}
	wg.Wait()

	require.NoError(t, room.Do(context.Background(), func(*game.Game) error {
		assert.Equal(t, 50, counter)
		return nil
	}))
}

func TestRoomDoReturnsError(t *testing.T) {
	d := newTestDirectory(t)
	room, err := d.CreateRoom("")
	require.NoError(t, err)

	err = room.Do(context.Background(), func(g *game.Game) error { return g.Start() })
	assert.True(t, game.IsCode(err, game.CodeNotEnoughPlayers))
}

func TestRoomRecoversPanics(t *testing.T) {
	d := newTestDirectory(t)
	room, err := d.CreateRoom("")
	require.NoError(t, err)

	err = room.Do(context.Background(), func(*game.Game) error { panic("boom") })
	assert.True(t, game.IsCode(err, game.CodeInternal))

	// the room keeps serving
	assert.NoError(t, room.Do(context.Background(), func(*game.Game) error { return nil }))
}

func TestRoomDoHonoursContext(t *testing.T) {
	d := newTestDirectory(t)
	room, err := d.CreateRoom("")
	require.NoError(t, err)

	release := make(chan struct{})
	started := make(chan struct{})
	go func() {
		_ = room.Do(context.Background(), func(*game.Game) error {
			close(started)
			<-release
			return nil
		})
	}()
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err = room.Do(ctx, func(*game.Game) error { return nil })
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	close(release)
}

func TestClosedRoomRejectsQueuedJobs(t *testing.T) {
	ctx := context.Background()
	d := newTestDirectory(t)
	room, err := d.CreateRoom("")
	require.NoError(t, err)

	require.NoError(t, room.Do(ctx, func(g *game.Game) error {
		assert.True(t, room.closeIfEmpty(g))
		return nil
	}))

	// the goroutine still runs but no job reaches the game any more
	err = room.Do(ctx, func(g *game.Game) error {
		return g.AddPlayer("conn-1", "Anna", "p1")
	})
	assert.ErrorIs(t, err, game.ErrRoomNotFound)
	assert.Equal(t, 0, room.Summary().Players)
}

func TestCloseIfEmptyKeepsOccupiedRoom(t *testing.T) {
	ctx := context.Background()
	d := newTestDirectory(t)
	room, err := d.CreateRoom("")
	require.NoError(t, err)
	_, err = d.JoinRoom(ctx, room.ID(), player(0))
	require.NoError(t, err)

	require.NoError(t, room.Do(ctx, func(g *game.Game) error {
		assert.False(t, room.closeIfEmpty(g))
		return nil
	}))
	assert.NoError(t, room.Do(ctx, func(*game.Game) error { return nil }))
}
