package lobby

import (
	"context"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnpanschur/Schwimmen/internal/game"
	"github.com/gnpanschur/Schwimmen/internal/randutil"
	"github.com/gnpanschur/Schwimmen/internal/roomcode"
)

func newTestDirectory(t *testing.T, opts ...Option) *Directory {
	t.Helper()
	logger := log.NewWithOptions(io.Discard, log.Options{})
	opts = append([]Option{
		WithCodeGenerator(roomcode.NewGenerator(randutil.New(1), roomcode.DefaultLength)),
		WithGameOptions(game.WithRand(randutil.New(2))),
	}, opts...)
	d := NewDirectory(logger, opts...)
	t.Cleanup(d.Close)
	return d
}

func player(i int) PlayerInfo {
	return PlayerInfo{
		ConnID: fmt.Sprintf("conn-%d", i),
		Name:   fmt.Sprintf("Player %d", i),
		ID:     game.PlayerID(fmt.Sprintf("p%d", i)),
	}
}

func TestCreateRoomCustomID(t *testing.T) {
	d := newTestDirectory(t)

	room, err := d.CreateRoom("  stammtisch ")
	require.NoError(t, err)
	assert.Equal(t, "STAMMTISCH", room.ID())

	_, err = d.CreateRoom("Stammtisch")
	assert.ErrorIs(t, err, game.ErrRoomAlreadyExists)
	assert.Equal(t, 1, d.Len())

	_, err = d.CreateRoom("tab\tinside")
	assert.True(t, game.IsCode(err, game.CodeInvalidAction))

	room, err = d.CreateRoom("Kneipe Müller")
	require.NoError(t, err)
	assert.Equal(t, "KNEIPE MÜLLER", room.ID())
	found, ok := d.Lookup("kneipe müller ")
	require.True(t, ok)
	assert.Same(t, room, found)
}

func TestCreateRoomRandomCode(t *testing.T) {
	d := newTestDirectory(t)
	seen := map[string]bool{}

	for range 20 {
		room, err := d.CreateRoom("")
		require.NoError(t, err)
		assert.Len(t, room.ID(), roomcode.DefaultLength)
		assert.False(t, seen[room.ID()])
		seen[room.ID()] = true
	}
	assert.Equal(t, 20, d.Len())
}

func TestJoinRoomErrorOrder(t *testing.T) {
	ctx := context.Background()
	d := newTestDirectory(t)

	_, err := d.JoinRoom(ctx, "NOPE", player(0))
	assert.ErrorIs(t, err, game.ErrRoomNotFound)

	room, err := d.CreateRoom("TABLE")
	require.NoError(t, err)

	for i := range game.MaxPlayers {
		joined, err := d.JoinRoom(ctx, "table", player(i))
		require.NoError(t, err)
		assert.Same(t, room, joined)
	}

	// full is reported before started
	require.NoError(t, room.Do(ctx, func(g *game.Game) error { return g.Start() }))
	_, err = d.JoinRoom(ctx, "TABLE", player(9))
	assert.ErrorIs(t, err, game.ErrRoomFull)

	small, err := d.CreateRoom("SMALL")
	require.NoError(t, err)
	_, err = d.JoinRoom(ctx, "SMALL", player(0))
	require.NoError(t, err)
	_, err = d.JoinRoom(ctx, "SMALL", player(1))
	require.NoError(t, err)
	require.NoError(t, small.Do(ctx, func(g *game.Game) error { return g.Start() }))

	_, err = d.JoinRoom(ctx, "SMALL", player(2))
	assert.ErrorIs(t, err, game.ErrGameAlreadyStarted)
	assert.Equal(t, 2, small.Summary().Players)
}

func TestRemoveEmptyRoom(t *testing.T) {
	ctx := context.Background()
	d := newTestDirectory(t)

	room, err := d.CreateRoom("ROOM")
	require.NoError(t, err)
	_, err = d.JoinRoom(ctx, "ROOM", player(0))
	require.NoError(t, err)

	assert.False(t, d.RemoveEmptyRoom(ctx, "ROOM"), "occupied room must stay")

	require.NoError(t, room.Do(ctx, func(g *game.Game) error { return g.RemovePlayer(player(0).ID) }))
	assert.True(t, d.RemoveEmptyRoom(ctx, "room"))
	assert.False(t, d.RemoveEmptyRoom(ctx, "ROOM"))

	_, ok := d.Lookup("ROOM")
	assert.False(t, ok)

	err = room.Do(ctx, func(*game.Game) error { return nil })
	assert.ErrorIs(t, err, game.ErrRoomNotFound)
	select {
	case <-room.Done():
	default:
		t.Fatal("room goroutine still running")
	}
}

func TestJoinRacingRemoveEmptyRoom(t *testing.T) {
	ctx := context.Background()
	d := newTestDirectory(t)

	for i := range 200 {
		id := fmt.Sprintf("RACE%d", i)
		room, err := d.CreateRoom(id)
		require.NoError(t, err)
		_, err = d.JoinRoom(ctx, id, player(0))
		require.NoError(t, err)

		var (
			wg      sync.WaitGroup
			start   = make(chan struct{})
			removed bool
			joinErr error
		)
		wg.Add(2)
		go func() {
			defer wg.Done()
			<-start
			assert.NoError(t, room.Do(ctx, func(g *game.Game) error { return g.RemovePlayer(player(0).ID) }))
			removed = d.RemoveEmptyRoom(ctx, id)
		}()
		go func() {
			defer wg.Done()
			<-start
			_, joinErr = d.JoinRoom(ctx, id, player(1))
		}()
		close(start)
		wg.Wait()

		found, ok := d.Lookup(id)
		if joinErr == nil {
			// a seated player always has a live room to play in
			assert.False(t, removed, "round %d", i)
			require.True(t, ok, "round %d", i)
			assert.Same(t, room, found)
			assert.Equal(t, 1, room.Summary().Players)
			continue
		}
		assert.ErrorIs(t, joinErr, game.ErrRoomNotFound, "round %d", i)
		assert.True(t, removed, "round %d", i)
		assert.False(t, ok, "round %d", i)
	}
}

func TestListSummaries(t *testing.T) {
	ctx := context.Background()
	clock := quartz.NewMock(t)
	d := newTestDirectory(t, WithClock(clock))

	_, err := d.CreateRoom("BRAVO")
	require.NoError(t, err)
	clock.Advance(time.Minute)
	_, err = d.CreateRoom("ALPHA")
	require.NoError(t, err)
	_, err = d.JoinRoom(ctx, "BRAVO", player(0))
	require.NoError(t, err)

	list := d.List()
	require.Len(t, list, 2)
	assert.Equal(t, "ALPHA", list[0].ID)
	assert.Equal(t, 0, list[0].Players)
	assert.Equal(t, "BRAVO", list[1].ID)
	assert.Equal(t, 1, list[1].Players)
	assert.Equal(t, game.StatusWaiting, list[1].Status)
	assert.Equal(t, game.MaxPlayers, list[1].MaxPlayers)
	assert.Equal(t, time.Minute, list[0].CreatedAt.Sub(list[1].CreatedAt))
}

func TestCloseStopsRooms(t *testing.T) {
	d := newTestDirectory(t)
	room, err := d.CreateRoom("")
	require.NoError(t, err)

	d.Close()
	assert.Equal(t, 0, d.Len())
	err = room.Do(context.Background(), func(*game.Game) error { return nil })
	assert.True(t, game.IsCode(err, game.CodeRoomNotFound))
}
