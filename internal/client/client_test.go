package client

import (
	"context"
	"io"
	"net/http/httptest"
	"slices"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnpanschur/Schwimmen/internal/game"
	"github.com/gnpanschur/Schwimmen/internal/lobby"
	"github.com/gnpanschur/Schwimmen/internal/randutil"
	"github.com/gnpanschur/Schwimmen/internal/server"
)

func testLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

func startServer(t *testing.T) string {
	t.Helper()

	directory := lobby.NewDirectory(testLogger(),
		lobby.WithGameOptions(game.WithRand(randutil.New(3))),
	)
	srv := server.NewServer("", directory, testLogger())
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		srv.Stop()
		ts.Close()
	})
	return ts.URL
}

func connect(t *testing.T, url, name string, opts ...Option) *Client {
	t.Helper()

	c := NewClient(url, name, testLogger(), opts...)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, c.Connect(ctx))
	t.Cleanup(func() { _ = c.Disconnect() })
	return c
}

// states collects the state broadcasts a client receives.
func states(c *Client) <-chan game.Snapshot {
	ch := make(chan game.Snapshot, 32)
	c.AddEventHandler(server.MessageTypeState, func(msg *server.Message) {
		var snap game.Snapshot
		if err := msg.Decode(&snap); err == nil {
			ch <- snap
		}
	})
	return ch
}

func nextState(t *testing.T, ch <-chan game.Snapshot, want ...game.Status) game.Snapshot {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case snap := <-ch:
			if slices.Contains(want, snap.Status) {
				return snap
			}
		case <-deadline:
			t.Fatalf("no %v state received", want)
		}
	}
}

// dealt is any status after the first deal; a dealt 31 ends the round at once.
var dealt = []game.Status{game.StatusPlaying, game.StatusFinished, game.StatusGameOver}

func requestCtx(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestWebsocketURL(t *testing.T) {
	tests := []struct {
		in, locale, want string
		wantErr          bool
	}{
		{in: "http://localhost:3002", want: "ws://localhost:3002/ws"},
		{in: "https://schwimmen.example", locale: "de", want: "wss://schwimmen.example/ws?lang=de"},
		{in: "ws://127.0.0.1:9000/", want: "ws://127.0.0.1:9000/ws"},
		{in: "ftp://example.com", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := websocketURL(tt.in, tt.locale)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCreateAndJoinRoom(t *testing.T) {
	url := startServer(t)

	anna := connect(t, url, "Anna")
	annaStates := states(anna)
	joined := make(chan string, 1)
	anna.AddEventHandler(server.MessageTypePlayerJoined, func(msg *server.Message) {
		var data server.PlayerJoinedData
		_ = msg.Decode(&data)
		joined <- data.Name
	})

	created, err := anna.CreateRoom(requestCtx(t), "kneipe")
	require.NoError(t, err)
	assert.Equal(t, "KNEIPE", created.RoomID)
	assert.Equal(t, "KNEIPE", anna.Room())
	assert.Equal(t, created.PlayerID, anna.PlayerID())
	nextState(t, annaStates, game.StatusWaiting)

	ben := connect(t, url, "Ben")
	benStates := states(ben)
	_, err = ben.JoinRoom(requestCtx(t), "KNEIPE")
	require.NoError(t, err)

	select {
	case name := <-joined:
		assert.Equal(t, "Ben", name)
	case <-time.After(2 * time.Second):
		t.Fatal("anna was not told that ben joined")
	}

	snap := nextState(t, benStates, game.StatusWaiting)
	require.Len(t, snap.Players, 2)

	require.NoError(t, anna.StartGame())
	snap = nextState(t, benStates, dealt...)
	for _, p := range snap.Players {
		switch {
		case p.PlayerID == ben.PlayerID():
			assert.Len(t, p.Hand, game.HandSize)
		case snap.Status == game.StatusPlaying:
			assert.Nil(t, p.Hand, "other hands stay hidden during play")
		}
	}
}

func TestServerErrorsAreLocalized(t *testing.T) {
	url := startServer(t)
	c := connect(t, url, "Clara", WithLocale("de"))

	_, err := c.JoinRoom(requestCtx(t), "NOWHERE")
	var serr *ServerError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, string(game.CodeRoomNotFound), serr.Code)
	assert.Equal(t, "Raum nicht gefunden.", serr.Message)
}

func TestRoomActionsNeedARoom(t *testing.T) {
	c := NewClient("http://localhost:1", "Dora", testLogger())
	assert.ErrorIs(t, c.StartGame(), ErrNotInRoom)
	assert.ErrorIs(t, c.Knock(), ErrNotInRoom)
	assert.ErrorIs(t, c.Draw(0), ErrNotInRoom)
}

func TestRequestStateReclaimsSeat(t *testing.T) {
	url := startServer(t)

	anna := connect(t, url, "Anna", WithPlayerID("anna-1"))
	_, err := anna.CreateRoom(requestCtx(t), "ECKE")
	require.NoError(t, err)
	ben := connect(t, url, "Ben")
	_, err = ben.JoinRoom(requestCtx(t), "ECKE")
	require.NoError(t, err)

	benStates := states(ben)
	require.NoError(t, anna.StartGame())
	nextState(t, benStates, dealt...)

	// a fresh connection with the same player id takes the seat over
	again := connect(t, url, "Anna", WithPlayerID("anna-1"))
	snap, err := again.RequestState(requestCtx(t), "ecke")
	require.NoError(t, err)
	assert.Equal(t, "ECKE", again.Room())
	assert.Equal(t, "ECKE", snap.RoomID)

	var mine *game.PlayerView
	for i := range snap.Players {
		if snap.Players[i].PlayerID == "anna-1" {
			mine = &snap.Players[i]
		}
	}
	require.NotNil(t, mine)
	assert.Len(t, mine.Hand, game.HandSize)
}

func TestRequestStateWithoutPlayerID(t *testing.T) {
	c := NewClient("http://localhost:1", "Emil", testLogger())
	_, err := c.RequestState(context.Background(), "ROOM")
	assert.ErrorContains(t, err, "no player id")
}
