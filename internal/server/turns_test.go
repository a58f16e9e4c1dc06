package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnpanschur/Schwimmen/internal/game"
	"github.com/gnpanschur/Schwimmen/internal/i18n"
	"github.com/gnpanschur/Schwimmen/internal/randutil"
)

func startedGame(t *testing.T) *game.Game {
	t.Helper()
	g := game.New("T", game.WithRand(randutil.New(11)))
	require.NoError(t, g.AddPlayer("c1", "Anna", "p1"))
	require.NoError(t, g.AddPlayer("c2", "Ben", "p2"))

	_, err := applyAction(g, "p1", &StartGame{RoomID: "T"})
	require.NoError(t, err)
	require.Equal(t, game.StatusPlaying, g.Status(), "seeded deal must leave the round open")
	return g
}

func TestApplyActionDrawKeepsTurnUntilComplete(t *testing.T) {
	g := startedGame(t)

	events, err := applyAction(g, "p1", &DrawFromCenter{RoomID: "T", CenterIndex: intPtr(1)})
	require.NoError(t, err)
	assert.Empty(t, events)
	cur, _ := g.CurrentPlayer()
	assert.Equal(t, game.PlayerID("p1"), cur.ID)

	_, err = applyAction(g, "p1", &Pass{RoomID: "T"})
	assert.True(t, game.IsCode(err, game.CodeHandNotComplete))

	_, err = applyAction(g, "p1", &DiscardToCenter{RoomID: "T", HandIndex: intPtr(3)})
	require.NoError(t, err)
	if g.Status() == game.StatusPlaying {
		cur, _ = g.CurrentPlayer()
		assert.Equal(t, game.PlayerID("p2"), cur.ID)
	}
}

func TestApplyActionKnockEndsRound(t *testing.T) {
	g := startedGame(t)

	events, err := applyAction(g, "p1", &Knock{RoomID: "T"})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, i18n.ToastKnock, events[0].toastKey)
	assert.Equal(t, []any{"Anna"}, events[0].toastArgs)

	cur, _ := g.CurrentPlayer()
	assert.Equal(t, game.PlayerID("p2"), cur.ID)

	_, err = applyAction(g, "p2", &Pass{RoomID: "T"})
	require.NoError(t, err)
	assert.Equal(t, game.StatusFinished, g.Status())

	_, err = applyAction(g, "p1", &StartNextRound{RoomID: "T"})
	require.NoError(t, err)
	assert.Equal(t, 1, g.TurnIndex())
}

func TestApplyActionRejectsNonGameAction(t *testing.T) {
	g := startedGame(t)
	_, err := applyAction(g, "p1", &LeaveRoom{RoomID: "T"})
	assert.True(t, game.IsCode(err, game.CodeInvalidAction))
}

func TestRoundEndEventsGameOver(t *testing.T) {
	g := startedGame(t)

	// play rounds with knock/pass until one player is out
	for range 100 {
		if g.Status() == game.StatusGameOver {
			break
		}
		if g.Status() == game.StatusFinished {
			_, err := applyAction(g, "p1", &StartNextRound{RoomID: "T"})
			require.NoError(t, err)
			continue
		}
		cur, _ := g.CurrentPlayer()
		var action Action = &Pass{RoomID: "T"}
		if g.KnockedBy() == "" {
			action = &Knock{RoomID: "T"}
		}
		events, err := applyAction(g, cur.ID, action)
		require.NoError(t, err)

		if g.Status() == game.StatusGameOver && g.Pot() == 0 {
			require.NotEmpty(t, events)
			last := events[len(events)-1]
			assert.Equal(t, i18n.ToastGameOver, last.toastKey)
		}
	}
}
