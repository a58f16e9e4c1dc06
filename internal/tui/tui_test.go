package tui

import (
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnpanschur/Schwimmen/internal/client"
	"github.com/gnpanschur/Schwimmen/internal/deck"
	"github.com/gnpanschur/Schwimmen/internal/game"
)

type fakeExecutor struct {
	mu         sync.Mutex
	got        []client.Command
	fail       error
	noDeadline bool
}

func (f *fakeExecutor) Execute(ctx context.Context, cmd client.Command) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := ctx.Deadline(); !ok {
		f.noDeadline = true
	}
	f.got = append(f.got, cmd)
	return f.fail
}

func (f *fakeExecutor) commands() []client.Command {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]client.Command(nil), f.got...)
}

func newTestModel(t *testing.T, exec Executor) *Model {
	t.Helper()
	logger := log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
	m := NewModel(context.Background(), exec, client.NewRenderer(io.Discard, "default"), logger, time.Second)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return m
}

// typeLine enters line at the prompt and returns the resulting command.
func typeLine(m *Model, line string) tea.Cmd {
	m.input.SetValue(line)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return cmd
}

func logText(m *Model) string {
	return strings.Join(m.gameLog, "\n")
}

func TestSubmitRunsCommand(t *testing.T) {
	exec := &fakeExecutor{}
	m := newTestModel(t, exec)

	cmd := typeLine(m, "  draw 2 ")
	require.NotNil(t, cmd)
	assert.Empty(t, m.input.Value(), "prompt is cleared")
	assert.Contains(t, logText(m), "> draw 2")

	m.Update(cmd())
	assert.Equal(t, []client.Command{{Name: "draw", Args: []string{"2"}}}, exec.commands())
	assert.False(t, exec.noDeadline, "commands run with the request timeout")
	assert.NotContains(t, logText(m), "✗")
}

func TestSubmitShowsServerRejection(t *testing.T) {
	exec := &fakeExecutor{fail: &client.ServerError{Code: "NOT_YOUR_TURN", Message: "It is not your turn."}}
	m := newTestModel(t, exec)

	cmd := typeLine(m, "pass")
	require.NotNil(t, cmd)
	m.Update(cmd())

	assert.Contains(t, m.gameLog[len(m.gameLog)-1], "It is not your turn.")
	assert.NotContains(t, logText(m), "NOT_YOUR_TURN")
}

func TestSubmitLocalCommands(t *testing.T) {
	t.Run("unknown command stays local", func(t *testing.T) {
		exec := &fakeExecutor{}
		m := newTestModel(t, exec)

		assert.Nil(t, typeLine(m, "fold"))
		assert.Contains(t, logText(m), `unknown command "fold"`)
		assert.Empty(t, exec.commands())
	})

	t.Run("empty line", func(t *testing.T) {
		m := newTestModel(t, &fakeExecutor{})
		assert.Nil(t, typeLine(m, "   "))
		assert.Empty(t, m.gameLog)
	})

	t.Run("help", func(t *testing.T) {
		exec := &fakeExecutor{}
		m := newTestModel(t, exec)

		assert.Nil(t, typeLine(m, "help"))
		assert.Contains(t, logText(m), "call the last lap")
		assert.Empty(t, exec.commands())
	})

	t.Run("quit", func(t *testing.T) {
		m := newTestModel(t, &fakeExecutor{})

		cmd := typeLine(m, "quit")
		require.NotNil(t, cmd)
		assert.IsType(t, tea.QuitMsg{}, cmd())
		assert.Empty(t, m.View())
	})

	t.Run("ctrl+c", func(t *testing.T) {
		m := newTestModel(t, &fakeExecutor{})

		_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
		require.NotNil(t, cmd)
		assert.IsType(t, tea.QuitMsg{}, cmd())
		assert.False(t, m.Lost())
	})
}

func TestServerPushes(t *testing.T) {
	m := newTestModel(t, &fakeExecutor{})
	assert.NotContains(t, m.View(), "Room STAMMTISCH")

	snap := game.Snapshot{
		RoomID: "STAMMTISCH",
		Status: game.StatusPlaying,
		Players: []game.PlayerView{
			{PlayerID: "p-anna", Name: "Anna", CardCount: 3, Hand: deck.MustParseCards("7c8d9h"), IsCurrentTurn: true, IsMyTurn: true, Coins: 3},
			{PlayerID: "p-ben", Name: "Ben", CardCount: 3, Coins: 3},
		},
		CenterCards: deck.MustParseCards("TcJdQh"),
		DeckCount:   26,
	}
	m.Update(StateMsg{Snapshot: snap})
	view := m.View()
	assert.Contains(t, view, "Room STAMMTISCH")
	assert.Contains(t, view, "Ben")
	assert.Equal(t, turnPlaceholder, m.input.Placeholder)

	snap.Players[0].IsMyTurn = false
	m.Update(StateMsg{Snapshot: snap})
	assert.Equal(t, idlePlaceholder, m.input.Placeholder)

	m.Update(NoticeMsg{Text: "Ben knocked!"})
	m.Update(ErrorMsg{Text: "Room not found."})
	assert.Contains(t, m.gameLog[0], "Ben knocked!")
	assert.Contains(t, m.gameLog[1], "Room not found.")
	assert.Contains(t, m.View(), "Ben knocked!")
}

func TestDisconnectQuits(t *testing.T) {
	m := newTestModel(t, &fakeExecutor{})

	_, cmd := m.Update(DisconnectedMsg{})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.True(t, m.Lost())
	assert.Contains(t, logText(m), "Connection to server lost")
}

func TestQueuedCommandsRunOnInit(t *testing.T) {
	exec := &fakeExecutor{}
	m := newTestModel(t, exec)
	m.Queue(client.Command{Name: "join", Args: []string{"Kneipe", "Müller"}})

	batch, ok := m.Init()().(tea.BatchMsg)
	require.True(t, ok)
	for _, cmd := range batch {
		if msg := cmd(); msg != nil {
			if _, isResult := msg.(commandResultMsg); isResult {
				m.Update(msg)
			}
		}
	}
	assert.Equal(t, []client.Command{{Name: "join", Args: []string{"Kneipe", "Müller"}}}, exec.commands())
}
