package tui

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/gnpanschur/Schwimmen/internal/client"
	"github.com/gnpanschur/Schwimmen/internal/game"
)

const (
	idlePlaceholder = "Type a command, help lists them all"
	turnPlaceholder = "Your turn: draw <n>, discard <n>, swap, pass or knock"
	keyHelp         = "Enter to send • PgUp/PgDn to scroll • Ctrl+C to quit"
)

// Executor runs a parsed command against the server.
type Executor interface {
	Execute(ctx context.Context, cmd client.Command) error
}

// StateMsg carries a room snapshot pushed by the server.
type StateMsg struct {
	Snapshot game.Snapshot
}

// NoticeMsg is a line for the log, e.g. a toast or a join.
type NoticeMsg struct {
	Text string
}

// ErrorMsg is an error the server pushed without a request id.
type ErrorMsg struct {
	Text string
}

// DisconnectedMsg reports that the connection to the server is gone.
type DisconnectedMsg struct{}

// commandResultMsg reports the outcome of a command sent to the server.
type commandResultMsg struct {
	name string
	err  error
}

// Model is the Bubble Tea model of the terminal client: the table on top, a
// scrolling log below it and the command prompt at the bottom.
type Model struct {
	ctx      context.Context
	exec     Executor
	renderer *client.Renderer
	logger   *log.Logger
	timeout  time.Duration

	logViewport viewport.Model
	input       textinput.Model

	table   string
	gameLog []string
	startup []client.Command

	width    int
	height   int
	quitting bool
	lost     bool
}

// NewModel creates the model. Commands run with ctx and give up after
// timeout.
func NewModel(ctx context.Context, exec Executor, renderer *client.Renderer, logger *log.Logger, timeout time.Duration) *Model {
	// sized properly once the first WindowSizeMsg arrives
	vp := viewport.New(10, 5)
	vp.SetContent("")

	ti := textinput.New()
	ti.Placeholder = idlePlaceholder
	ti.Focus()
	ti.CharLimit = 100
	ti.Width = 60
	ti.Prompt = "> "
	ti.PromptStyle = PromptStyle
	ti.TextStyle = InputTextStyle

	return &Model{
		ctx:         ctx,
		exec:        exec,
		renderer:    renderer,
		logger:      logger.WithPrefix("tui"),
		timeout:     timeout,
		logViewport: vp,
		input:       ti,
	}
}

// Queue schedules cmd to run as soon as the program starts.
func (m *Model) Queue(cmd client.Command) {
	m.startup = append(m.startup, cmd)
}

// Lost reports whether the program ended because the connection dropped.
func (m *Model) Lost() bool { return m.lost }

// Init starts the cursor blinking and runs the queued commands.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink}
	for _, cmd := range m.startup {
		cmds = append(cmds, m.execute(cmd))
	}
	m.startup = nil
	return tea.Batch(cmds...)
}

// Update handles keys, server pushes and command results.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "enter":
			cmd := m.submit(m.input.Value())
			m.input.Reset()
			return m, cmd
		case "pgup":
			m.logViewport.HalfPageUp()
			return m, nil
		case "pgdown":
			m.logViewport.HalfPageDown()
			return m, nil
		}

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.logViewport, cmd = m.logViewport.Update(msg)
		return m, cmd

	case StateMsg:
		m.table = strings.TrimRight(m.renderer.Snapshot(msg.Snapshot), "\n")
		m.input.Placeholder = idlePlaceholder
		for _, p := range msg.Snapshot.Players {
			if p.IsMyTurn {
				m.input.Placeholder = turnPlaceholder
			}
		}
		m.resize()
		return m, nil

	case NoticeMsg:
		m.AddLogEntry(m.renderer.Toast(msg.Text))
		return m, nil

	case ErrorMsg:
		m.AddLogEntry(m.renderer.Error(msg.Text))
		return m, nil

	case commandResultMsg:
		if msg.err != nil {
			m.logger.Debug("Command failed", "command", msg.name, "error", msg.err)
			m.AddLogEntry(m.renderer.Error(errorText(msg.err)))
		}
		return m, nil

	case DisconnectedMsg:
		m.AddLogEntry(m.renderer.Error("Connection to server lost"))
		m.lost = true
		m.quitting = true
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// errorText prefers the localized message of a server rejection.
func errorText(err error) string {
	var serverErr *client.ServerError
	if errors.As(err, &serverErr) {
		return serverErr.Message
	}
	return err.Error()
}

// submit handles one line typed at the prompt.
func (m *Model) submit(line string) tea.Cmd {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}
	m.AddLogEntry(EchoStyle.Render("> " + line))

	cmd, err := client.ParseCommand(line)
	if err != nil {
		m.AddLogEntry(m.renderer.Error(err.Error()))
		return nil
	}

	switch cmd.Name {
	case "quit":
		m.quitting = true
		return tea.Quit
	case "help":
		for _, l := range strings.Split(client.Help(), "\n") {
			m.AddLogEntry(l)
		}
		return nil
	}
	return m.execute(cmd)
}

// execute runs cmd off the event loop; the result comes back as a message.
func (m *Model) execute(cmd client.Command) tea.Cmd {
	ctx, exec, timeout := m.ctx, m.exec, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		return commandResultMsg{name: cmd.Name, err: exec.Execute(ctx, cmd)}
	}
}

// AddLogEntry appends a line to the log and scrolls to it.
func (m *Model) AddLogEntry(entry string) {
	m.gameLog = append(m.gameLog, entry)
	m.logViewport.SetContent(strings.Join(m.gameLog, "\n"))
	if m.logViewport.Height > 0 && m.logViewport.Width > 0 {
		m.logViewport.GotoBottom()
	}
}

// resize fits the log between the table and the prompt.
func (m *Model) resize() {
	if m.width == 0 || m.height == 0 {
		return
	}
	// borders of both panes plus the prompt and key help lines
	logHeight := m.height - lipgloss.Height(m.table) - 6
	if m.table == "" {
		logHeight = m.height - 6
	}
	m.logViewport.Width = max(m.width-2, 1)
	m.logViewport.Height = max(logHeight, 1)
	m.input.Width = max(m.width-6, 1)
	m.logViewport.GotoBottom()
}

// View renders the table, the log and the prompt.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	logPane := LogPaneStyle.Width(m.width - 2).Render(m.logViewport.View())
	inputPane := InputPaneStyle.Width(m.width - 2).Render(m.input.View() + "\n" + HelpStyle.Render(keyHelp))

	if m.table == "" {
		return lipgloss.JoinVertical(lipgloss.Left, logPane, inputPane)
	}
	return lipgloss.JoinVertical(lipgloss.Left, m.table, logPane, inputPane)
}
