package client

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/gnpanschur/Schwimmen/internal/deck"
	"github.com/gnpanschur/Schwimmen/internal/game"
)

// palette holds the colours of one theme.
type palette struct {
	header, headerBg string
	red, black       string
	highlight        string
	muted            string
	success, err     string
}

var themes = map[string]palette{
	"default": {
		header: "#FAFAFA", headerBg: "#7D56F4",
		red: "#FF6B6B", black: "#FAFAFA",
		highlight: "#FFD700", muted: "#626262",
		success: "#96CEB4", err: "#FF6B6B",
	},
	"dark": {
		header: "#FAFAFA", headerBg: "#2E3440",
		red: "#BF616A", black: "#ECEFF4",
		highlight: "#EBCB8B", muted: "#4C566A",
		success: "#A3BE8C", err: "#BF616A",
	},
	"light": {
		header: "#000000", headerBg: "#E5E9F0",
		red: "#C0392B", black: "#000000",
		highlight: "#B7950B", muted: "#95A5A6",
		success: "#1E8449", err: "#C0392B",
	},
}

// Renderer draws room state as styled text.
type Renderer struct {
	header    lipgloss.Style
	redCard   lipgloss.Style
	blackCard lipgloss.Style
	current   lipgloss.Style
	muted     lipgloss.Style
	success   lipgloss.Style
	errStyle  lipgloss.Style
	table     lipgloss.Style
}

// NewRenderer creates a renderer for w. Colours are dropped when w is not a
// terminal. Unknown themes fall back to the default theme.
func NewRenderer(w io.Writer, theme string) *Renderer {
	p, ok := themes[theme]
	if !ok {
		p = themes["default"]
	}
	r := lipgloss.NewRenderer(w)

	return &Renderer{
		header: r.NewStyle().
			Foreground(lipgloss.Color(p.header)).
			Background(lipgloss.Color(p.headerBg)).
			Bold(true).
			Padding(0, 1),
		redCard:   r.NewStyle().Foreground(lipgloss.Color(p.red)).Bold(true),
		blackCard: r.NewStyle().Foreground(lipgloss.Color(p.black)).Bold(true),
		current:   r.NewStyle().Foreground(lipgloss.Color(p.highlight)).Bold(true),
		muted:     r.NewStyle().Foreground(lipgloss.Color(p.muted)),
		success:   r.NewStyle().Foreground(lipgloss.Color(p.success)).Bold(true),
		errStyle:  r.NewStyle().Foreground(lipgloss.Color(p.err)).Bold(true),
		table: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(p.muted)).
			Padding(0, 1),
	}
}

// Card renders one card, e.g. "K♥".
func (r *Renderer) Card(c deck.Card) string {
	if c.Suit.IsRed() {
		return r.redCard.Render(c.String())
	}
	return r.blackCard.Render(c.String())
}

// Cards renders cards with their position, e.g. "1:7♣ 2:K♥". Positions are
// one-based, the way the draw and discard commands take them.
func (r *Renderer) Cards(cards []deck.Card) string {
	parts := make([]string, len(cards))
	for i, c := range cards {
		parts[i] = fmt.Sprintf("%d:%s", i+1, r.Card(c))
	}
	return strings.Join(parts, " ")
}

// hidden renders the backs of n cards.
func (r *Renderer) hidden(n int) string {
	return r.muted.Render(strings.TrimSpace(strings.Repeat("## ", n)))
}

// coins renders the remaining lives, e.g. "●●○".
func coins(n int) string {
	if n < 0 {
		n = 0
	}
	lost := game.StartingCoins - n
	if lost < 0 {
		lost = 0
	}
	return strings.Repeat("●", n) + strings.Repeat("○", lost)
}

// Snapshot renders the table as seen in snap.
func (r *Renderer) Snapshot(snap game.Snapshot) string {
	var b strings.Builder

	b.WriteString(r.header.Render(fmt.Sprintf("Room %s  %s  pot %d  deck %d", snap.RoomID, snap.Status, snap.Pot, snap.DeckCount)))
	b.WriteString("\n")

	if len(snap.CenterCards) > 0 {
		b.WriteString("Center: " + r.Cards(snap.CenterCards) + "\n")
	}

	var rows []string
	var me *game.PlayerView
	for i := range snap.Players {
		p := &snap.Players[i]
		if p.Hand != nil && me == nil && !isShowdown(snap) {
			me = p
		}
		rows = append(rows, r.playerRow(p))
	}
	b.WriteString(r.table.Render(strings.Join(rows, "\n")))
	b.WriteString("\n")

	if line := r.statusLine(snap, me); line != "" {
		b.WriteString(line + "\n")
	}
	return b.String()
}

func isShowdown(snap game.Snapshot) bool {
	return snap.Status == game.StatusFinished || snap.Status == game.StatusGameOver
}

func (r *Renderer) playerRow(p *game.PlayerView) string {
	marker := "  "
	if p.IsCurrentTurn {
		marker = r.current.Render("▶ ")
	}

	hand := r.hidden(p.CardCount)
	if p.Hand != nil {
		hand = r.Cards(p.Hand)
	}

	var notes []string
	if p.HasKnocked {
		notes = append(notes, "knocked")
	}
	if p.Score != nil {
		notes = append(notes, fmt.Sprintf("%g points", *p.Score))
	}
	if p.LostLifeThisRound {
		notes = append(notes, "lost a life")
	}

	name := p.Name
	if p.IsOut {
		name = r.muted.Render(name + " (out)")
	}

	row := fmt.Sprintf("%s%-12s %s  %s", marker, name, coins(p.Coins), hand)
	if len(notes) > 0 {
		row += "  " + r.muted.Render(strings.Join(notes, ", "))
	}
	return row
}

// statusLine tells the viewer what they can do next.
func (r *Renderer) statusLine(snap game.Snapshot, me *game.PlayerView) string {
	switch snap.Status {
	case game.StatusWaiting:
		return r.muted.Render(fmt.Sprintf("Waiting for players (%d/%d). Type start to deal.", len(snap.Players), game.MaxPlayers))
	case game.StatusFinished:
		if snap.EndedByThirtyOne {
			return r.success.Render("Round over with a 31! Type next to deal again.")
		}
		return r.success.Render("Round over. Type next to deal again.")
	case game.StatusGameOver:
		for _, p := range snap.Players {
			if !p.IsOut {
				return r.success.Render(fmt.Sprintf("Game over, %s wins with %d coins. Type start for a new game.", p.Name, p.Coins))
			}
		}
		return r.success.Render("Game over.")
	}

	if me == nil || !me.IsMyTurn {
		return ""
	}
	var hint []string
	switch {
	case me.IsHoldingFour:
		hint = append(hint, "discard <n>")
	case me.CardCount < game.HandSize:
		hint = append(hint, "draw <n>")
	default:
		hint = append(hint, "draw <n>", "discard <n>")
		if me.CanSwapAll && len(snap.CenterCards) == game.HandSize {
			hint = append(hint, "swap")
		}
		hint = append(hint, "pass")
		if snap.KnockedPlayerID == nil {
			hint = append(hint, "knock")
		}
	}
	return r.current.Render("Your turn: " + strings.Join(hint, " | "))
}

// Toast renders a notification.
func (r *Renderer) Toast(message string) string {
	return r.success.Render("» " + message)
}

// Error renders an error reply.
func (r *Renderer) Error(message string) string {
	return r.errStyle.Render("✗ " + message)
}
