package game

import (
	"github.com/gnpanschur/Schwimmen/internal/deck"
	"github.com/gnpanschur/Schwimmen/internal/evaluator"
)

// PlayerView is one seat as seen by a particular viewer.
type PlayerView struct {
	PlayerID          PlayerID    `json:"playerId"`
	Name              string      `json:"name"`
	CardCount         int         `json:"cardCount"`
	Hand              []deck.Card `json:"hand"` // nil unless visible to the viewer
	HasKnocked        bool        `json:"hasKnocked"`
	Score             *float64    `json:"score"`
	IsCurrentTurn     bool        `json:"isCurrentTurn"`
	IsMyTurn          bool        `json:"isMyTurn"`
	IsHoldingFour     bool        `json:"isHoldingFour"`
	CanSwapAll        bool        `json:"canSwapAll"`
	Coins             int         `json:"coins"`
	IsOut             bool        `json:"isOut"`
	LostLifeThisRound bool        `json:"lostLifeThisRound"`
}

// Snapshot is the room state filtered for one recipient.
type Snapshot struct {
	RoomID           string       `json:"roomId"`
	Status           Status       `json:"status"`
	Pot              int          `json:"pot"`
	Players          []PlayerView `json:"players"`
	CenterCards      []deck.Card  `json:"centerCards"`
	DeckCount        int          `json:"deckCount"`
	KnockedPlayerID  *PlayerID    `json:"knockedPlayerId"`
	EndedByThirtyOne bool         `json:"endedByThirtyOne"`
}

// Snapshot builds the state as seen by viewer. Other players' hands are
// reduced to a card count until the round is over, when every hand is shown.
func (g *Game) Snapshot(viewer PlayerID) Snapshot {
	showdown := g.RoundOver()

	players := make([]PlayerView, len(g.players))
	for i, p := range g.players {
		current := g.status == StatusPlaying && i == g.turnIndex
		view := PlayerView{
			PlayerID:          p.ID,
			Name:              p.Name,
			CardCount:         len(p.Hand),
			HasKnocked:        p.HasKnocked,
			IsCurrentTurn:     current,
			IsMyTurn:          current && p.ID == viewer,
			IsHoldingFour:     len(p.Hand) == HandSize+1,
			Coins:             p.Coins,
			IsOut:             p.IsOut,
			LostLifeThisRound: p.LostLifeThisRound,
		}
		if p.ID == viewer || showdown {
			view.Hand = append([]deck.Card{}, p.Hand...)
			view.CanSwapAll = evaluator.HasDistinctSuits(p.Hand)
		}
		if showdown {
			score := p.Score
			view.Score = &score
		}
		players[i] = view
	}

	snap := Snapshot{
		RoomID:           g.roomID,
		Status:           g.status,
		Pot:              g.pot,
		Players:          players,
		CenterCards:      append([]deck.Card{}, g.center...),
		DeckCount:        g.deck.Len(),
		EndedByThirtyOne: g.endedByThirtyOne,
	}
	if g.knockedBy != "" {
		knocked := g.knockedBy
		snap.KnockedPlayerID = &knocked
	}
	return snap
}

// RoomID returns the identifier of the room this game belongs to.
func (g *Game) RoomID() string { return g.roomID }

// Status returns the lifecycle state.
func (g *Game) Status() Status { return g.status }

// RoundOver reports whether the last round has been scored.
func (g *Game) RoundOver() bool {
	return g.status == StatusFinished || g.status == StatusGameOver
}

// Pot returns the coins collected from round losers so far.
func (g *Game) Pot() int { return g.pot }

// KnockedBy returns the player who knocked this round, or "".
func (g *Game) KnockedBy() PlayerID { return g.knockedBy }

// TurnsLeftAfterKnock counts the other players still to act after a knock.
func (g *Game) TurnsLeftAfterKnock() int { return g.turnsLeftAfterKnock }

// EndedByThirtyOne reports whether the last round ended on a 31.
func (g *Game) EndedByThirtyOne() bool { return g.endedByThirtyOne }

// DeckCount returns the number of undealt cards.
func (g *Game) DeckCount() int { return g.deck.Len() }

// TurnIndex returns the seat whose turn it is.
func (g *Game) TurnIndex() int { return g.turnIndex }

// Center returns a copy of the center pile.
func (g *Game) Center() []deck.Card {
	return append([]deck.Card(nil), g.center...)
}

// PlayerCount returns the number of seated players.
func (g *Game) PlayerCount() int { return len(g.players) }

// Players returns copies of the seated players in seat order.
func (g *Game) Players() []Player {
	out := make([]Player, len(g.players))
	for i, p := range g.players {
		out[i] = p.clone()
	}
	return out
}

// Player returns a copy of the player with the given id.
func (g *Game) Player(id PlayerID) (Player, bool) {
	p := g.find(id)
	if p == nil {
		return Player{}, false
	}
	return p.clone(), true
}

// CurrentPlayer returns a copy of the player whose turn it is.
func (g *Game) CurrentPlayer() (Player, bool) {
	if g.status != StatusPlaying || len(g.players) == 0 {
		return Player{}, false
	}
	return g.players[g.turnIndex].clone(), true
}

// CardsInPlay counts the cards held by players still in the game, the
// center pile and the deck. It is deck.Size whenever a round is being played.
func (g *Game) CardsInPlay() int {
	n := len(g.center) + g.deck.Len()
	for _, p := range g.players {
		if !p.IsOut {
			n += len(p.Hand)
		}
	}
	return n
}
