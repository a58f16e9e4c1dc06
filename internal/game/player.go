package game

import (
	"github.com/gnpanschur/Schwimmen/internal/deck"
)

// PlayerID is the stable identity of a player. It survives reconnects; the
// connection handle does not.
type PlayerID string

// StartingCoins is the number of lives each player starts a game with.
const StartingCoins = 3

// Player represents a seated player
type Player struct {
	ConnID            string
	Name              string
	ID                PlayerID
	Hand              []deck.Card
	HasKnocked        bool
	Coins             int
	IsOut             bool
	LostLifeThisRound bool
	Score             float64
}

func newPlayer(connID, name string, id PlayerID) *Player {
	return &Player{
		ConnID: connID,
		Name:   name,
		ID:     id,
		Coins:  StartingCoins,
	}
}

// clone returns a deep copy safe to hand out of the owning goroutine.
func (p *Player) clone() Player {
	cp := *p
	cp.Hand = append([]deck.Card(nil), p.Hand...)
	return cp
}
