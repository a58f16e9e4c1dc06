package game

import (
	"math/rand/v2"
	"slices"

	"github.com/gnpanschur/Schwimmen/internal/deck"
	"github.com/gnpanschur/Schwimmen/internal/evaluator"
	"github.com/gnpanschur/Schwimmen/internal/randutil"
)

// Status is the lifecycle state of a room's game.
type Status string

const (
	StatusWaiting  Status = "waiting"
	StatusPlaying  Status = "playing"
	StatusFinished Status = "finished"
	StatusGameOver Status = "game_over"
)

// Table limits.
const (
	MaxPlayers = 4
	MinPlayers = 2
	HandSize   = 3
)

// Game is the state machine of one room. It is not safe for concurrent use;
// the owning room serializes every call.
type Game struct {
	roomID  string
	players []*Player
	deck    *deck.Deck
	center  []deck.Card
	rng     *rand.Rand

	turnIndex           int
	status              Status
	knockedBy           PlayerID
	turnsLeftAfterKnock int
	pot                 int
	roundStarter        int
	endedByThirtyOne    bool
}

// Option configures a Game.
type Option func(*Game)

// WithRand sets the source used to shuffle every new deck.
func WithRand(rng *rand.Rand) Option {
	return func(g *Game) {
		g.rng = rng
	}
}

// New creates a game in the waiting state.
func New(roomID string, opts ...Option) *Game {
	g := &Game{
		roomID: roomID,
		status: StatusWaiting,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.rng == nil {
		g.rng = randutil.NewRandom()
	}
	return g
}

// AddPlayer seats a new player. Only allowed while waiting with a free seat.
func (g *Game) AddPlayer(connID, name string, id PlayerID) error {
	if g.status != StatusWaiting {
		return NewError(CodeGameAlreadyStarted, "room %s is %s", g.roomID, g.status)
	}
	if len(g.players) >= MaxPlayers {
		return NewError(CodeRoomFull, "room %s has %d players", g.roomID, len(g.players))
	}
	if g.find(id) != nil {
		return NewError(CodePlayerAlreadySeated, "player %s", id)
	}
	g.players = append(g.players, newPlayer(connID, name, id))
	return nil
}

// RemovePlayer removes a player from the room. Seats are fixed while a
// round is being played; a departure has to wait for the showdown.
func (g *Game) RemovePlayer(id PlayerID) error {
	idx := g.indexOf(id)
	if idx < 0 {
		return NewError(CodePlayerNotFound, "player %s", id)
	}
	if g.status == StatusPlaying {
		return NewError(CodeWrongStatus, "cannot leave room %s while a round is in progress", g.roomID)
	}
	g.players = slices.Delete(g.players, idx, idx+1)

	if g.turnIndex >= len(g.players) {
		g.turnIndex = 0
	}
	if g.roundStarter >= len(g.players) {
		g.roundStarter = 0
	}
	return nil
}

// RebindConnection points a seated player at a new connection handle.
func (g *Game) RebindConnection(id PlayerID, connID string) error {
	p := g.find(id)
	if p == nil {
		return NewError(CodePlayerNotFound, "player %s", id)
	}
	p.ConnID = connID
	return nil
}

// Start begins a new game: every player gets fresh coins and a new hand.
func (g *Game) Start() error {
	if g.status == StatusPlaying {
		return NewError(CodeWrongStatus, "round already in progress")
	}
	if len(g.players) < MinPlayers {
		return NewError(CodeNotEnoughPlayers, "need %d players, have %d", MinPlayers, len(g.players))
	}

	g.turnIndex = 0
	g.roundStarter = 0
	g.pot = 0
	for _, p := range g.players {
		p.Coins = StartingCoins
		p.IsOut = false
		p.Score = 0
	}
	g.deal()
	return nil
}

// StartNextRound deals the next round after a finished one. The round
// starter moves to the next seat still in the game.
func (g *Game) StartNextRound() error {
	if g.status != StatusFinished {
		return NewError(CodeWrongStatus, "cannot start next round while %s", g.status)
	}
	if g.survivors() <= 1 {
		return NewError(CodeNotEnoughPlayers, "only %d players left in the game", g.survivors())
	}

	start := g.roundStarter
	for {
		g.roundStarter = (g.roundStarter + 1) % len(g.players)
		if !g.players[g.roundStarter].IsOut || g.roundStarter == start {
			break
		}
	}
	g.turnIndex = g.roundStarter
	g.deal()
	return nil
}

// deal resets per-round state, hands out cards from a fresh deck and checks
// for a dealt 31.
func (g *Game) deal() {
	g.status = StatusPlaying
	g.deck = deck.New(g.rng)
	g.knockedBy = ""
	g.turnsLeftAfterKnock = 0
	g.endedByThirtyOne = false

	// 32 cards always cover 4 hands plus the center, so draws cannot fail
	g.center, _ = g.deck.DrawN(HandSize)
	for _, p := range g.players {
		p.HasKnocked = false
		p.LostLifeThisRound = false
		if p.IsOut {
			p.Hand = []deck.Card{}
			continue
		}
		p.Hand, _ = g.deck.DrawN(HandSize)
	}

	g.checkThirtyOne()
}

// actor validates that id may act now and returns the player.
func (g *Game) actor(id PlayerID) (*Player, error) {
	if g.status != StatusPlaying {
		return nil, NewError(CodeWrongStatus, "game is %s", g.status)
	}
	p := g.find(id)
	if p == nil {
		return nil, NewError(CodePlayerNotFound, "player %s", id)
	}
	if p.IsOut {
		return nil, NewError(CodePlayerOut, "player %s is out", id)
	}
	if g.players[g.turnIndex] != p {
		return nil, NewError(CodeNotYourTurn, "it is %s's turn", g.players[g.turnIndex].Name)
	}
	return p, nil
}

// DrawFromCenter moves center card centerIndex into the acting player's hand.
func (g *Game) DrawFromCenter(id PlayerID, centerIndex int) error {
	p, err := g.actor(id)
	if err != nil {
		return err
	}
	if len(p.Hand) > HandSize {
		return NewError(CodeHandFull, "hand already holds %d cards", len(p.Hand))
	}
	if centerIndex < 0 || centerIndex >= len(g.center) {
		return NewError(CodeInvalidIndex, "center index %d out of range [0,%d)", centerIndex, len(g.center))
	}

	card := g.center[centerIndex]
	g.center = slices.Delete(g.center, centerIndex, centerIndex+1)
	p.Hand = append(p.Hand, card)

	g.checkThirtyOne()
	return nil
}

// DiscardToCenter moves hand card handIndex to the end of the center pile.
func (g *Game) DiscardToCenter(id PlayerID, handIndex int) error {
	p, err := g.actor(id)
	if err != nil {
		return err
	}
	if len(g.center) > HandSize {
		return NewError(CodeCenterFull, "center already holds %d cards", len(g.center))
	}
	if handIndex < 0 || handIndex >= len(p.Hand) {
		return NewError(CodeInvalidIndex, "hand index %d out of range [0,%d)", handIndex, len(p.Hand))
	}

	card := p.Hand[handIndex]
	p.Hand = slices.Delete(p.Hand, handIndex, handIndex+1)
	g.center = append(g.center, card)

	g.checkThirtyOne()
	return nil
}

// SwapAll exchanges the acting player's whole hand with the center pile.
// The hand must hold three cards of three different suits.
func (g *Game) SwapAll(id PlayerID) error {
	p, err := g.actor(id)
	if err != nil {
		return err
	}
	if !evaluator.HasDistinctSuits(p.Hand) {
		return NewError(CodeSwapNotAllowed, "hand %v needs three cards of different suits", p.Hand)
	}
	if len(g.center) != HandSize {
		return NewError(CodeSwapNotAllowed, "center holds %d cards", len(g.center))
	}

	p.Hand, g.center = g.center, p.Hand

	g.checkThirtyOne()
	return nil
}

// Pass ends the acting player's turn without a further exchange. Any
// exchange already started must be completed first.
func (g *Game) Pass(id PlayerID) error {
	p, err := g.actor(id)
	if err != nil {
		return err
	}
	if len(p.Hand) != HandSize || len(g.center) != HandSize {
		return NewError(CodeHandNotComplete, "hand holds %d cards", len(p.Hand))
	}
	return nil
}

// Knock declares the last lap: every other player gets one more turn.
func (g *Game) Knock(id PlayerID) error {
	p, err := g.actor(id)
	if err != nil {
		return err
	}
	if g.knockedBy != "" {
		return NewError(CodeAlreadyKnocked, "%s already knocked", g.knockedBy)
	}
	if len(p.Hand) != HandSize {
		return NewError(CodeHandNotComplete, "hand holds %d cards", len(p.Hand))
	}

	g.knockedBy = p.ID
	p.HasKnocked = true
	g.turnsLeftAfterKnock = len(g.players) - 1
	return nil
}

// IsExchangeComplete reports whether the current player is back to three
// cards with three in the center, i.e. the turn may advance.
func (g *Game) IsExchangeComplete() bool {
	if g.status != StatusPlaying || len(g.players) == 0 {
		return false
	}
	return len(g.players[g.turnIndex].Hand) == HandSize && len(g.center) == HandSize
}

// NextTurn passes the turn to the next player still in the game. Coming back
// round to the knocker ends the round. It reports whether the round ended.
func (g *Game) NextTurn() bool {
	if g.status != StatusPlaying {
		return g.status == StatusFinished || g.status == StatusGameOver
	}

	start := g.turnIndex
	if g.knockedBy != "" && g.players[start].ID != g.knockedBy && g.turnsLeftAfterKnock > 0 {
		g.turnsLeftAfterKnock--
	}
	for {
		g.turnIndex = (g.turnIndex + 1) % len(g.players)
		if !g.players[g.turnIndex].IsOut || g.turnIndex == start {
			break
		}
	}

	if g.knockedBy != "" {
		if g.players[g.turnIndex].ID == g.knockedBy {
			g.finish()
			return true
		}
	}
	return false
}

// checkThirtyOne ends the round as soon as any complete hand scores 31.
func (g *Game) checkThirtyOne() bool {
	if g.status != StatusPlaying {
		return false
	}
	for _, p := range g.players {
		if p.IsOut || len(p.Hand) != HandSize {
			continue
		}
		if evaluator.Score(p.Hand) == evaluator.Max {
			g.endedByThirtyOne = true
			g.finish()
			return true
		}
	}
	return false
}

// finish scores the round. Everyone tied for the lowest score pays one coin
// into the pot; a player below zero coins is out. The last survivor takes
// the pot.
func (g *Game) finish() {
	g.status = StatusFinished

	lowest := 0.0
	first := true
	for _, p := range g.players {
		if p.IsOut {
			continue
		}
		p.Score = evaluator.Score(p.Hand)
		if first || p.Score < lowest {
			lowest = p.Score
			first = false
		}
	}

	for _, p := range g.players {
		if p.IsOut {
			continue
		}
		p.LostLifeThisRound = p.Score == lowest
		if !p.LostLifeThisRound {
			continue
		}
		p.Coins--
		g.pot++
		if p.Coins < 0 {
			p.IsOut = true
		}
	}

	if n := g.survivors(); n <= 1 {
		g.status = StatusGameOver
		if n == 1 {
			for _, p := range g.players {
				if !p.IsOut {
					p.Coins += g.pot
					g.pot = 0
				}
			}
		}
	}

	// seat indices are kept as numbers, so the next round starter is picked
	// relative to the new order
	slices.SortStableFunc(g.players, func(a, b *Player) int {
		if a.IsOut != b.IsOut {
			if a.IsOut {
				return 1
			}
			return -1
		}
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		}
		return 0
	})
}

func (g *Game) survivors() int {
	n := 0
	for _, p := range g.players {
		if !p.IsOut {
			n++
		}
	}
	return n
}

func (g *Game) find(id PlayerID) *Player {
	if i := g.indexOf(id); i >= 0 {
		return g.players[i]
	}
	return nil
}

func (g *Game) indexOf(id PlayerID) int {
	return slices.IndexFunc(g.players, func(p *Player) bool { return p.ID == id })
}
