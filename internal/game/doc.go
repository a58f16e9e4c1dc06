// Package game implements the rules of Schwimmen ("31") for a single room.
//
// The main type is Game, a state machine that moves through
//
//	waiting -> playing -> finished -> playing (next round) | game_over
//
// Players exchange cards with a three-card center pile, trying to collect the
// highest single-suit total. A hand worth 31 ends the round at once; otherwise
// a player knocks and every other player gets one last turn. The lowest hand
// pays a coin into the pot, and a player who cannot pay is out.
//
// # Basic Usage
//
//	g := game.New("ABC123")
//	_ = g.AddPlayer(connA, "Anna", "p-anna")
//	_ = g.AddPlayer(connB, "Ben", "p-ben")
//	if err := g.Start(); err != nil { ... }
//
//	if err := g.DrawFromCenter("p-anna", 0); err == nil {
//	    _ = g.DiscardToCenter("p-anna", 3)
//	}
//	if g.IsExchangeComplete() {
//	    g.NextTurn()
//	}
//
// # Deterministic Testing
//
// Decks are shuffled with the *rand.Rand given via WithRand:
//
//	g := game.New("T", game.WithRand(randutil.New(42)))
//
// # Errors
//
// Every rejected call returns an *Error carrying a Code and leaves the game
// untouched, so a client may safely retry. Codes fall into three kinds:
// validation, conflict and not found.
//
// # Concurrency
//
// Game is not safe for concurrent use. The lobby package runs one goroutine
// per room and routes every call for that room through it.
package game
