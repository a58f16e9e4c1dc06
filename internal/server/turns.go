package server

import (
	"github.com/gnpanschur/Schwimmen/internal/evaluator"
	"github.com/gnpanschur/Schwimmen/internal/game"
	"github.com/gnpanschur/Schwimmen/internal/i18n"
)

// applyAction runs one game action for player id and advances the turn.
// Draw and discard end the turn only once the exchange is complete; swap-all,
// pass and knock always end it. It returns the notices for the room.
func applyAction(g *game.Game, id game.PlayerID, action Action) ([]event, error) {
	actor, _ := g.Player(id)
	wasPlaying := g.Status() == game.StatusPlaying
	started := false

	var events []event
	switch a := action.(type) {
	case *StartGame:
		if err := g.Start(); err != nil {
			return nil, err
		}
		started = true

	case *StartNextRound:
		if err := g.StartNextRound(); err != nil {
			return nil, err
		}
		started = true

	case *DrawFromCenter:
		if err := g.DrawFromCenter(id, *a.CenterIndex); err != nil {
			return nil, err
		}
		advanceIfComplete(g)

	case *DiscardToCenter:
		if err := g.DiscardToCenter(id, *a.HandIndex); err != nil {
			return nil, err
		}
		advanceIfComplete(g)

	case *SwapAll:
		if err := g.SwapAll(id); err != nil {
			return nil, err
		}
		events = append(events, toast(i18n.ToastSwapAll, actor.Name))
		g.NextTurn()

	case *Pass:
		if err := g.Pass(id); err != nil {
			return nil, err
		}
		g.NextTurn()

	case *Knock:
		if err := g.Knock(id); err != nil {
			return nil, err
		}
		events = append(events, toast(i18n.ToastKnock, actor.Name))
		g.NextTurn()

	default:
		return nil, game.NewError(game.CodeInvalidAction, "%s is not a game action", action.Type())
	}

	if g.RoundOver() && (wasPlaying || started) {
		events = append(events, roundEndEvents(g)...)
	}
	return events, nil
}

func advanceIfComplete(g *game.Game) {
	if g.Status() == game.StatusPlaying && g.IsExchangeComplete() {
		g.NextTurn()
	}
}

// roundEndEvents announces a 31 and the winner of the whole game.
func roundEndEvents(g *game.Game) []event {
	var events []event
	players := g.Players()

	if g.EndedByThirtyOne() {
		for _, p := range players {
			if !p.IsOut && p.Score == evaluator.Max {
				events = append(events, toast(i18n.ToastThirtyOne, p.Name))
				break
			}
		}
	}

	if g.Status() == game.StatusGameOver {
		for _, p := range players {
			if !p.IsOut {
				events = append(events, toast(i18n.ToastGameOver, p.Name))
				break
			}
		}
	}
	return events
}
