package evaluator

// Schwimmen hand scoring. Higher is better; the round loser is whoever
// holds the lowest score.

import (
	"github.com/gnpanschur/Schwimmen/internal/deck"
)

const (
	// Max is the best possible hand: A + two ten-valued cards of one suit.
	Max = 31
	// ThreeOfAKind is the fixed score of three cards sharing one face.
	ThreeOfAKind = 30.5
)

// Score returns the best single-suit sum in hand, or 30.5 when the hand is
// exactly three cards of the same face. An empty hand scores 0.
func Score(hand []deck.Card) float64 {
	if len(hand) == 0 {
		return 0
	}
	if IsThreeOfAKind(hand) {
		return ThreeOfAKind
	}

	var sums [len(deck.Suits)]int
	for _, c := range hand {
		sums[c.Suit] += c.Value()
	}
	best := 0
	for _, s := range sums {
		best = max(best, s)
	}
	return float64(best)
}

// IsThreeOfAKind reports whether hand is exactly three cards of one face.
func IsThreeOfAKind(hand []deck.Card) bool {
	return len(hand) == 3 && hand[0].Face == hand[1].Face && hand[1].Face == hand[2].Face
}

// HasDistinctSuits reports whether hand is exactly three cards of three
// different suits, the precondition for swapping a whole hand.
func HasDistinctSuits(hand []deck.Card) bool {
	if len(hand) != 3 {
		return false
	}
	return hand[0].Suit != hand[1].Suit && hand[0].Suit != hand[2].Suit && hand[1].Suit != hand[2].Suit
}
