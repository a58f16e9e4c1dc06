package deck

import (
	"errors"
	"math/rand/v2"
)

// Size is the number of cards in a Schwimmen deck (4 suits x 8 faces).
const Size = len(Suits) * len(Faces)

// ErrEmptyDeck is returned when drawing from a deck with too few cards.
var ErrEmptyDeck = errors.New("deck is empty")

// Deck is an ordered pile of cards; the top card is the last element.
type Deck struct {
	cards []Card
}

// Standard returns the 32 cards in suit-then-face order, unshuffled.
func Standard() []Card {
	cards := make([]Card, 0, Size)
	for _, suit := range Suits {
		for _, face := range Faces {
			cards = append(cards, NewCard(suit, face))
		}
	}
	return cards
}

// New builds a fresh 32-card deck shuffled with rng.
func New(rng *rand.Rand) *Deck {
	d := &Deck{cards: Standard()}
	d.shuffle(rng)
	return d
}

// FromCards builds a deck whose top card is the last element of cards.
func FromCards(cards []Card) *Deck {
	return &Deck{cards: append([]Card(nil), cards...)}
}

// shuffle is an in-place Fisher-Yates pass.
func (d *Deck) shuffle(rng *rand.Rand) {
	for i := len(d.cards) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}
}

// Draw removes and returns the top card.
func (d *Deck) Draw() (Card, error) {
	if len(d.cards) == 0 {
		return Card{}, ErrEmptyDeck
	}
	last := len(d.cards) - 1
	card := d.cards[last]
	d.cards = d.cards[:last]
	return card, nil
}

// DrawN draws n cards. The deck is left unchanged if fewer than n remain.
func (d *Deck) DrawN(n int) ([]Card, error) {
	if n > len(d.cards) {
		return nil, ErrEmptyDeck
	}
	cards := make([]Card, 0, n)
	for range n {
		card, _ := d.Draw()
		cards = append(cards, card)
	}
	return cards, nil
}

// Len returns the number of cards left in the deck
func (d *Deck) Len() int {
	if d == nil {
		return 0
	}
	return len(d.cards)
}

// Cards returns a copy of the remaining cards, bottom first.
func (d *Deck) Cards() []Card {
	return append([]Card(nil), d.cards...)
}
