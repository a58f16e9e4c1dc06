package deck

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Suit represents a card suit
type Suit int

const (
	Club Suit = iota
	Diamond
	Heart
	Spade
)

// Suits lists every suit in deck construction order.
var Suits = [...]Suit{Club, Diamond, Heart, Spade}

// String returns the name used on the wire ("Club", "Diamond", ...)
func (s Suit) String() string {
	switch s {
	case Club:
		return "Club"
	case Diamond:
		return "Diamond"
	case Heart:
		return "Heart"
	case Spade:
		return "Spade"
	default:
		return "?"
	}
}

// Symbol returns the unicode pip for the suit
func (s Suit) Symbol() string {
	switch s {
	case Club:
		return "♣"
	case Diamond:
		return "♦"
	case Heart:
		return "♥"
	case Spade:
		return "♠"
	default:
		return "?"
	}
}

// IsRed returns true if the suit is red (Hearts or Diamonds)
func (s Suit) IsRed() bool {
	return s == Heart || s == Diamond
}

// ParseSuit accepts either the wire name or the single-letter form (c, d, h, s).
func ParseSuit(s string) (Suit, error) {
	switch strings.ToLower(s) {
	case "club", "c":
		return Club, nil
	case "diamond", "d":
		return Diamond, nil
	case "heart", "h":
		return Heart, nil
	case "spade", "s":
		return Spade, nil
	}
	return 0, fmt.Errorf("invalid suit %q", s)
}

// Face represents a card face. Only 7 through Ace exist in a 32-card deck.
type Face int

const (
	Seven Face = iota + 7
	Eight
	Nine
	Ten
	Jack
	Queen
	King
	Ace
)

// Faces lists every face in deck construction order.
var Faces = [...]Face{Seven, Eight, Nine, Ten, Jack, Queen, King, Ace}

// String returns the face as printed on the card
func (f Face) String() string {
	switch f {
	case Seven:
		return "7"
	case Eight:
		return "8"
	case Nine:
		return "9"
	case Ten:
		return "10"
	case Jack:
		return "J"
	case Queen:
		return "Q"
	case King:
		return "K"
	case Ace:
		return "A"
	default:
		return "?"
	}
}

// Value returns the points a card of this face contributes to a suit sum.
func (f Face) Value() int {
	switch {
	case f >= Seven && f <= Ten:
		return int(f)
	case f >= Jack && f <= King:
		return 10
	case f == Ace:
		return 11
	default:
		return 0
	}
}

// ParseFace accepts "7".."10", "T" for ten, and J/Q/K/A in either case.
func ParseFace(s string) (Face, error) {
	switch strings.ToUpper(s) {
	case "7":
		return Seven, nil
	case "8":
		return Eight, nil
	case "9":
		return Nine, nil
	case "10", "T":
		return Ten, nil
	case "J":
		return Jack, nil
	case "Q":
		return Queen, nil
	case "K":
		return King, nil
	case "A":
		return Ace, nil
	}
	return 0, fmt.Errorf("invalid face %q", s)
}

// Card represents a playing card
type Card struct {
	Suit Suit
	Face Face
}

// NewCard creates a new card
func NewCard(suit Suit, face Face) Card {
	return Card{Suit: suit, Face: face}
}

// Value returns the card's point value (J/Q/K count 10, Ace 11).
func (c Card) Value() int {
	return c.Face.Value()
}

// String returns the string representation of a card (e.g., "A♠")
func (c Card) String() string {
	return c.Face.String() + c.Suit.Symbol()
}

type cardJSON struct {
	Suit  string `json:"suit"`
	Face  string `json:"face"`
	Value int    `json:"value"`
}

// MarshalJSON encodes the card as {"suit":"Club","face":"7","value":7}.
func (c Card) MarshalJSON() ([]byte, error) {
	return json.Marshal(cardJSON{Suit: c.Suit.String(), Face: c.Face.String(), Value: c.Value()})
}

// UnmarshalJSON decodes the wire form; the value field is derived, not trusted.
func (c *Card) UnmarshalJSON(data []byte) error {
	var raw cardJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	suit, err := ParseSuit(raw.Suit)
	if err != nil {
		return err
	}
	face, err := ParseFace(raw.Face)
	if err != nil {
		return err
	}
	*c = Card{Suit: suit, Face: face}
	return nil
}

// ParseCards parses compact notation such as "AcKcTc" or "7h 8h 9h".
// Each card is a face (7-9, T, J, Q, K, A) followed by a suit letter.
func ParseCards(s string) ([]Card, error) {
	s = strings.ReplaceAll(s, " ", "")
	if len(s)%2 != 0 {
		return nil, fmt.Errorf("card string %q has odd length", s)
	}
	cards := make([]Card, 0, len(s)/2)
	for i := 0; i < len(s); i += 2 {
		face, err := ParseFace(s[i : i+1])
		if err != nil {
			return nil, err
		}
		suit, err := ParseSuit(s[i+1 : i+2])
		if err != nil {
			return nil, err
		}
		cards = append(cards, NewCard(suit, face))
	}
	return cards, nil
}

// MustParseCards is ParseCards for tests and fixtures; it panics on bad input.
func MustParseCards(s string) []Card {
	cards, err := ParseCards(s)
	if err != nil {
		panic(err)
	}
	return cards
}
