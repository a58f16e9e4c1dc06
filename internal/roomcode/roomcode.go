package roomcode

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Alphabet holds the characters a generated room code is made of.
const Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// DefaultLength is the number of characters in a generated room code.
const DefaultLength = 6

// MaxCustomLength bounds room ids chosen by players, counted in characters.
const MaxCustomLength = 32

// RandSource interface for dependency injection of randomness
type RandSource interface {
	IntN(n int) int
}

// Generator produces room codes of a fixed length
type Generator struct {
	randSource RandSource
	length     int
}

// NewGenerator creates a generator. A nil randSource uses crypto/rand; a
// length below 1 uses DefaultLength.
func NewGenerator(randSource RandSource, length int) *Generator {
	if length < 1 {
		length = DefaultLength
	}
	return &Generator{randSource: randSource, length: length}
}

// Generate returns a code using crypto/rand and the default length.
func Generate() string {
	return NewGenerator(nil, DefaultLength).Generate()
}

// Length returns the number of characters per code.
func (g *Generator) Length() int {
	return g.length
}

// Generate returns a new random code. Uniqueness is the caller's job.
func (g *Generator) Generate() string {
	var b strings.Builder
	b.Grow(g.length)
	for range g.length {
		b.WriteByte(Alphabet[g.intN(len(Alphabet))])
	}
	return b.String()
}

// GenerateUnique draws codes until taken reports one as free. It gives up
// after attempts tries.
func (g *Generator) GenerateUnique(taken func(string) bool, attempts int) (string, error) {
	for range attempts {
		code := g.Generate()
		if !taken(code) {
			return code, nil
		}
	}
	return "", fmt.Errorf("no free room code after %d attempts", attempts)
}

func (g *Generator) intN(n int) int {
	if g.randSource != nil {
		return g.randSource.IntN(n)
	}
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		panic("failed to generate random room code: " + err.Error())
	}
	return int(v.Int64())
}

// Normalize canonicalizes a room id typed by a player: surrounding space is
// trimmed, the text is put in NFC form and letters are upper-cased, so
// "jörg " and "JÖRG" name the same room.
func Normalize(id string) string {
	id = strings.TrimSpace(id)
	if id == "" {
		return ""
	}
	// a Caser keeps state and must not be shared between goroutines
	return cases.Upper(language.Und).String(norm.NFC.String(id))
}

// Validate checks a normalized room id: valid UTF-8 of 1 to MaxCustomLength
// characters, none of them control or format characters. Player names make
// good ids, so letters of any script and inner spaces are allowed.
func Validate(id string) error {
	if id == "" {
		return fmt.Errorf("room id must not be empty")
	}
	if !utf8.ValidString(id) {
		return fmt.Errorf("room id is not valid UTF-8")
	}
	if n := utf8.RuneCountInString(id); n > MaxCustomLength {
		return fmt.Errorf("room id must be at most %d characters, got %d", MaxCustomLength, n)
	}
	for i, char := range id {
		if !unicode.IsGraphic(char) {
			return fmt.Errorf("invalid character %q at position %d", char, i)
		}
	}
	return nil
}
