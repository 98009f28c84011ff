package domain

import (
	"fmt"
	"strings"
)

// Rank orders cards within a suit. Two is the lowest, Ace the highest.
type Rank int

const (
	Two Rank = iota + 2
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
	Ace
)

// Suit is one of the four French suits.
type Suit int

const (
	Hearts Suit = iota
	Diamonds
	Clubs
	Spades
)

// AllRanks lists ranks in ascending order.
var AllRanks = []Rank{Two, Three, Four, Five, Six, Seven, Eight, Nine, Ten, Jack, Queen, King, Ace}

// AllSuits lists suits in canonical order.
var AllSuits = []Suit{Hearts, Diamonds, Clubs, Spades}

const cardSeparator = " of "

var rankLabels = map[Rank]string{
	Two: "2", Three: "3", Four: "4", Five: "5", Six: "6", Seven: "7", Eight: "8",
	Nine: "9", Ten: "10", Jack: "Jack", Queen: "Queen", King: "King", Ace: "Ace",
}

var suitGlyphs = map[Suit]string{
	Hearts:   "♡",
	Diamonds: "♢",
	Clubs:    "♣",
	Spades:   "♠",
}

var (
	ranksByLabel = func() map[string]Rank {
		m := make(map[string]Rank, len(rankLabels))
		for r, label := range rankLabels {
			m[label] = r
		}
		return m
	}()
	suitsByGlyph = map[string]Suit{
		"♡": Hearts, "♥": Hearts,
		"♢": Diamonds, "♦": Diamonds,
		"♣": Clubs,
		"♠": Spades,
	}
)

// String returns the rank label ("2".."10", "Jack", "Queen", "King", "Ace").
func (r Rank) String() string {
	if label, ok := rankLabels[r]; ok {
		return label
	}
	return fmt.Sprintf("Rank(%d)", int(r))
}

// Valid reports whether r is one of the 13 ranks.
func (r Rank) Valid() bool {
	return r >= Two && r <= Ace
}

// String returns the suit glyph.
func (s Suit) String() string {
	if glyph, ok := suitGlyphs[s]; ok {
		return glyph
	}
	return fmt.Sprintf("Suit(%d)", int(s))
}

// Valid reports whether s is one of the four suits.
func (s Suit) Valid() bool {
	return s >= Hearts && s <= Spades
}

// Card is an immutable playing card. Cards compare equal by rank and suit.
type Card struct {
	Rank Rank
	Suit Suit
}

// String returns the canonical wire form, e.g. "7 of ♡".
func (c Card) String() string {
	return c.Rank.String() + cardSeparator + c.Suit.String()
}

// ParseCard parses the canonical "<Rank> of <Suit>" form.
// A missing separator yields ErrInvalidCardFormat; an unknown rank or suit yields ErrInvalidCard.
func ParseCard(s string) (Card, error) {
	rankPart, suitPart, ok := strings.Cut(s, cardSeparator)
	if !ok {
		return Card{}, fmt.Errorf("%w: %q", ErrInvalidCardFormat, s)
	}
	rank, ok := ranksByLabel[strings.TrimSpace(rankPart)]
	if !ok {
		return Card{}, fmt.Errorf("%w: unknown rank %q", ErrInvalidCard, rankPart)
	}
	suit, ok := suitsByGlyph[strings.TrimSpace(suitPart)]
	if !ok {
		return Card{}, fmt.Errorf("%w: unknown suit %q", ErrInvalidCard, suitPart)
	}
	return Card{Rank: rank, Suit: suit}, nil
}

// Beats reports whether cover beats attacked under the given trump suit:
// a higher card of the same suit, or any trump over a non-trump.
func Beats(cover, attacked Card, trump Suit) bool {
	if cover.Suit == attacked.Suit {
		return cover.Rank > attacked.Rank
	}
	return cover.Suit == trump
}

// CardStrings converts cards to their wire form.
func CardStrings(cards []Card) []string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.String()
	}
	return out
}
