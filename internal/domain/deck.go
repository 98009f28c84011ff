package domain

import (
	"math/rand"
	"sort"
	"time"
)

// DeckSize is the number of cards in the universe.
const DeckSize = 52

// RandomSource supplies uniform integers in [0, n). *rand.Rand satisfies it.
type RandomSource interface {
	Intn(n int) int
}

// NewDeck returns the 52-card universe in rank-major order.
func NewDeck() []Card {
	deck := make([]Card, 0, DeckSize)
	for _, r := range AllRanks {
		for _, s := range AllSuits {
			deck = append(deck, Card{Rank: r, Suit: s})
		}
	}
	return deck
}

// Shuffle permutes cards in place with Fisher–Yates. A nil src uses a time-seeded generator.
func Shuffle(cards []Card, src RandomSource) {
	if src == nil {
		src = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	for i := len(cards) - 1; i > 0; i-- {
		j := src.Intn(i + 1)
		cards[i], cards[j] = cards[j], cards[i]
	}
}

// SortHand orders cards for display: non-trumps first by suit then rank, trumps last.
func SortHand(cards []Card, trump Suit) {
	sort.Slice(cards, func(i, j int) bool {
		return CardPower(cards[i], trump) < CardPower(cards[j], trump)
	})
}

// CardPower is the display order key: suit-major, trumps after every plain suit.
func CardPower(c Card, trump Suit) int {
	p := int(c.Suit)*16 + int(c.Rank)
	if c.Suit == trump {
		p += 100
	}
	return p
}

// CardValue ranks cards by playing strength: any trump outranks every plain card.
func CardValue(c Card, trump Suit) int {
	v := int(c.Rank)
	if c.Suit == trump {
		v += 100
	}
	return v
}

// Deck is the undealt stock. Cards are drawn from the head.
type Deck struct {
	cards []Card
}

// NewStock wraps an ordered card sequence as a stock.
func NewStock(cards []Card) *Deck {
	return &Deck{cards: append([]Card(nil), cards...)}
}

// Len returns the number of cards left in the stock.
func (d *Deck) Len() int {
	return len(d.cards)
}

// Cards returns a copy of the remaining stock, head first.
func (d *Deck) Cards() []Card {
	return append([]Card(nil), d.cards...)
}

// Peek returns the head card without drawing it.
func (d *Deck) Peek() (Card, bool) {
	if len(d.cards) == 0 {
		return Card{}, false
	}
	return d.cards[0], true
}

// Draw removes up to n cards from the head. Fewer are returned when the stock runs out.
func (d *Deck) Draw(n int) []Card {
	if n <= 0 {
		return nil
	}
	if n > len(d.cards) {
		n = len(d.cards)
	}
	drawn := append([]Card(nil), d.cards[:n]...)
	d.cards = d.cards[n:]
	return drawn
}

// PutBottom appends c to the end of the stock.
func (d *Deck) PutBottom(c Card) {
	d.cards = append(d.cards, c)
}
