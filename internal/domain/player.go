package domain

import "fmt"

// HandSize is the number of cards each player is dealt and refilled to.
const HandSize = 6

// Player holds the state of one participant.
type Player struct {
	ID          string
	Seat        int // 0-based turn order
	Hand        []Card
	IsAttacker  bool
	IsDefender  bool
	StartsRound bool // round leader; only they may open the table
	Out         bool // empty hand with an empty stock
}

// HandSize returns the number of cards held.
func (p *Player) HandSize() int {
	return len(p.Hand)
}

// Holds reports whether c is in the hand.
func (p *Player) Holds(c Card) bool {
	return indexOf(p.Hand, c) >= 0
}

// TakeCard removes c from the hand.
func (p *Player) TakeCard(c Card) error {
	i := indexOf(p.Hand, c)
	if i < 0 {
		return fmt.Errorf("%w: %s does not hold %s", ErrCardNotHeld, p.ID, c)
	}
	p.Hand = append(p.Hand[:i], p.Hand[i+1:]...)
	return nil
}

// GiveCard adds c to the hand.
func (p *Player) GiveCard(c Card) {
	if p.Holds(c) {
		return
	}
	p.Hand = append(p.Hand, c)
}

// SortedHand returns a display-ordered copy of the hand.
func (p *Player) SortedHand(trump Suit) []Card {
	out := append([]Card(nil), p.Hand...)
	SortHand(out, trump)
	return out
}

// Active reports whether the player is still in play.
func (p *Player) Active() bool {
	return !p.Out
}

// Deal distributes handSize cards to each player, one card per player per pass.
func Deal(deck *Deck, players []*Player, handSize int) error {
	need := len(players) * handSize
	if need > deck.Len() {
		return fmt.Errorf("%w: need %d, have %d", ErrInsufficientCards, need, deck.Len())
	}
	for i := 0; i < handSize; i++ {
		for _, pl := range players {
			pl.Hand = append(pl.Hand, deck.Draw(1)...)
		}
	}
	return nil
}

func indexOf(cards []Card, c Card) int {
	for i, held := range cards {
		if held == c {
			return i
		}
	}
	return -1
}
