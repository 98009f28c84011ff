package brain

import (
	"durak/internal/domain"
)

// OpponentProfile tracks what a specific player has revealed.
type OpponentProfile struct {
	ID string
	// Known holds cards the player picked up and has not played since.
	Known  map[domain.Card]bool
	Takes  int
	Plays  int
	Passes int
}

// NewOpponentProfile initializes a profile for a player id.
func NewOpponentProfile(id string) *OpponentProfile {
	return &OpponentProfile{
		ID:    id,
		Known: make(map[domain.Card]bool),
	}
}

// RecordTake logs that the player picked up the table.
func (p *OpponentProfile) RecordTake(cards []domain.Card) {
	p.Takes++
	for _, c := range cards {
		p.Known[c] = true
	}
}

// RecordPlay logs cards the player put on the table.
func (p *OpponentProfile) RecordPlay(cards []domain.Card) {
	p.Plays += len(cards)
	for _, c := range cards {
		delete(p.Known, c)
	}
}

// CanCover reports whether a card known to be in the player's hand beats attack.
// A false result is not proof: unseen cards may still cover.
func (p *OpponentProfile) CanCover(attack domain.Card, trump domain.Suit) bool {
	for c := range p.Known {
		if domain.Beats(c, attack, trump) {
			return true
		}
	}
	return false
}
