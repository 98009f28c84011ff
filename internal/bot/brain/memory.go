package brain

import (
	"durak/internal/domain"
)

// CardStatus represents what the bot knows about a specific card.
type CardStatus int

const (
	StatusUnknown   CardStatus = iota // In the stock or an unseen hand
	StatusMine                        // In the bot's hand
	StatusTable                       // Face up on the table this round
	StatusDiscarded                   // Out of play for the rest of the game
	StatusOpponent                    // Picked up by an opponent in view of everyone
)

// GameMemory stores the bot's private "view" of the game.
type GameMemory struct {
	// DeckStatus tracks all 52 cards. Index = (Rank-2)*4 + Suit.
	DeckStatus [domain.DeckSize]CardStatus
	// Opponents tracks what each opponent is known to hold, by player id.
	Opponents map[string]*OpponentProfile

	seen int
}

// NewMemory initializes a fresh memory state.
func NewMemory() *GameMemory {
	return &GameMemory{
		Opponents: make(map[string]*OpponentProfile),
	}
}

// Reset clears the memory for a new game.
func (m *GameMemory) Reset() {
	for i := range m.DeckStatus {
		m.DeckStatus[i] = StatusUnknown
	}
	m.Opponents = make(map[string]*OpponentProfile)
	m.seen = 0
}

// MarkMine records the cards currently in the bot's hand.
func (m *GameMemory) MarkMine(cards []domain.Card) {
	m.mark(cards, StatusMine)
}

// MarkDiscarded records cards that left play.
func (m *GameMemory) MarkDiscarded(cards []domain.Card) {
	m.mark(cards, StatusDiscarded)
}

// MarkOpponent records cards an opponent picked up.
func (m *GameMemory) MarkOpponent(opponentID string, cards []domain.Card) {
	m.mark(cards, StatusOpponent)
	m.profile(opponentID).RecordTake(cards)
}

// UpdateHand marks the current hand as Mine. Cards that were Mine and are gone revert to Unknown.
func (m *GameMemory) UpdateHand(hand []domain.Card) {
	for i, status := range m.DeckStatus {
		if status == StatusMine {
			m.DeckStatus[i] = StatusUnknown
		}
	}
	m.MarkMine(hand)
}

// Observe replays history records the memory has not seen yet. self is the bot's own id.
func (m *GameMemory) Observe(self string, history []domain.Record) {
	if len(history) < m.seen {
		m.Reset()
	}
	for _, rec := range history[m.seen:] {
		cards := parseCards(rec.Cards)
		switch rec.Kind {
		case domain.RecordAttack, domain.RecordDefend:
			played := cards
			if rec.Kind == domain.RecordDefend && len(cards) == 2 {
				played = cards[1:]
			}
			m.mark(played, StatusTable)
			if rec.Actor != self {
				m.profile(rec.Actor).RecordPlay(played)
			}
		case domain.RecordPass:
			if rec.Actor != self {
				m.profile(rec.Actor).Passes++
			}
		case domain.RecordRoundResolved:
			switch {
			case rec.Outcome == domain.OutcomeDefended:
				m.MarkDiscarded(cards)
			case rec.Actor == self:
				m.MarkMine(cards)
			default:
				m.MarkOpponent(rec.Actor, cards)
			}
		}
	}
	m.seen = len(history)
}

// IsBoss returns true if no card that could still be in someone's hand beats c.
func (m *GameMemory) IsBoss(c domain.Card, trump domain.Suit) bool {
	return m.Threats(c, trump) == 0
}

// Threats returns how many cards that may sit in an opponent's hand beat c.
func (m *GameMemory) Threats(c domain.Card, trump domain.Suit) int {
	n := 0
	for _, r := range domain.AllRanks {
		for _, s := range domain.AllSuits {
			other := domain.Card{Rank: r, Suit: s}
			status := m.DeckStatus[cardToIndex(other)]
			if status != StatusUnknown && status != StatusOpponent {
				continue
			}
			if domain.Beats(other, c, trump) {
				n++
			}
		}
	}
	return n
}

// IsDiscarded returns true if the card is out of the game.
func (m *GameMemory) IsDiscarded(c domain.Card) bool {
	return m.DeckStatus[cardToIndex(c)] == StatusDiscarded
}

func (m *GameMemory) mark(cards []domain.Card, status CardStatus) {
	for _, c := range cards {
		m.DeckStatus[cardToIndex(c)] = status
	}
}

func (m *GameMemory) profile(id string) *OpponentProfile {
	p, ok := m.Opponents[id]
	if !ok {
		p = NewOpponentProfile(id)
		m.Opponents[id] = p
	}
	return p
}

func parseCards(labels []string) []domain.Card {
	out := make([]domain.Card, 0, len(labels))
	for _, label := range labels {
		if c, err := domain.ParseCard(label); err == nil {
			out = append(out, c)
		}
	}
	return out
}

// cardToIndex converts domain.Card to a 0-51 index.
func cardToIndex(c domain.Card) int {
	return (int(c.Rank)-int(domain.Two))*4 + int(c.Suit)
}
