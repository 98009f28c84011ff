package bot

import (
	"sort"

	"durak/internal/bot/brain"
	"durak/internal/domain"
)

// CautiousBrain plays its cheapest cards, keeps trumps for the endgame and
// takes the table rather than burn trumps early.
type CautiousBrain struct {
	Memory *brain.GameMemory
	Tuning Tuning
}

// NewCautiousBrain returns a CautiousBrain with DefaultTuning and an empty memory.
func NewCautiousBrain() *CautiousBrain {
	return &CautiousBrain{Memory: brain.NewMemory(), Tuning: DefaultTuning}
}

func (b *CautiousBrain) CalculateMove(game *domain.Game, player domain.Player) (Move, error) {
	moves := LegalMoves(game, player.ID)
	if len(moves) == 0 {
		return Move{}, nil
	}
	if b.Memory != nil {
		b.Memory.Observe(player.ID, game.History())
		b.Memory.UpdateHand(player.Hand)
	}

	if player.IsDefender && game.Table().UncoveredCount() > 0 {
		return b.defend(game, player), nil
	}
	return b.attack(game, moves), nil
}

// defend covers the strongest uncovered attack first. It concedes when the
// greedy plan cannot cover everything or would spend too many trumps early.
func (b *CautiousBrain) defend(game *domain.Game, player domain.Player) Move {
	trump := game.Trump()
	uncovered := game.Table().Uncovered()
	sort.Slice(uncovered, func(i, j int) bool {
		return domain.CardValue(uncovered[i], trump) > domain.CardValue(uncovered[j], trump)
	})

	hand := player.SortedHand(trump)
	sort.SliceStable(hand, func(i, j int) bool {
		return domain.CardValue(hand[i], trump) < domain.CardValue(hand[j], trump)
	})

	used := make(map[domain.Card]bool)
	var first Move
	trumps := 0
	for _, attack := range uncovered {
		found := false
		for _, c := range hand {
			if used[c] || !domain.Beats(c, attack, trump) {
				continue
			}
			used[c] = true
			if c.Suit == trump {
				trumps++
			}
			if first.Idle() {
				first = Move{Kind: MoveDefend, Card: c, Attacked: attack}
			}
			found = true
			break
		}
		if !found {
			return Move{Kind: MoveConcede}
		}
	}
	if trumps > b.Tuning.MaxDefenseTrumps && !b.Tuning.endgame(game) {
		return Move{Kind: MoveConcede}
	}
	return first
}

func (b *CautiousBrain) attack(game *domain.Game, moves []Move) Move {
	trump := game.Trump()
	opening := game.Table().Len() == 0
	endgame := b.Tuning.endgame(game)

	var candidates []Move
	var pass *Move
	for i, m := range moves {
		switch m.Kind {
		case MoveAttack:
			if opening || endgame || (m.Card.Suit != trump && m.Card.Rank <= b.Tuning.ThrowInMaxRank) {
				candidates = append(candidates, m)
			}
		case MovePass:
			pass = &moves[i]
		}
	}
	if len(candidates) == 0 {
		if pass != nil {
			return *pass
		}
		return Move{}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		vi, vj := domain.CardValue(candidates[i].Card, trump), domain.CardValue(candidates[j].Card, trump)
		if vi != vj {
			return vi < vj
		}
		if b.Memory == nil {
			return false
		}
		// Prefer the card fewer unseen cards can beat.
		return b.Memory.Threats(candidates[i].Card, trump) < b.Memory.Threats(candidates[j].Card, trump)
	})
	return candidates[0]
}
