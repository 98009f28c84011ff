package bot

import (
	"fmt"

	"durak/internal/domain"
)

// MoveKind names the action a move performs.
type MoveKind string

const (
	MoveAttack  MoveKind = "attack"
	MoveDefend  MoveKind = "defend"
	MovePass    MoveKind = "pass"
	MoveConcede MoveKind = "concede"
)

// Move represents the decision made by the AI. The zero Move means "nothing to do now".
type Move struct {
	Kind MoveKind
	// Card is the attacking card for MoveAttack and the covering card for MoveDefend.
	Card domain.Card
	// Attacked is the table card being covered by MoveDefend.
	Attacked domain.Card
}

// Idle reports whether the move is the zero Move.
func (m Move) Idle() bool { return m.Kind == "" }

func (m Move) String() string {
	switch m.Kind {
	case MoveAttack:
		return fmt.Sprintf("attack with %s", m.Card)
	case MoveDefend:
		return fmt.Sprintf("cover %s with %s", m.Attacked, m.Card)
	case MovePass:
		return "pass"
	case MoveConcede:
		return "take the cards"
	default:
		return "wait"
	}
}

// LegalMoves lists every move the engine would accept from playerID right now.
// Concede is only offered while an attack is uncovered, and Pass only once per attacker.
func LegalMoves(game *domain.Game, playerID string) []Move {
	if game == nil || game.Phase() == domain.PhaseGameOver {
		return nil
	}
	pl, ok := game.Player(playerID)
	if !ok || !pl.Active() {
		return nil
	}
	table := game.Table()
	trump := game.Trump()

	var moves []Move
	if pl.IsAttacker {
		def, _ := game.Defender()
		canAttack := !table.Full() &&
			(table.Len() > 0 || pl.StartsRound) &&
			table.UncoveredCount()+1 <= def.HandSize()
		if canAttack {
			for _, c := range pl.SortedHand(trump) {
				if table.Len() == 0 || table.HasRank(c.Rank) {
					moves = append(moves, Move{Kind: MoveAttack, Card: c})
				}
			}
		}
		if table.Len() > 0 && !game.HasPassed(playerID) {
			moves = append(moves, Move{Kind: MovePass})
		}
	}

	if pl.IsDefender {
		uncovered := table.Uncovered()
		for _, attack := range uncovered {
			for _, c := range pl.SortedHand(trump) {
				if domain.Beats(c, attack, trump) {
					moves = append(moves, Move{Kind: MoveDefend, Card: c, Attacked: attack})
				}
			}
		}
		if len(uncovered) > 0 {
			moves = append(moves, Move{Kind: MoveConcede})
		}
	}
	return moves
}
