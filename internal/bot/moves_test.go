package bot

import (
	"math/rand"
	"testing"

	"durak/internal/domain"
)

func newSeededGame(t *testing.T, seed int64, ids ...string) *domain.Game {
	t.Helper()
	game, err := domain.NewGame(ids, domain.WithRandomSource(rand.New(rand.NewSource(seed))))
	if err != nil {
		t.Fatalf("NewGame error: %v", err)
	}
	return game
}

func TestLegalMovesAtRoundStart(t *testing.T) {
	game := newSeededGame(t, 21, "a", "b", "c")
	leader, _ := game.Leader()
	defender, _ := game.Defender()

	moves := LegalMoves(game, leader.ID)
	if len(moves) != domain.HandSize {
		t.Fatalf("leader moves = %d, want %d", len(moves), domain.HandSize)
	}
	for _, m := range moves {
		if m.Kind != MoveAttack {
			t.Fatalf("leader may only attack on an empty table, got %s", m)
		}
	}

	if got := LegalMoves(game, defender.ID); len(got) != 0 {
		t.Fatalf("defender moves on empty table = %v", got)
	}
	for _, pl := range game.Players() {
		if pl.ID != leader.ID && pl.ID != defender.ID {
			if got := LegalMoves(game, pl.ID); len(got) != 0 {
				t.Fatalf("non-leading attacker moves on empty table = %v", got)
			}
		}
	}
	if got := LegalMoves(game, "nobody"); got != nil {
		t.Fatalf("unknown player moves = %v", got)
	}
}

func TestLegalMovesAfterAttack(t *testing.T) {
	game := newSeededGame(t, 5, "a", "b")
	leader, _ := game.Leader()
	defender, _ := game.Defender()
	attack := leader.Hand[0]
	if err := game.Attack(leader.ID, attack.String()); err != nil {
		t.Fatalf("Attack error: %v", err)
	}

	defMoves := LegalMoves(game, defender.ID)
	if len(defMoves) == 0 || defMoves[len(defMoves)-1].Kind != MoveConcede {
		t.Fatalf("defender moves = %v, want concede last", defMoves)
	}
	for _, m := range defMoves[:len(defMoves)-1] {
		if m.Kind != MoveDefend || m.Attacked != attack || !domain.Beats(m.Card, attack, game.Trump()) {
			t.Fatalf("illegal defend move %s", m)
		}
	}

	attMoves := LegalMoves(game, leader.ID)
	sawPass := false
	for _, m := range attMoves {
		switch m.Kind {
		case MovePass:
			sawPass = true
		case MoveAttack:
			if m.Card.Rank != attack.Rank {
				t.Fatalf("throw-in %s does not match a rank on the table", m.Card)
			}
		default:
			t.Fatalf("unexpected attacker move %s", m)
		}
	}
	if !sawPass {
		t.Fatalf("attacker should be able to pass once the table is open")
	}
}

func TestLegalMovesAreAccepted(t *testing.T) {
	rng := rand.New(rand.NewSource(77))
	for seed := int64(0); seed < 20; seed++ {
		game := newSeededGame(t, seed, "a", "b", "c")
		for step := 0; step < 30 && game.Phase() != domain.PhaseGameOver; step++ {
			var actor string
			var moves []Move
			for _, pl := range game.Players() {
				if m := LegalMoves(game, pl.ID); len(m) > 0 {
					actor, moves = pl.ID, m
					break
				}
			}
			if len(moves) == 0 {
				t.Fatalf("seed %d step %d: nobody can move", seed, step)
			}
			m := moves[rng.Intn(len(moves))]
			if err := apply(game, actor, m); err != nil {
				t.Fatalf("seed %d step %d: %s by %s rejected: %v", seed, step, m, actor, err)
			}
		}
	}
}

func TestLegalMovesGameOver(t *testing.T) {
	game := newSeededGame(t, 1, "solo")
	if got := LegalMoves(game, "solo"); got != nil {
		t.Fatalf("moves after game over = %v", got)
	}
}

func apply(game *domain.Game, playerID string, m Move) error {
	switch m.Kind {
	case MoveAttack:
		return game.Attack(playerID, m.Card.String())
	case MoveDefend:
		return game.Defend(playerID, m.Attacked.String(), m.Card.String())
	case MovePass:
		return game.Pass(playerID)
	default:
		return game.Concede(playerID)
	}
}
