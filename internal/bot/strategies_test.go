package bot

import (
	"math/rand"
	"testing"

	"durak/internal/domain"
)

func TestCautiousBrainOpensWithCheapestCard(t *testing.T) {
	for seed := int64(0); seed < 10; seed++ {
		game := newSeededGame(t, seed, "a", "b")
		leader, _ := game.Leader()

		move, err := NewCautiousBrain().CalculateMove(game, leader)
		if err != nil {
			t.Fatalf("CalculateMove error: %v", err)
		}
		if move.Kind != MoveAttack {
			t.Fatalf("seed %d: opening move = %s", seed, move)
		}
		trump := game.Trump()
		for _, c := range leader.Hand {
			if domain.CardValue(c, trump) < domain.CardValue(move.Card, trump) {
				t.Fatalf("seed %d: opened with %s while holding %s", seed, move.Card, c)
			}
		}
	}
}

func TestCautiousBrainDefendsOrConcedes(t *testing.T) {
	for seed := int64(0); seed < 20; seed++ {
		game := newSeededGame(t, seed, "a", "b")
		leader, _ := game.Leader()
		attack := leader.SortedHand(game.Trump())[0]
		if err := game.Attack(leader.ID, attack.String()); err != nil {
			t.Fatalf("Attack error: %v", err)
		}
		defender, _ := game.Defender()

		move, err := NewCautiousBrain().CalculateMove(game, defender)
		if err != nil {
			t.Fatalf("CalculateMove error: %v", err)
		}
		canCover := false
		for _, c := range defender.Hand {
			if domain.Beats(c, attack, game.Trump()) {
				canCover = true
			}
		}
		switch {
		case !canCover && move.Kind != MoveConcede:
			t.Fatalf("seed %d: cannot cover %s but chose %s", seed, attack, move)
		case move.Kind == MoveDefend && !domain.Beats(move.Card, attack, game.Trump()):
			t.Fatalf("seed %d: illegal cover %s", seed, move)
		case move.Kind != MoveDefend && move.Kind != MoveConcede:
			t.Fatalf("seed %d: defender chose %s", seed, move)
		}
	}
}

func TestCautiousBrainIdleWhenNothingToDo(t *testing.T) {
	game := newSeededGame(t, 3, "a", "b")
	defender, _ := game.Defender()
	move, err := NewCautiousBrain().CalculateMove(game, defender)
	if err != nil || !move.Idle() {
		t.Fatalf("CalculateMove() = %s, %v, want idle", move, err)
	}
}

func TestRandomBrainPicksLegalMoves(t *testing.T) {
	game := newSeededGame(t, 8, "a", "b")
	leader, _ := game.Leader()
	b := NewRandomBrain(rand.New(rand.NewSource(4)))
	for i := 0; i < 20; i++ {
		move, err := b.CalculateMove(game, leader)
		if err != nil {
			t.Fatalf("CalculateMove error: %v", err)
		}
		if move.Kind != MoveAttack || !leader.Holds(move.Card) {
			t.Fatalf("random opening = %s", move)
		}
	}
}

func TestNewBrain(t *testing.T) {
	if _, err := NewBrain(BotLevel(99), nil); err == nil {
		t.Fatalf("expected error for unknown level")
	}
	if b, err := NewBrain(BotLevelCautious, nil); err != nil {
		t.Fatalf("NewBrain error: %v", err)
	} else if _, ok := b.(*CautiousBrain); !ok {
		t.Fatalf("NewBrain(cautious) = %T", b)
	}
}

func TestBotIdentityFallback(t *testing.T) {
	identity := GetBotIdentity(3)
	if !IsBot(identity.UserID) {
		t.Fatalf("IsBot(%q) = false", identity.UserID)
	}
	if IsBot("user-1") || IsBot("") {
		t.Fatalf("human ids reported as bots")
	}
	agent, err := NewAgent(identity.UserID)
	if err != nil {
		t.Fatalf("NewAgent error: %v", err)
	}
	if agent.ID != identity.UserID || agent.Name == "" || agent.Strategy == nil {
		t.Fatalf("agent = %+v", agent)
	}
}
