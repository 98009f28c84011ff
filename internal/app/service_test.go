package app

import (
	"errors"
	"math/rand"
	"testing"

	"durak/internal/domain"
)

func TestStartGameDealsHands(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	svc := NewService(rng)

	// Empty seats are skipped.
	game, evs, err := svc.StartGame([]string{"u1", "", "u2"})
	if err != nil {
		t.Fatalf("start game error: %v", err)
	}
	if game.Phase() != domain.PhaseRoundInProgress {
		t.Fatalf("phase = %s, want %s", game.Phase(), domain.PhaseRoundInProgress)
	}

	handEvents := 0
	var started *GameStartedPayload
	for _, ev := range evs {
		switch ev.Kind {
		case EventHandDealt:
			handEvents++
			payload := ev.Payload.(HandDealtPayload)
			if len(payload.Hand) != domain.HandSize {
				t.Fatalf("hand size = %d, want %d", len(payload.Hand), domain.HandSize)
			}
			if len(ev.Recipients) != 1 || ev.Recipients[0] != payload.UserID {
				t.Fatalf("hand event recipients = %v, want only %s", ev.Recipients, payload.UserID)
			}
		case EventGameStarted:
			p := ev.Payload.(GameStartedPayload)
			started = &p
		}
	}
	if handEvents != 2 {
		t.Fatalf("hand events = %d, want 2", handEvents)
	}
	if started == nil {
		t.Fatalf("expected game started event")
	}
	if started.LeaderUserID == "" || started.DefenderUserID == "" || started.LeaderUserID == started.DefenderUserID {
		t.Fatalf("game started payload = %+v", started)
	}
	if started.StockCount != domain.DeckSize-2*domain.HandSize {
		t.Fatalf("stock = %d", started.StockCount)
	}
}

func TestStartGameTooFewPlayers(t *testing.T) {
	svc := NewService(rand.New(rand.NewSource(1)))
	if _, _, err := svc.StartGame([]string{"u1", "", ""}); !errors.Is(err, ErrTooFewPlayers) {
		t.Fatalf("start game error = %v, want %v", err, ErrTooFewPlayers)
	}
}

func TestActionsWithoutGame(t *testing.T) {
	svc := NewService(nil)
	if _, err := svc.Attack(nil, "u1", "7 of ♡"); !errors.Is(err, ErrNoGame) {
		t.Fatalf("attack error = %v, want %v", err, ErrNoGame)
	}
	if _, err := svc.Concede(nil, "u1"); !errors.Is(err, ErrNoGame) {
		t.Fatalf("concede error = %v, want %v", err, ErrNoGame)
	}
}

func TestAttackThenConcede(t *testing.T) {
	svc := NewService(rand.New(rand.NewSource(7)))
	game, _, err := svc.StartGame([]string{"u1", "u2"})
	if err != nil {
		t.Fatalf("start game error: %v", err)
	}
	leader, _ := game.Leader()
	defender, _ := game.Defender()
	card := leader.Hand[0].String()

	evs, err := svc.Attack(game, leader.ID, card)
	if err != nil {
		t.Fatalf("attack error: %v", err)
	}
	if len(evs) != 1 || evs[0].Kind != EventCardAttacked {
		t.Fatalf("attack events = %+v", evs)
	}
	if p := evs[0].Payload.(CardAttackedPayload); p.Card != card || p.UserID != leader.ID {
		t.Fatalf("attack payload = %+v", p)
	}

	evs, err = svc.Concede(game, defender.ID)
	if err != nil {
		t.Fatalf("concede error: %v", err)
	}
	kinds := []EventKind{EventCardsTaken, EventRoundResolved, EventHandUpdated, EventHandUpdated}
	if len(evs) != len(kinds) {
		t.Fatalf("concede events = %d, want %d", len(evs), len(kinds))
	}
	for i, ev := range evs {
		if ev.Kind != kinds[i] {
			t.Fatalf("event %d = %s, want %s", i, ev.Kind, kinds[i])
		}
	}
	taken := evs[0].Payload.(CardsTakenPayload)
	if taken.UserID != defender.ID || len(taken.Cards) != 1 || taken.Cards[0] != card {
		t.Fatalf("cards taken payload = %+v", taken)
	}
	resolved := evs[1].Payload.(RoundResolvedPayload)
	if resolved.Outcome != domain.OutcomeTookCards || resolved.Round != 1 || resolved.LeaderUserID != leader.ID {
		t.Fatalf("round resolved payload = %+v", resolved)
	}
}

func TestRejectedActionEmitsNothing(t *testing.T) {
	svc := NewService(rand.New(rand.NewSource(3)))
	game, _, err := svc.StartGame([]string{"u1", "u2"})
	if err != nil {
		t.Fatalf("start game error: %v", err)
	}
	defender, _ := game.Defender()
	evs, err := svc.Attack(game, defender.ID, defender.Hand[0].String())
	if !errors.Is(err, domain.ErrNotYourTurn) {
		t.Fatalf("attack error = %v, want %v", err, domain.ErrNotYourTurn)
	}
	if evs != nil {
		t.Fatalf("rejected attack emitted %+v", evs)
	}
}

func TestDefendAndPassResolvesRound(t *testing.T) {
	for seed := int64(1); seed <= 50; seed++ {
		svc := NewService(rand.New(rand.NewSource(seed)))
		game, _, err := svc.StartGame([]string{"u1", "u2"})
		if err != nil {
			t.Fatalf("start game error: %v", err)
		}
		leader, _ := game.Leader()
		defender, _ := game.Defender()

		attack, cover, ok := findCoverable(leader.Hand, defender.Hand, game.Trump())
		if !ok {
			continue
		}
		if _, err := svc.Attack(game, leader.ID, attack.String()); err != nil {
			t.Fatalf("attack error: %v", err)
		}
		evs, err := svc.Defend(game, defender.ID, attack.String(), cover.String())
		if err != nil {
			t.Fatalf("defend error: %v", err)
		}
		if len(evs) != 1 || evs[0].Kind != EventCardCovered {
			t.Fatalf("defend events = %+v", evs)
		}

		evs, err = svc.PassTurn(game, leader.ID)
		if err != nil {
			t.Fatalf("pass error: %v", err)
		}
		if len(evs) < 2 || evs[0].Kind != EventTurnPassed || evs[1].Kind != EventRoundResolved {
			t.Fatalf("pass events = %+v", evs)
		}
		resolved := evs[1].Payload.(RoundResolvedPayload)
		if resolved.Outcome != domain.OutcomeDefended || resolved.LeaderUserID != defender.ID {
			t.Fatalf("round resolved payload = %+v", resolved)
		}
		return
	}
	t.Fatalf("no seed produced a coverable opening")
}

func TestGameEndedEvent(t *testing.T) {
	svc := NewService(rand.New(rand.NewSource(11)))
	game, evs := playOut(t, svc)

	last := evs[len(evs)-1]
	if last.Kind != EventGameEnded {
		t.Fatalf("last event = %s, want %s", last.Kind, EventGameEnded)
	}
	ended := last.Payload.(GameEndedPayload)
	if ended.LoserUserID != game.Loser() || ended.LoserUserID == "" || ended.Draw {
		t.Fatalf("game ended payload = %+v", ended)
	}
}

func findCoverable(attacker, defender []domain.Card, trump domain.Suit) (domain.Card, domain.Card, bool) {
	for _, a := range attacker {
		for _, d := range defender {
			if domain.Beats(d, a, trump) {
				return a, d, true
			}
		}
	}
	return domain.Card{}, domain.Card{}, false
}

// playOut runs a two-player game where the leader always attacks and the defender always concedes.
func playOut(t *testing.T, svc *Service) (*domain.Game, []Event) {
	t.Helper()
	game, _, err := svc.StartGame([]string{"u1", "u2"})
	if err != nil {
		t.Fatalf("start game error: %v", err)
	}
	var evs []Event
	for i := 0; i < 500 && game.Phase() != domain.PhaseGameOver; i++ {
		leader, _ := game.Leader()
		defender, _ := game.Defender()
		if _, err := svc.Attack(game, leader.ID, leader.Hand[0].String()); err != nil {
			t.Fatalf("attack error: %v", err)
		}
		evs, err = svc.Concede(game, defender.ID)
		if err != nil {
			t.Fatalf("concede error: %v", err)
		}
	}
	if game.Phase() != domain.PhaseGameOver {
		t.Fatalf("game did not finish")
	}
	return game, evs
}
