package main

import (
	"log/slog"
	"os"
	"testing"

	"durak/internal/config"
	"durak/internal/domain"

	"github.com/pterm/pterm"
)

func TestMain(m *testing.M) {
	pterm.DisableOutput()
	os.Exit(m.Run())
}

func testLogger() *slog.Logger {
	return slog.New(pterm.NewSlogHandler(&pterm.DefaultLogger))
}

func TestWatchSessionFinishesHeadsUp(t *testing.T) {
	for seed := int64(1); seed <= 3; seed++ {
		s, err := newSession(2, seed, true, config.Default(), testLogger())
		if err != nil {
			t.Fatalf("newSession error: %v", err)
		}
		if s.human != "" || len(s.agents) != 2 {
			t.Fatalf("watch session seats = human %q, %d agents", s.human, len(s.agents))
		}
		if err := s.run(); err != nil {
			t.Fatalf("seed %d: run error: %v", seed, err)
		}
		if s.game.Phase() != domain.PhaseGameOver {
			t.Fatalf("seed %d: game not over", seed)
		}
	}
}

func TestNewSessionSeatsHuman(t *testing.T) {
	s, err := newSession(3, 5, false, config.Default(), testLogger())
	if err != nil {
		t.Fatalf("newSession error: %v", err)
	}
	if s.human != humanID || s.names[humanID] != "You" {
		t.Fatalf("human seat = %q (%q)", s.human, s.names[humanID])
	}
	if _, ok := s.game.Player(humanID); !ok {
		t.Fatalf("human not dealt in")
	}
	if len(s.agents) != 2 {
		t.Fatalf("agents = %d, want 2", len(s.agents))
	}
	for id, agent := range s.agents {
		if agent.Name == "" || s.names[id] == "" {
			t.Fatalf("bot %s has no name", id)
		}
	}
}

func TestNewSessionRejectsBadPlayerCount(t *testing.T) {
	if _, err := newSession(9, 1, true, config.Default(), testLogger()); err == nil {
		t.Fatalf("expected error for 9 players")
	}
}
