package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"durak/internal/app"
	"durak/internal/bot"
	"durak/internal/config"
	"durak/internal/domain"

	"github.com/pterm/pterm"
	"github.com/pterm/pterm/putils"
)

const (
	humanID  = "you"
	maxSteps = 20000
)

var errStuck = errors.New("no player can move")

func main() {
	players := flag.Int("players", 2, "number of players (2-8)")
	seed := flag.Int64("seed", 0, "shuffle seed, 0 picks one from the clock")
	configPath := flag.String("config", "", "game config JSON file")
	watch := flag.Bool("watch", false, "bots play every seat")
	delay := flag.Duration("delay", 600*time.Millisecond, "pause between bot moves")
	flag.Parse()

	// Create a new slog logger backed by the default PTerm logger
	logger := slog.New(pterm.NewSlogHandler(&pterm.DefaultLogger))

	cfg := config.Default()
	if *configPath != "" {
		if err := config.LoadGameConfig(*configPath); err != nil {
			logger.Error("failed to load config", "path", *configPath, "error", err)
			os.Exit(1)
		}
		cfg = config.GetGameConfig()
	}
	if *players < 2 || *players > domain.MaxPlayers {
		logger.Error("invalid player count", "players", *players, "max", domain.MaxPlayers)
		os.Exit(2)
	}
	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}
	if err := bot.LoadIdentities("data/bot_identities.json"); err != nil {
		logger.Debug("bot identities not loaded, using generic names", "error", err)
	}

	pterm.DefaultBigText.WithLetters(
		putils.LettersFromStringWithStyle("D", pterm.FgRed.ToStyle()),
		putils.LettersFromStringWithStyle("urak", pterm.FgDarkGray.ToStyle()),
	).Render()
	logger.Info("dealing", "players", *players, "seed", *seed)

	s, err := newSession(*players, *seed, *watch, cfg, logger)
	if err != nil {
		logger.Error("failed to start game", "error", err)
		os.Exit(1)
	}
	s.delay = *delay
	if err := s.run(); err != nil {
		logger.Error("game aborted", "error", err)
		os.Exit(1)
	}
}

// session drives one local game between the terminal user and bots.
type session struct {
	svc    *app.Service
	game   *domain.Game
	human  string // empty when watching
	agents map[string]*bot.Agent
	names  map[string]string
	logger *slog.Logger
	delay  time.Duration
}

func newSession(players int, seed int64, watch bool, cfg *config.GameConfig, logger *slog.Logger) (*session, error) {
	rng := rand.New(rand.NewSource(seed))
	s := &session{
		svc:    app.NewService(rng, cfg.GameOptions()...),
		agents: make(map[string]*bot.Agent),
		names:  make(map[string]string),
		logger: logger,
	}

	ids := make([]string, players)
	for i := range ids {
		if i == 0 && !watch {
			ids[i] = humanID
			s.human = humanID
			s.names[humanID] = "You"
			continue
		}
		identity := bot.GetBotIdentity(i)
		strategy, err := bot.NewBrain(identity.Level, rng)
		if err != nil {
			return nil, err
		}
		ids[i] = identity.UserID
		s.names[ids[i]] = identity.DisplayName
		s.agents[ids[i]] = &bot.Agent{ID: ids[i], Name: identity.DisplayName, Strategy: strategy}
	}

	game, events, err := s.svc.StartGame(ids)
	if err != nil {
		return nil, err
	}
	s.game = game
	s.report(events)
	return s, nil
}

// run plays until the game is over.
func (s *session) run() error {
	for step := 0; s.game.Phase() != domain.PhaseGameOver; step++ {
		if step >= maxSteps {
			return fmt.Errorf("game still running after %d moves", maxSteps)
		}
		if err := s.step(); err != nil {
			return err
		}
	}
	printState(s.game, s.human, s.names)
	pterm.DefaultPanel.WithPanels(pterm.Panels{{resultPanel(s.game, s.names)}}).Render()
	return nil
}

// step lets the first player in seat order with something to do make one move.
func (s *session) step() error {
	for _, pl := range s.game.Players() {
		var (
			move bot.Move
			err  error
		)
		if pl.ID == s.human {
			if s.game.HasPassed(pl.ID) {
				continue
			}
			moves := bot.LegalMoves(s.game, pl.ID)
			if len(moves) == 0 {
				continue
			}
			move, err = s.prompt(moves)
		} else {
			move, err = s.agents[pl.ID].Play(s.game)
			if err == nil && !move.Idle() && s.delay > 0 {
				time.Sleep(s.delay)
			}
		}
		if err != nil {
			return err
		}
		if move.Idle() {
			continue
		}

		events, err := bot.ApplyMove(s.svc, s.game, pl.ID, move)
		if err != nil {
			if pl.ID == s.human {
				pterm.Error.Printfln("Invalid move: %s", err)
				return nil
			}
			return fmt.Errorf("%s played %s: %w", pl.ID, move, err)
		}
		s.logger.Debug("move", "player", pl.ID, "move", move.String())
		s.report(events)
		return nil
	}
	return errStuck
}

func (s *session) prompt(moves []bot.Move) (bot.Move, error) {
	printState(s.game, s.human, s.names)
	options := make([]string, len(moves))
	byLabel := make(map[string]bot.Move, len(moves))
	for i, m := range moves {
		options[i] = m.String()
		byLabel[options[i]] = m
	}
	selected, err := pterm.DefaultInteractiveSelect.WithDefaultText("Select your next move").WithOptions(options).Show()
	if err != nil {
		return bot.Move{}, err
	}
	return byLabel[selected], nil
}

// report prints public events and the human's own hand updates.
func (s *session) report(events []app.Event) {
	for _, ev := range events {
		if len(ev.Recipients) > 0 && ev.Recipients[0] != s.human {
			continue
		}
		switch p := ev.Payload.(type) {
		case app.GameStartedPayload:
			pterm.Info.Printfln("Trump card is %s. %s leads against %s.", p.TrumpCard, s.names[p.LeaderUserID], s.names[p.DefenderUserID])
		case app.CardAttackedPayload:
			pterm.Printfln("%s attacks with %s", pterm.LightCyan(s.names[p.UserID]), p.Card)
		case app.CardCoveredPayload:
			pterm.Printfln("%s covers %s with %s", pterm.LightCyan(s.names[p.UserID]), p.Attacked, p.Covering)
		case app.TurnPassedPayload:
			pterm.Printfln("%s passes", pterm.LightCyan(s.names[p.UserID]))
		case app.CardsTakenPayload:
			pterm.Warning.Printfln("%s takes %d cards", s.names[p.UserID], len(p.Cards))
		case app.RoundResolvedPayload:
			pterm.Info.Printfln("Round %d %s. %d cards left in the stock.", p.Round, p.Outcome, p.StockCount)
		case app.GameEndedPayload:
			if p.Draw {
				pterm.Success.Println("The game ended in a draw.")
			} else {
				pterm.Success.Printfln("%s is the durak.", s.names[p.LoserUserID])
			}
		}
	}
}
