package app

import (
	"errors"
	"math/rand"
	"time"

	"durak/internal/domain"
)

// Service contains Durak use-cases operating on domain state.
type Service struct {
	rng  *rand.Rand
	opts []domain.Option
}

// NewService constructs a Service with provided rng or a time-seeded default.
// opts are passed to every game the service starts.
func NewService(rng *rand.Rand, opts ...domain.Option) *Service {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Service{rng: rng, opts: opts}
}

var (
	ErrNoGame         = errors.New("no game in progress")
	ErrTooFewPlayers  = errors.New("not enough players to start")
	ErrGameInProgress = errors.New("game already in progress")
	ErrNotOwner       = errors.New("only the match owner can start the game")
	ErrBadRequest     = errors.New("malformed request")
)

// StartGame deals a new game. playerIDs are in seat order; empty strings mark empty seats.
func (s *Service) StartGame(playerIDs []string) (*domain.Game, []Event, error) {
	seats := make([]string, 0, len(playerIDs))
	for _, userID := range playerIDs {
		if userID != "" {
			seats = append(seats, userID)
		}
	}
	if len(seats) < MinPlayersToStartGame {
		return nil, nil, ErrTooFewPlayers
	}

	opts := append([]domain.Option{domain.WithRandomSource(s.rng)}, s.opts...)
	game, err := domain.NewGame(seats, opts...)
	if err != nil {
		return nil, nil, err
	}

	events := make([]Event, 0, len(seats)+1)
	for _, pl := range game.Players() {
		events = append(events, Event{
			Kind: EventHandDealt,
			Payload: HandDealtPayload{
				UserID: pl.ID,
				Hand:   domain.CardStrings(pl.SortedHand(game.Trump())),
			},
			Recipients: []string{pl.ID},
		})
	}

	started := GameStartedPayload{
		Phase:      game.Phase(),
		TrumpCard:  game.TrumpCard().String(),
		StockCount: game.StockCount(),
	}
	if leader, ok := game.Leader(); ok {
		started.LeaderUserID = leader.ID
	}
	if def, ok := game.Defender(); ok {
		started.DefenderUserID = def.ID
	}
	events = append(events, Event{Kind: EventGameStarted, Payload: started})

	return game, events, nil
}

// Attack places an attack card and emits resulting events.
func (s *Service) Attack(game *domain.Game, actorUserID, card string) ([]Event, error) {
	return s.apply(game, func() error { return game.Attack(actorUserID, card) })
}

// Defend covers an attack card and emits resulting events.
func (s *Service) Defend(game *domain.Game, actorUserID, attacked, covering string) ([]Event, error) {
	return s.apply(game, func() error { return game.Defend(actorUserID, attacked, covering) })
}

// PassTurn marks an attacker's pass.
func (s *Service) PassTurn(game *domain.Game, actorUserID string) ([]Event, error) {
	return s.apply(game, func() error { return game.Pass(actorUserID) })
}

// Concede makes the defender pick up the table.
func (s *Service) Concede(game *domain.Game, actorUserID string) ([]Event, error) {
	return s.apply(game, func() error { return game.Concede(actorUserID) })
}

func (s *Service) apply(game *domain.Game, action func() error) ([]Event, error) {
	if game == nil {
		return nil, ErrNoGame
	}
	before := len(game.History())
	if err := action(); err != nil {
		return nil, err
	}
	return eventsSince(game, before), nil
}

// eventsSince translates history records appended after index from into events.
func eventsSince(game *domain.Game, from int) []Event {
	history := game.History()
	var events []Event
	for _, rec := range history[from:] {
		switch rec.Kind {
		case domain.RecordAttack:
			events = append(events, Event{
				Kind:    EventCardAttacked,
				Payload: CardAttackedPayload{UserID: rec.Actor, Card: rec.Cards[0]},
			})
		case domain.RecordDefend:
			events = append(events, Event{
				Kind:    EventCardCovered,
				Payload: CardCoveredPayload{UserID: rec.Actor, Attacked: rec.Cards[0], Covering: rec.Cards[1]},
			})
		case domain.RecordPass:
			events = append(events, Event{
				Kind:    EventTurnPassed,
				Payload: TurnPassedPayload{UserID: rec.Actor},
			})
		case domain.RecordRoundResolved:
			if rec.Outcome == domain.OutcomeTookCards {
				events = append(events, Event{
					Kind:    EventCardsTaken,
					Payload: CardsTakenPayload{UserID: rec.Actor, Cards: rec.Cards},
				})
			}
			events = append(events, roundEvents(game, rec.Outcome)...)
		}
	}

	if game.Phase() == domain.PhaseGameOver {
		events = append(events, Event{
			Kind: EventGameEnded,
			Payload: GameEndedPayload{
				LoserUserID: game.Loser(),
				Draw:        game.IsDraw(),
				Rounds:      game.Round() - 1,
			},
		})
	}
	return events
}

func roundEvents(game *domain.Game, outcome domain.Outcome) []Event {
	resolved := RoundResolvedPayload{
		Round:      game.Round() - 1,
		Outcome:    outcome,
		StockCount: game.StockCount(),
	}
	if leader, ok := game.Leader(); ok {
		resolved.LeaderUserID = leader.ID
	}
	if def, ok := game.Defender(); ok {
		resolved.DefenderUserID = def.ID
	}

	events := []Event{{Kind: EventRoundResolved, Payload: resolved}}
	for _, pl := range game.Players() {
		events = append(events, Event{
			Kind: EventHandUpdated,
			Payload: HandUpdatedPayload{
				UserID: pl.ID,
				Hand:   domain.CardStrings(pl.SortedHand(game.Trump())),
			},
			Recipients: []string{pl.ID},
		})
	}
	return events
}
