package bot

import (
	"fmt"

	"durak/internal/app"
	"durak/internal/domain"
)

// Agent represents an autonomous bot player.
type Agent struct {
	ID       string
	Name     string
	Strategy Brain
}

// NewAgent builds an agent for a bot id with the level of its roster entry.
// Ids outside the roster, such as stand-ins for absent humans, play cautiously.
func NewAgent(userID string) (*Agent, error) {
	level := BotLevelCautious
	if identity, ok := GetBotConfig(userID); ok {
		level = identity.Level
	}
	strategy, err := NewBrain(level, nil)
	if err != nil {
		return nil, err
	}
	name := GetBotDisplayName(userID)
	if name == "" {
		name = userID
	}
	return &Agent{ID: userID, Name: name, Strategy: strategy}, nil
}

// Play asks the agent to calculate its move based on the current game state.
func (a *Agent) Play(game *domain.Game) (Move, error) {
	player, ok := game.Player(a.ID)
	if !ok {
		// Agent is not part of this game
		return Move{}, nil
	}
	return a.Strategy.CalculateMove(game, player)
}

// ApplyMove performs move for playerID through the app service.
func ApplyMove(svc *app.Service, game *domain.Game, playerID string, move Move) ([]app.Event, error) {
	switch move.Kind {
	case MoveAttack:
		return svc.Attack(game, playerID, move.Card.String())
	case MoveDefend:
		return svc.Defend(game, playerID, move.Attacked.String(), move.Card.String())
	case MovePass:
		return svc.PassTurn(game, playerID)
	case MoveConcede:
		return svc.Concede(game, playerID)
	default:
		return nil, fmt.Errorf("cannot apply move %q", move.Kind)
	}
}
