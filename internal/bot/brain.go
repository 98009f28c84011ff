package bot

import (
	"durak/internal/domain"
)

// Brain is the interface that all bot strategies must implement.
// CalculateMove returns the zero Move when the player has nothing to do.
type Brain interface {
	CalculateMove(game *domain.Game, player domain.Player) (Move, error)
}
