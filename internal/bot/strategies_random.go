package bot

import (
	"math/rand"
	"time"

	"durak/internal/domain"
)

// RandomBrain picks uniformly among the legal moves.
type RandomBrain struct {
	rng *rand.Rand
}

// NewRandomBrain uses rng, or a time-seeded source when rng is nil.
func NewRandomBrain(rng *rand.Rand) *RandomBrain {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &RandomBrain{rng: rng}
}

func (b *RandomBrain) CalculateMove(game *domain.Game, player domain.Player) (Move, error) {
	moves := LegalMoves(game, player.ID)
	if len(moves) == 0 {
		return Move{}, nil
	}
	return moves[b.rng.Intn(len(moves))], nil
}
