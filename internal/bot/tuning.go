package bot

import "durak/internal/domain"

// Tuning holds the knobs of CautiousBrain.
type Tuning struct {
	// ThrowInMaxRank is the highest plain card thrown in while the stock lasts.
	ThrowInMaxRank domain.Rank
	// MaxDefenseTrumps is how many trumps the defender spends on one round while the stock lasts.
	MaxDefenseTrumps int
	// EndgameStock is the stock size at or below which every card is fair game.
	EndgameStock int
}

// DefaultTuning saves trumps and high cards until the stock runs low.
var DefaultTuning = Tuning{
	ThrowInMaxRank:   domain.Ten,
	MaxDefenseTrumps: 1,
	EndgameStock:     4,
}

// endgame reports whether the stock is low enough to stop saving cards.
func (t Tuning) endgame(game *domain.Game) bool {
	return game.StockCount() <= t.EndgameStock
}
