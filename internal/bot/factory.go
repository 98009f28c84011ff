package bot

import (
	"fmt"
	"math/rand"
)

// BotLevel selects a Brain implementation. The zero value is the cautious brain.
type BotLevel int

const (
	BotLevelCautious BotLevel = iota
	BotLevelRandom
)

// NewBrain creates a new AI brain based on the specified level.
// rng only seeds BotLevelRandom and may be nil.
func NewBrain(level BotLevel, rng *rand.Rand) (Brain, error) {
	switch level {
	case BotLevelRandom:
		return NewRandomBrain(rng), nil
	case BotLevelCautious:
		return NewCautiousBrain(), nil
	default:
		return nil, fmt.Errorf("unknown bot level: %d", level)
	}
}

// ParseDifficulty maps a roster difficulty to a level. "easy" bots play at
// random; "normal", "medium", "hard" and an empty value play cautiously.
func ParseDifficulty(difficulty string) (BotLevel, error) {
	switch difficulty {
	case "easy":
		return BotLevelRandom, nil
	case "", "normal", "medium", "hard":
		return BotLevelCautious, nil
	default:
		return 0, fmt.Errorf("unknown bot difficulty %q", difficulty)
	}
}
