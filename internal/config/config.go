package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"durak/internal/domain"
)

// Defaults used when no config is loaded or a key is absent from the document.
const (
	DefaultMaxPlayers              = 4
	DefaultTurnDurationSeconds     = 30
	DefaultBotMinDelaySeconds      = 1
	DefaultBotMaxDelaySeconds      = 3
	DefaultBotAutoFillDelaySeconds = 5
	DefaultReceiptIssuer           = "durak"
)

type GameConfig struct {
	// MaxPlayers is the number of seats per match, 2..8.
	MaxPlayers int `json:"max_players"`
	// TurnDurationSeconds is how long a human may stall; 0 turns the timeout off.
	TurnDurationSeconds int    `json:"turn_duration_seconds"`
	FirstPlayerPolicy   string `json:"first_player_policy"`
	BotsEnabled         bool   `json:"bots_enabled"`
	BotMinDelaySeconds  int    `json:"bot_min_delay_seconds"`
	BotMaxDelaySeconds  int    `json:"bot_max_delay_seconds"`
	// BotAutoFillDelaySeconds configures how many seconds to wait before adding bots to a solo human lobby.
	BotAutoFillDelaySeconds int    `json:"bot_auto_fill_delay_seconds"`
	ReceiptIssuer           string `json:"receipt_issuer"`
}

var (
	cfg      *GameConfig
	loadOnce sync.Once
	loadErr  error
)

// LoadGameConfig loads the game configuration from the given path.
func LoadGameConfig(path string) error {
	loadOnce.Do(func() {
		data, err := os.ReadFile(path)
		if err != nil {
			loadErr = fmt.Errorf("failed to read game config: %w", err)
			return
		}
		c, err := ParseGameConfig(data)
		if err != nil {
			loadErr = err
			return
		}
		cfg = c
	})
	return loadErr
}

// ParseGameConfig decodes and validates a config document. Keys missing from
// the document keep their defaults; an explicit 0 is kept as 0.
func ParseGameConfig(data []byte) (*GameConfig, error) {
	c := Default()
	if err := json.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal game config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// GetGameConfig returns the global game configuration, or defaults when none was loaded.
func GetGameConfig() *GameConfig {
	if cfg == nil {
		return Default()
	}
	return cfg
}

// Default returns the built-in configuration.
func Default() *GameConfig {
	return &GameConfig{
		MaxPlayers:              DefaultMaxPlayers,
		TurnDurationSeconds:     DefaultTurnDurationSeconds,
		BotMinDelaySeconds:      DefaultBotMinDelaySeconds,
		BotMaxDelaySeconds:      DefaultBotMaxDelaySeconds,
		BotAutoFillDelaySeconds: DefaultBotAutoFillDelaySeconds,
		ReceiptIssuer:           DefaultReceiptIssuer,
	}
}

// Validate checks ranges and the policy name.
func (c *GameConfig) Validate() error {
	if c.MaxPlayers < 2 || c.MaxPlayers > domain.MaxPlayers {
		return fmt.Errorf("max_players %d out of range 2..%d", c.MaxPlayers, domain.MaxPlayers)
	}
	if c.TurnDurationSeconds < 0 {
		return fmt.Errorf("turn_duration_seconds %d is negative", c.TurnDurationSeconds)
	}
	if c.BotMinDelaySeconds < 0 || c.BotMaxDelaySeconds < c.BotMinDelaySeconds {
		return fmt.Errorf("bot delay range %d..%d is invalid", c.BotMinDelaySeconds, c.BotMaxDelaySeconds)
	}
	if c.BotAutoFillDelaySeconds < 0 {
		return fmt.Errorf("bot_auto_fill_delay_seconds %d is negative", c.BotAutoFillDelaySeconds)
	}
	if c.ReceiptIssuer == "" {
		return fmt.Errorf("receipt_issuer must not be empty")
	}
	if _, err := domain.PolicyByName(c.FirstPlayerPolicy); err != nil {
		return err
	}
	return nil
}

// GameOptions returns the engine options implied by the config.
func (c *GameConfig) GameOptions() []domain.Option {
	policy, err := domain.PolicyByName(c.FirstPlayerPolicy)
	if err != nil {
		return nil
	}
	return []domain.Option{domain.WithFirstPlayerPolicy(policy)}
}
