package bot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/heroiclabs/nakama-common/runtime"
)

// BotIDPrefix marks ids of bots that have no provisioned account.
const BotIDPrefix = "bot-"

// BotIdentity is one seat-filler from the roster file. Level is resolved from
// Difficulty when the roster is built.
type BotIdentity struct {
	DeviceID    string   `json:"device_id"`
	UserID      string   `json:"user_id"`
	Username    string   `json:"username"`
	DisplayName string   `json:"display_name"`
	Difficulty  string   `json:"difficulty"`
	AvatarIndex int      `json:"avatar_index"`
	Level       BotLevel `json:"-"`
}

// deviceAccounts is the part of runtime.NakamaModule used to provision bots.
type deviceAccounts interface {
	AuthenticateDevice(ctx context.Context, id, username string, create bool) (string, string, bool, error)
	AccountUpdateId(ctx context.Context, userID, username string, metadata map[string]interface{}, displayName, timezone, location, langTag, avatarUrl string) error
}

// Roster is the pool of bots that can be seated at a table.
type Roster struct {
	mu         sync.RWMutex
	identities []BotIdentity
	byUserID   map[string]BotIdentity
}

// NewRoster resolves the level of every identity. Identities that already
// carry a user id are indexed immediately.
func NewRoster(identities []BotIdentity) (*Roster, error) {
	r := &Roster{
		identities: make([]BotIdentity, 0, len(identities)),
		byUserID:   make(map[string]BotIdentity, len(identities)),
	}
	for i, identity := range identities {
		level, err := ParseDifficulty(identity.Difficulty)
		if err != nil {
			return nil, fmt.Errorf("bot identity %d (%s): %w", i, identity.Username, err)
		}
		identity.Level = level
		r.identities = append(r.identities, identity)
		if identity.UserID != "" {
			r.byUserID[identity.UserID] = identity
		}
	}
	return r, nil
}

// ParseRoster builds a roster from the JSON array format of data/bot_identities.json.
func ParseRoster(data []byte) (*Roster, error) {
	var identities []BotIdentity
	if err := json.Unmarshal(data, &identities); err != nil {
		return nil, fmt.Errorf("failed to unmarshal bot identities: %w", err)
	}
	return NewRoster(identities)
}

// Provision authenticates a device account for every identity with a device
// id and tags it as a bot. A failing identity does not stop the others; all
// failures are returned joined.
func (r *Roster) Provision(ctx context.Context, nk deviceAccounts, logger runtime.Logger) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	for i := range r.identities {
		identity := &r.identities[i]
		if identity.DeviceID == "" {
			continue
		}

		userID, username, _, err := nk.AuthenticateDevice(ctx, identity.DeviceID, identity.Username, true)
		if err != nil {
			logger.Error("ProvisionBots: Failed to authenticate bot %s: %v", identity.Username, err)
			errs = append(errs, fmt.Errorf("authenticate bot %s: %w", identity.Username, err))
			continue
		}
		identity.UserID = userID
		identity.Username = username
		r.byUserID[userID] = *identity

		metadata := map[string]interface{}{
			"is_bot":       true,
			"difficulty":   identity.Difficulty,
			"avatar_index": identity.AvatarIndex,
		}
		if err := nk.AccountUpdateId(ctx, userID, username, metadata, identity.DisplayName, "", "", "", ""); err != nil {
			// The account is usable, only its profile is stale.
			logger.Warn("ProvisionBots: Failed to update bot account %s: %v", userID, err)
			errs = append(errs, fmt.Errorf("update bot %s: %w", userID, err))
			continue
		}
		logger.Info("ProvisionBots: Bot %s (%s) is ready. Difficulty: %s", identity.DisplayName, userID, identity.Difficulty)
	}
	return errors.Join(errs...)
}

// Identity returns the bot for a seat index (mod roster size). Unprovisioned
// entries and an empty roster get a prefixed placeholder id.
func (r *Roster) Identity(index int) BotIdentity {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.identities) == 0 {
		return BotIdentity{
			UserID:      fmt.Sprintf("%s%d", BotIDPrefix, index),
			Username:    fmt.Sprintf("bot%d", index),
			DisplayName: fmt.Sprintf("AI Player %d", index),
			Level:       BotLevelCautious,
		}
	}
	identity := r.identities[index%len(r.identities)]
	if identity.UserID == "" {
		identity.UserID = fmt.Sprintf("%s%d", BotIDPrefix, index)
	}
	return identity
}

// Lookup returns the provisioned identity for a user id.
func (r *Roster) Lookup(userID string) (BotIdentity, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	identity, ok := r.byUserID[userID]
	return identity, ok
}

var defaultRoster atomic.Pointer[Roster]

func roster() *Roster {
	if r := defaultRoster.Load(); r != nil {
		return r
	}
	empty := &Roster{byUserID: map[string]BotIdentity{}}
	defaultRoster.CompareAndSwap(nil, empty)
	return defaultRoster.Load()
}

// LoadIdentities replaces the server roster with the profiles at path.
func LoadIdentities(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read bot identities: %w", err)
	}
	r, err := ParseRoster(data)
	if err != nil {
		return err
	}
	defaultRoster.Store(r)
	return nil
}

// ProvisionBots provisions the server roster. See Roster.Provision.
func ProvisionBots(ctx context.Context, nk deviceAccounts, logger runtime.Logger) error {
	return roster().Provision(ctx, nk, logger)
}

// GetBotIdentity returns the server roster's bot for a seat index.
func GetBotIdentity(index int) BotIdentity {
	return roster().Identity(index)
}

// GetBotConfig returns the provisioned identity for a bot user id.
func GetBotConfig(userID string) (BotIdentity, bool) {
	return roster().Lookup(userID)
}

// GetBotDisplayName returns the display name for a bot ID, or an empty string if not a bot.
func GetBotDisplayName(userID string) string {
	identity, ok := GetBotConfig(userID)
	if !ok {
		return ""
	}
	if identity.DisplayName == "" {
		return identity.Username
	}
	return identity.DisplayName
}

// IsBot reports whether the given user ID belongs to the bot pool.
func IsBot(userID string) bool {
	if strings.HasPrefix(userID, BotIDPrefix) {
		return true
	}
	_, ok := GetBotConfig(userID)
	return ok
}
