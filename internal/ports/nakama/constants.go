package nakama

const (
	// RpcQuickMatch is the Nakama RPC id clients call to find or create a lobby-capable match.
	RpcQuickMatch = "quick_match"
	// RpcVerifyReceipt checks a signed game result.
	RpcVerifyReceipt = "verify_receipt"

	// MatchNameDurak is the authoritative match handler name registered with Nakama.
	MatchNameDurak = "durak_match"

	// GameConfigPath and BotIdentitiesPath are resolved relative to the Nakama data directory.
	GameConfigPath    = "data/game_config.json"
	BotIdentitiesPath = "data/bot_identities.json"
)

// Runtime env keys.
const (
	EnvBotsEnabled   = "durak_bots_enabled"
	EnvBotMinDelay   = "durak_bot_min_delay_seconds"
	EnvBotMaxDelay   = "durak_bot_max_delay_seconds"
	EnvBotAutoFill   = "durak_bot_auto_fill_delay_seconds"
	EnvReceiptSecret = "durak_receipt_secret"
	EnvTurnDuration  = "durak_turn_duration_seconds"
)

// Op codes for client messages and server events.
const (
	// Client -> Server
	OpStartGame int64 = 1
	OpAttack    int64 = 2
	OpDefend    int64 = 3
	OpPass      int64 = 4
	OpConcede   int64 = 5

	// Server -> Client events
	OpPlayerJoined  int64 = 101
	OpPlayerLeft    int64 = 102
	OpGameStarted   int64 = 103
	OpHandDealt     int64 = 104 // send privately
	OpCardAttacked  int64 = 105
	OpCardCovered   int64 = 106
	OpTurnPassed    int64 = 107
	OpCardsTaken    int64 = 108
	OpRoundResolved int64 = 109
	OpHandUpdated   int64 = 110 // send privately
	OpGameEnded     int64 = 111
	OpMatchState    int64 = 112 // send privately
	OpGameError     int64 = 113 // send privately
)
