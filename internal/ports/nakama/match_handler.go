package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"math/rand"
	"strconv"

	"durak/internal/app"
	"durak/internal/bot"
	"durak/internal/config"
	"durak/internal/domain"
	"durak/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

const (
	labelGame         = "durak"
	labelStateLobby   = "lobby"
	labelStatePlaying = "playing"
)

// MatchState holds the authoritative runtime state for the Nakama match handler.
type MatchState struct {
	MatchID              string                      `json:"match_id"`
	Seats                []string                    `json:"seats"`                   // User IDs, empty string means seat is empty
	OwnerSeat            int                         `json:"owner_seat"`              // Seat index of the match owner
	Tick                 int64                       `json:"tick"`                    // Current tick of the match
	Presences            map[string]runtime.Presence `json:"-"`                       // Map UserId -> Presence for targeted messaging
	App                  *app.Service                `json:"-"`                       // Durak app service
	Game                 *domain.Game                `json:"-"`                       // Current game (nil if in lobby)
	TurnDuration         int                         `json:"turn_duration"`           // Seconds a human may stall before the server moves for them
	LastActionTick       int64                       `json:"last_action_tick"`        // Tick of the last accepted action
	BotsEnabled          bool                        `json:"bots_enabled"`            // Whether AI players are allowed
	BotMinDelay          int                         `json:"bot_min_delay"`           // Min seconds a bot waits
	BotMaxDelay          int                         `json:"bot_max_delay"`           // Max seconds a bot waits
	BotAutoFillDelay     int                         `json:"bot_auto_fill_delay"`     // Seconds to wait before auto-filling with bots
	BotWaitUntil         int64                       `json:"bot_wait_until"`          // Tick when the pending bot move is played
	LastSinglePlayerTick int64                       `json:"last_single_player_tick"` // Tick when a single player started waiting
	Bots                 map[string]*bot.Agent       `json:"-"`                       // Agents for bot seats and for humans who left mid-game
	Snapshots            ports.SnapshotStore         `json:"-"`                       // Spectator snapshot persistence
	Receipts             *app.ReceiptService         `json:"-"`                       // Signs game results
	LastReceipt          string                      `json:"last_receipt"`            // Receipt of the last finished game
}

func (ms *MatchState) GetOpenSeatsCount() int {
	count := 0
	for _, seat := range ms.Seats {
		if seat == "" {
			count++
		}
	}
	return count
}

func (ms *MatchState) GetOccupiedSeatCount() int {
	return app.OccupiedSeats(ms.Seats)
}

func (ms *MatchState) GetHumanPlayerCount() int {
	count := 0
	for _, seat := range ms.Seats {
		if seat != "" && !isBotUserId(seat) {
			count++
		}
	}
	return count
}

// isBotUserId reports whether the given user id represents a bot seat.
func isBotUserId(userId string) bool {
	return bot.IsBot(userId)
}

// isHumanSeat reports whether the seat index belongs to a human player.
func isHumanSeat(seats []string, seatIndex int) bool {
	if seatIndex < 0 || seatIndex >= len(seats) {
		return false
	}
	userId := seats[seatIndex]
	return userId != "" && !isBotUserId(userId)
}

// findFirstHumanSeat returns the first seat index with a human occupant or -1 if none exist.
func findFirstHumanSeat(seats []string) int {
	for i, userId := range seats {
		if userId != "" && !isBotUserId(userId) {
			return i
		}
	}
	return -1
}

// shouldTerminateNoHumans returns true when no seated human is connected.
func shouldTerminateNoHumans(seats []string, presences map[string]runtime.Presence) bool {
	for _, userId := range seats {
		if userId == "" || isBotUserId(userId) {
			continue
		}
		if _, ok := presences[userId]; ok {
			return false
		}
	}
	return true
}

// autoFillTarget is the number of occupied seats the bot auto-fill aims for.
// One seat stays open for another human.
func autoFillTarget(seatCount int) int {
	if seatCount <= 2 {
		return seatCount
	}
	return seatCount - 1
}

// receiptService is configured by InitModule from the runtime env.
var receiptService *app.ReceiptService

func newMatchHandler() *matchHandler {
	return &matchHandler{}
}

type matchHandler struct{}

// MatchInit is called when the match is created.
func (mh *matchHandler) MatchInit(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, params map[string]interface{}) (interface{}, int, string) {
	logger.Debug("MatchInit: Initializing match handler.")

	cfg := config.GetGameConfig()
	state := &MatchState{
		Seats:            make([]string, cfg.MaxPlayers),
		OwnerSeat:        -1,
		Presences:        make(map[string]runtime.Presence),
		App:              app.NewService(nil, cfg.GameOptions()...),
		TurnDuration:     cfg.TurnDurationSeconds,
		BotsEnabled:      cfg.BotsEnabled,
		BotMinDelay:      cfg.BotMinDelaySeconds,
		BotMaxDelay:      cfg.BotMaxDelaySeconds,
		BotAutoFillDelay: cfg.BotAutoFillDelaySeconds,
		Bots:             make(map[string]*bot.Agent),
		Receipts:         receiptService,
	}
	if matchID, ok := ctx.Value(runtime.RUNTIME_CTX_MATCH_ID).(string); ok {
		state.MatchID = matchID
	}
	if nk != nil {
		state.Snapshots = NewNakamaSnapshotAdapter(nk)
	}
	if env, ok := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string); ok {
		applyEnvOverrides(state, env)
	}

	label, err := encodeLabel(labelFor(state))
	if err != nil {
		logger.Error("MatchInit: Failed to marshal label: %v", err)
		return nil, 0, ""
	}

	tickRate := 1 // 1 tick per second; delays are counted in ticks
	return state, tickRate, label
}

// applyEnvOverrides reads bot and turn settings from the runtime env.
func applyEnvOverrides(state *MatchState, env map[string]string) {
	if val, ok := env[EnvBotsEnabled]; ok {
		state.BotsEnabled = val == "true"
	}
	intEnv := func(key string, target *int) {
		if val, ok := env[key]; ok {
			if i, err := strconv.Atoi(val); err == nil && i >= 0 {
				*target = i
			}
		}
	}
	intEnv(EnvBotMinDelay, &state.BotMinDelay)
	intEnv(EnvBotMaxDelay, &state.BotMaxDelay)
	intEnv(EnvBotAutoFill, &state.BotAutoFillDelay)
	intEnv(EnvTurnDuration, &state.TurnDuration)
	if state.BotMaxDelay < state.BotMinDelay {
		state.BotMaxDelay = state.BotMinDelay
	}
}

func (mh *matchHandler) MatchJoinAttempt(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presence runtime.Presence, metadata map[string]string) (interface{}, bool, string) {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state, false, "state not found"
	}

	// Seated players may always reconnect.
	if app.SeatOf(matchState.Seats, presence.GetUserId()) >= 0 {
		return state, true, ""
	}
	if matchState.Game != nil {
		return state, false, "Game in progress"
	}

	// Allow join if there is an empty seat OR a bot to replace
	if matchState.GetOpenSeatsCount() <= 0 {
		hasBot := false
		for _, seat := range matchState.Seats {
			if isBotUserId(seat) {
				hasBot = true
				break
			}
		}
		if !hasBot {
			return state, false, "Match full"
		}
	}

	return state, true, ""
}

func (mh *matchHandler) MatchJoin(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchJoin: state not found")
		return state
	}

	rejoined := false
	for _, p := range presences {
		userID := p.GetUserId()
		matchState.Presences[userID] = p

		if seat := app.SeatOf(matchState.Seats, userID); seat >= 0 {
			// Reconnect: the human takes back control from the stand-in agent.
			delete(matchState.Bots, userID)
			rejoined = true
			logger.Info("MatchJoin: User %s rejoined seat %d", userID, seat)
			continue
		}
		if matchState.Game != nil {
			logger.Warn("MatchJoin: User %s joined a game in progress without a seat.", userID)
			continue
		}

		// Assign seat: Try empty seats first, then bots
		if seat := app.LowestAvailableSeat(matchState.Seats); seat >= 0 {
			matchState.Seats[seat] = userID
			continue
		}
		assigned := false
		for i, seatUserId := range matchState.Seats {
			if isBotUserId(seatUserId) {
				logger.Info("MatchJoin: Replacing bot %s with human %s in seat %d", seatUserId, userID, i)
				delete(matchState.Bots, seatUserId)
				matchState.Seats[i] = userID
				assigned = true
				break
			}
		}
		if !assigned {
			logger.Warn("MatchJoin: User %s joined but no seat (empty or bot) was available.", userID)
		}
	}

	// Ensure owner seat is assigned to a human player only.
	if !isHumanSeat(matchState.Seats, matchState.OwnerSeat) {
		matchState.OwnerSeat = findFirstHumanSeat(matchState.Seats)
		if matchState.OwnerSeat >= 0 {
			logger.Debug("MatchJoin: Owner set to human seat %d.", matchState.OwnerSeat)
		}
	}

	mh.updateLabel(matchState, dispatcher, logger)
	mh.broadcastMatchState(matchState, dispatcher, logger)
	if rejoined && matchState.Game != nil {
		mh.sendGameSnapshots(matchState, dispatcher, logger)
	}

	return matchState
}

// MatchLeave is called when one or more players leave the match.
func (mh *matchHandler) MatchLeave(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchLeave: state not found")
		return state
	}

	for _, p := range presences {
		userID := p.GetUserId()
		delete(matchState.Presences, userID)

		seat := app.SeatOf(matchState.Seats, userID)
		if seat < 0 {
			continue
		}
		if matchState.Game != nil {
			if _, inGame := matchState.Game.Player(userID); inGame {
				// The seat is kept for a reconnect; an agent plays until then.
				agent, err := bot.NewAgent(userID)
				if err != nil {
					logger.Error("MatchLeave: Failed to create stand-in for %s: %v", userID, err)
				} else {
					matchState.Bots[userID] = agent
				}
				logger.Info("MatchLeave: User %s left mid-game, seat %d kept.", userID, seat)
				mh.broadcastEvent(matchState, dispatcher, logger, app.Event{
					Kind:    app.EventPlayerLeft,
					Payload: app.PlayerLeftPayload{UserID: userID},
				}, nil)
				continue
			}
		}
		matchState.Seats[seat] = ""
		logger.Debug("MatchLeave: User %s left, seat %d freed.", userID, seat)
		mh.broadcastEvent(matchState, dispatcher, logger, app.Event{
			Kind:    app.EventPlayerLeft,
			Payload: app.PlayerLeftPayload{UserID: userID},
		}, nil)
	}

	if shouldTerminateNoHumans(matchState.Seats, matchState.Presences) {
		logger.Info("MatchLeave: Terminating match with no humans.")
		mh.saveSnapshot(ctx, matchState, logger)
		return nil
	}

	mh.reassignOwner(matchState, logger)
	mh.updateLabel(matchState, dispatcher, logger)

	return matchState
}

// reassignOwner moves ownership to the first connected human when the owner is gone.
func (mh *matchHandler) reassignOwner(state *MatchState, logger runtime.Logger) {
	if isHumanSeat(state.Seats, state.OwnerSeat) {
		if _, connected := state.Presences[state.Seats[state.OwnerSeat]]; connected {
			return
		}
	}
	newOwnerSeat := -1
	for i, userID := range state.Seats {
		if _, connected := state.Presences[userID]; connected && isHumanSeat(state.Seats, i) {
			newOwnerSeat = i
			break
		}
	}
	if newOwnerSeat != state.OwnerSeat {
		state.OwnerSeat = newOwnerSeat
		logger.Debug("MatchLeave: Owner set to seat %d.", newOwnerSeat)
	}
}

func (mh *matchHandler) MatchLoop(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, messages []runtime.MatchData) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state
	}

	matchState.Tick = tick

	// Handle incoming messages
	for _, msg := range messages {
		switch msg.GetOpCode() {
		case OpStartGame:
			mh.handleStartGame(ctx, matchState, dispatcher, logger, msg)
		case OpAttack, OpDefend, OpPass, OpConcede:
			mh.handleAction(ctx, matchState, dispatcher, logger, msg)
		default:
			logger.Warn("MatchLoop: Unknown opcode received: %d", msg.GetOpCode())
		}
	}

	mh.checkTurnTimeout(ctx, matchState, dispatcher, logger)

	// AI Logic. Stand-ins for departed humans play even with bots disabled.
	if matchState.BotsEnabled || len(matchState.Bots) > 0 {
		mh.processBots(ctx, matchState, dispatcher, logger)
	}

	return matchState
}

func (mh *matchHandler) processBots(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	// 1. Auto-fill lobby with bots if there's only one human player after delay
	if state.Game == nil && state.BotsEnabled {
		if state.GetHumanPlayerCount() == 1 {
			if state.LastSinglePlayerTick == 0 {
				state.LastSinglePlayerTick = state.Tick
				logger.Debug("processBots: Single player detected, starting auto-fill timer.")
			}

			if state.Tick-state.LastSinglePlayerTick >= int64(state.BotAutoFillDelay) {
				added := false
				target := autoFillTarget(len(state.Seats))
				for i, seat := range state.Seats {
					if state.GetOccupiedSeatCount() >= target {
						break
					}
					if seat != "" {
						continue
					}
					identity := bot.GetBotIdentity(i)
					botID := identity.UserID
					if app.SeatOf(state.Seats, botID) >= 0 {
						continue
					}
					state.Seats[i] = botID

					agent, err := bot.NewAgent(botID)
					if err != nil {
						logger.Error("Failed to create bot agent for %s: %v", botID, err)
					} else {
						state.Bots[botID] = agent
					}

					logger.Info("processBots: Added bot %s (%s) to seat %d", identity.Username, botID, i)
					added = true
				}
				if added {
					mh.updateLabel(state, dispatcher, logger)
					mh.broadcastMatchState(state, dispatcher, logger)
				}
				// Reset timer so it doesn't keep "adding" every tick
				state.LastSinglePlayerTick = 0
			}
		} else {
			// Reset timer if 0 or >1 humans
			state.LastSinglePlayerTick = 0
		}
	}

	// 2. Handle bot moves in-game
	if state.Game == nil || state.Game.Phase() == domain.PhaseGameOver {
		return
	}
	actor, move := mh.nextBotMove(state, logger)
	if actor == "" {
		// No bot has anything to do, reset wait if it was set
		state.BotWaitUntil = 0
		return
	}

	if state.BotWaitUntil == 0 {
		delay := state.BotMinDelay
		if state.BotMaxDelay > state.BotMinDelay {
			delay += rand.Intn(state.BotMaxDelay - state.BotMinDelay + 1)
		}
		state.BotWaitUntil = state.Tick + int64(delay)
		logger.Debug("processBots: Bot %s will act at tick %d (current %d)", actor, state.BotWaitUntil, state.Tick)
	}
	if state.Tick < state.BotWaitUntil {
		return
	}
	state.BotWaitUntil = 0

	events, err := bot.ApplyMove(state.App, state.Game, actor, move)
	if err != nil {
		logger.Error("processBots: Bot %s move %s rejected: %v", actor, move, err)
		return
	}
	mh.handleEvents(ctx, state, dispatcher, logger, events)
}

// nextBotMove returns the first agent in seat order with something to play.
func (mh *matchHandler) nextBotMove(state *MatchState, logger runtime.Logger) (string, bot.Move) {
	for _, userID := range state.Seats {
		agent, ok := state.Bots[userID]
		if !ok {
			continue
		}
		move, err := agent.Play(state.Game)
		if err != nil {
			logger.Error("processBots: Bot %s failed to calculate move: %v", userID, err)
			continue
		}
		if !move.Idle() {
			return userID, move
		}
	}
	return "", bot.Move{}
}

// checkTurnTimeout moves for a human who holds up the table past the turn duration.
func (mh *matchHandler) checkTurnTimeout(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	if state.Game == nil || state.TurnDuration <= 0 {
		return
	}
	if state.Tick-state.LastActionTick < int64(state.TurnDuration) {
		return
	}

	// One forced move per timeout; the next stalled player gets a full turn.
	for _, userID := range state.Seats {
		if _, standIn := state.Bots[userID]; standIn || isBotUserId(userID) || userID == "" {
			continue
		}
		move, ok := stalledMove(state.Game, userID)
		if !ok {
			continue
		}
		logger.Info("TurnTimeout: Playing %s for %s", move, userID)
		events, err := bot.ApplyMove(state.App, state.Game, userID, move)
		if err != nil {
			logger.Error("TurnTimeout: Move %s for %s rejected: %v", move, userID, err)
			continue
		}
		mh.handleEvents(ctx, state, dispatcher, logger, events)
		break
	}
	state.LastActionTick = state.Tick
}

// stalledMove returns the move that unblocks the table on behalf of userID, if the player is holding it up.
func stalledMove(game *domain.Game, userID string) (bot.Move, bool) {
	pl, ok := game.Player(userID)
	if !ok || pl.Out {
		return bot.Move{}, false
	}
	table := game.Table()
	switch {
	case pl.IsDefender && table.UncoveredCount() > 0,
		pl.IsAttacker && pl.StartsRound && table.Len() == 0:
		move, err := bot.NewCautiousBrain().CalculateMove(game, pl)
		if err != nil || move.Idle() {
			return bot.Move{}, false
		}
		return move, true
	case pl.IsAttacker && table.Len() > 0 && table.AllCovered() && pl.HandSize() > 0 && !game.HasPassed(userID):
		return bot.Move{Kind: bot.MovePass}, true
	}
	return bot.Move{}, false
}

type lobbyPlayer struct {
	UserID      string `json:"user_id"`
	Seat        int    `json:"seat"`
	IsOwner     bool   `json:"is_owner"`
	IsBot       bool   `json:"is_bot"`
	Connected   bool   `json:"connected"`
	DisplayName string `json:"display_name"`
	HandSize    int    `json:"hand_size"`
}

type lobbyMessage struct {
	Seats     []string      `json:"seats"`
	OwnerSeat int           `json:"owner_seat"`
	Tick      int64         `json:"tick"`
	InGame    bool          `json:"in_game"`
	Players   []lobbyPlayer `json:"players"`
}

func (mh *matchHandler) broadcastMatchState(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	msg := lobbyMessage{
		Seats:     state.Seats,
		OwnerSeat: state.OwnerSeat,
		Tick:      state.Tick,
		InGame:    state.Game != nil,
		Players:   []lobbyPlayer{},
	}
	for i, userId := range state.Seats {
		if userId == "" {
			continue
		}

		displayName := userId
		p, connected := state.Presences[userId]
		if connected {
			displayName = p.GetUsername()
		} else if name := bot.GetBotDisplayName(userId); name != "" {
			displayName = name
		}

		handSize := 0
		if state.Game != nil {
			if pl, ok := state.Game.Player(userId); ok {
				handSize = pl.HandSize()
			}
		}

		msg.Players = append(msg.Players, lobbyPlayer{
			UserID:      userId,
			Seat:        i,
			IsOwner:     i == state.OwnerSeat,
			IsBot:       isBotUserId(userId),
			Connected:   connected,
			DisplayName: displayName,
			HandSize:    handSize,
		})
	}

	bytes, err := encodeMessage(msg)
	if err != nil {
		logger.Error("Failed to marshal match state: %v", err)
		return
	}
	dispatcher.BroadcastMessage(OpPlayerJoined, bytes, nil, nil, true)
}

type gameStateMessage struct {
	Seats        []string        `json:"seats"`
	OwnerSeat    int             `json:"owner_seat"`
	Tick         int64           `json:"tick"`
	TurnDeadline int64           `json:"turn_deadline"`
	Game         domain.Snapshot `json:"game"`
}

// sendGameSnapshots sends every connected seated player a snapshot that reveals only their own hand.
func (mh *matchHandler) sendGameSnapshots(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	if state.Game == nil {
		return
	}
	for _, userID := range state.Seats {
		presence, ok := state.Presences[userID]
		if !ok {
			continue
		}
		msg := gameStateMessage{
			Seats:     state.Seats,
			OwnerSeat: state.OwnerSeat,
			Tick:      state.Tick,
			Game:      state.Game.Serialize(userID),
		}
		if state.TurnDuration > 0 {
			msg.TurnDeadline = state.LastActionTick + int64(state.TurnDuration)
		}
		bytes, err := encodeMessage(msg)
		if err != nil {
			logger.Error("Failed to marshal game snapshot for %s: %v", userID, err)
			continue
		}
		dispatcher.BroadcastMessage(OpMatchState, bytes, []runtime.Presence{presence}, nil, true)
	}
}

func (mh *matchHandler) handleStartGame(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	senderSeat := app.SeatOf(state.Seats, senderID)

	logger.Info("StartGame: Request received from %s (seat=%d, owner_seat=%d, occupied=%d)", senderID, senderSeat, state.OwnerSeat, state.GetOccupiedSeatCount())

	if state.Game != nil {
		logger.Warn("StartGame: Game already in progress.")
		mh.sendError(state, dispatcher, logger, senderID, errorCode(app.ErrGameInProgress), app.ErrGameInProgress.Error())
		return
	}
	if senderSeat < 0 || senderSeat != state.OwnerSeat {
		logger.Warn("StartGame: User %s tried to start game but is not owner (owner_seat=%d)", senderID, state.OwnerSeat)
		mh.sendError(state, dispatcher, logger, senderID, errorCode(app.ErrNotOwner), app.ErrNotOwner.Error())
		return
	}

	game, events, err := state.App.StartGame(state.Seats)
	if err != nil {
		logger.Warn("StartGame: Failed to start game: %v", err)
		mh.sendError(state, dispatcher, logger, senderID, errorCode(err), err.Error())
		return
	}

	state.Game = game
	state.LastReceipt = ""
	state.LastActionTick = state.Tick
	state.BotWaitUntil = 0
	mh.resetAgents(state, logger)

	mh.updateLabel(state, dispatcher, logger)
	mh.handleEvents(ctx, state, dispatcher, logger, events)

	logger.Info("StartGame: Game started with %d players.", len(game.Players()))
}

// resetAgents gives every bot seat a fresh agent so no memory leaks between games.
func (mh *matchHandler) resetAgents(state *MatchState, logger runtime.Logger) {
	state.Bots = make(map[string]*bot.Agent)
	for _, userID := range state.Seats {
		if !isBotUserId(userID) {
			continue
		}
		agent, err := bot.NewAgent(userID)
		if err != nil {
			logger.Error("StartGame: Failed to create bot agent for %s: %v", userID, err)
			continue
		}
		state.Bots[userID] = agent
	}
}

type cardRequest struct {
	Card string `json:"card"`
}

type defendRequest struct {
	Attacked string `json:"attacked"`
	Covering string `json:"covering"`
}

// handleAction decodes a player action, applies it and dispatches the resulting events.
func (mh *matchHandler) handleAction(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	if state.Game == nil {
		logger.Warn("handleAction: Game not started.")
		mh.sendError(state, dispatcher, logger, senderID, errorCode(app.ErrNoGame), app.ErrNoGame.Error())
		return
	}

	var (
		events []app.Event
		err    error
	)
	switch msg.GetOpCode() {
	case OpAttack:
		var req cardRequest
		if err = decodeRequest(msg.GetData(), &req); err == nil {
			events, err = state.App.Attack(state.Game, senderID, req.Card)
		}
	case OpDefend:
		var req defendRequest
		if err = decodeRequest(msg.GetData(), &req); err == nil {
			events, err = state.App.Defend(state.Game, senderID, req.Attacked, req.Covering)
		}
	case OpPass:
		events, err = state.App.PassTurn(state.Game, senderID)
	case OpConcede:
		events, err = state.App.Concede(state.Game, senderID)
	}
	if err != nil {
		logger.Warn("handleAction: User %s opcode %d rejected: %v", senderID, msg.GetOpCode(), err)
		mh.sendError(state, dispatcher, logger, senderID, errorCode(err), err.Error())
		return
	}

	mh.handleEvents(ctx, state, dispatcher, logger, events)
}

func decodeRequest(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return errors.Join(app.ErrBadRequest, err)
	}
	return nil
}

// handleEvents dispatches events, refreshes every player's view and persists round boundaries.
func (mh *matchHandler) handleEvents(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, events []app.Event) {
	persist, ended := false, false
	for _, ev := range events {
		var extra map[string]any
		switch ev.Kind {
		case app.EventRoundResolved:
			persist = true
		case app.EventGameEnded:
			persist, ended = true, true
			if receipt := mh.issueReceipt(state, logger); receipt != "" {
				extra = map[string]any{"receipt": receipt}
			}
		}
		mh.broadcastEvent(state, dispatcher, logger, ev, extra)
	}

	state.LastActionTick = state.Tick
	mh.sendGameSnapshots(state, dispatcher, logger)
	if persist {
		mh.saveSnapshot(ctx, state, logger)
	}
	if ended {
		mh.finishGame(state, dispatcher, logger)
	}
}

func (mh *matchHandler) issueReceipt(state *MatchState, logger runtime.Logger) string {
	if state.Receipts == nil {
		return ""
	}
	token, err := state.Receipts.Issue(state.MatchID, state.Game)
	if err != nil {
		logger.Warn("Receipt: Not issued for match %s: %v", state.MatchID, err)
		return ""
	}
	state.LastReceipt = token
	return token
}

func (mh *matchHandler) saveSnapshot(ctx context.Context, state *MatchState, logger runtime.Logger) {
	if state.Snapshots == nil || state.Game == nil {
		return
	}
	if err := state.Snapshots.SaveSnapshot(ctx, state.MatchID, state.Game.Serialize("")); err != nil {
		logger.Error("Snapshot: Failed to save match %s: %v", state.MatchID, err)
	}
}

// finishGame returns the match to the lobby and frees the seats of players who left.
func (mh *matchHandler) finishGame(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	state.Game = nil
	state.BotWaitUntil = 0
	for i, userID := range state.Seats {
		if userID == "" || isBotUserId(userID) {
			continue
		}
		if _, connected := state.Presences[userID]; !connected {
			delete(state.Bots, userID)
			state.Seats[i] = ""
			logger.Debug("FinishGame: Freed seat %d of departed user %s.", i, userID)
		}
	}
	mh.reassignOwner(state, logger)
	mh.updateLabel(state, dispatcher, logger)
	mh.broadcastMatchState(state, dispatcher, logger)
}

// broadcastEvent handles the conversion and dispatching of app events to Nakama.
func (mh *matchHandler) broadcastEvent(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, ev app.Event, extra map[string]any) {
	opCode, bytes, err := encodeEvent(ev, extra)
	if err != nil {
		logger.Error("Failed to marshal event %v: %v", ev.Kind, err)
		return
	}

	// Determine recipients (default to broadcast)
	var recipients []runtime.Presence
	if len(ev.Recipients) > 0 {
		for _, uid := range ev.Recipients {
			if p, ok := state.Presences[uid]; ok {
				recipients = append(recipients, p)
			}
		}

		// If we had intended recipients but none are connected (e.g. they are bots),
		// we MUST NOT broadcast to everyone else.
		if len(recipients) == 0 {
			return
		}
	}

	dispatcher.BroadcastMessage(opCode, bytes, recipients, nil, true)
}

type errorMessage struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// sendError sends a game error to a specific user.
func (mh *matchHandler) sendError(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID string, code int, message string) {
	bytes, err := encodeMessage(errorMessage{Code: code, Message: message})
	if err != nil {
		logger.Error("Failed to marshal game error: %v", err)
		return
	}

	presence, ok := state.Presences[userID]
	if !ok {
		logger.Warn("Cannot send error to %s: Presence not found", userID)
		return
	}

	dispatcher.BroadcastMessage(OpGameError, bytes, []runtime.Presence{presence}, nil, true)
}

// errorCode maps rejection reasons to HTTP-like status codes for clients.
func errorCode(err error) int {
	switch {
	case errors.Is(err, app.ErrBadRequest),
		errors.Is(err, domain.ErrInvalidCardFormat),
		errors.Is(err, domain.ErrInvalidCard):
		return 400
	case errors.Is(err, app.ErrNotOwner):
		return 403
	case errors.Is(err, domain.ErrNotYourTurn),
		errors.Is(err, domain.ErrGameOver),
		errors.Is(err, app.ErrNoGame),
		errors.Is(err, app.ErrGameInProgress),
		errors.Is(err, app.ErrTooFewPlayers):
		return 409
	default:
		return 422
	}
}

func labelFor(state *MatchState) MatchLabel {
	labelState := labelStateLobby
	if state.Game != nil {
		labelState = labelStatePlaying
	}
	return MatchLabel{
		Game:       labelGame,
		Open:       state.GetOpenSeatsCount(),
		State:      labelState,
		MaxPlayers: len(state.Seats),
	}
}

func (mh *matchHandler) updateLabel(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	label, err := encodeLabel(labelFor(state))
	if err != nil {
		logger.Error("UpdateLabel: Failed to marshal: %v", err)
		return
	}
	if err := dispatcher.MatchLabelUpdate(label); err != nil {
		logger.Error("UpdateLabel: Failed to update: %v", err)
	}
}

func (mh *matchHandler) MatchTerminate(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, graceSeconds int) interface{} {
	logger.Debug("MatchTerminate: Match terminated with %d seconds of grace", graceSeconds)
	if matchState, ok := state.(*MatchState); ok && matchState.Game != nil {
		mh.saveSnapshot(ctx, matchState, logger)
	}
	return state
}

func (mh *matchHandler) MatchSignal(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, data string) (interface{}, string) {
	return state, ""
}
