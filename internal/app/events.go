package app

import "durak/internal/domain"

// EventKind identifies emitted domain events for Nakama dispatch.
type EventKind string

const (
	EventPlayerLeft    EventKind = "player_left"
	EventGameStarted   EventKind = "game_started"
	EventHandDealt     EventKind = "hand_dealt"
	EventCardAttacked  EventKind = "card_attacked"
	EventCardCovered   EventKind = "card_covered"
	EventTurnPassed    EventKind = "turn_passed"
	EventCardsTaken    EventKind = "cards_taken"
	EventRoundResolved EventKind = "round_resolved"
	EventHandUpdated   EventKind = "hand_updated"
	EventGameEnded     EventKind = "game_ended"
)

// Event is a domain/app event with optional targeted recipients.
type Event struct {
	Kind       EventKind
	Payload    any
	Recipients []string // user IDs; empty means broadcast
}

type PlayerLeftPayload struct {
	UserID string `json:"user_id"`
}

type GameStartedPayload struct {
	Phase          domain.Phase `json:"phase"`
	TrumpCard      string       `json:"trump_card"`
	LeaderUserID   string       `json:"leader_user_id"`
	DefenderUserID string       `json:"defender_user_id"`
	StockCount     int          `json:"stock_count"`
}

type HandDealtPayload struct {
	UserID string   `json:"user_id"`
	Hand   []string `json:"hand"`
}

type CardAttackedPayload struct {
	UserID string `json:"user_id"`
	Card   string `json:"card"`
}

type CardCoveredPayload struct {
	UserID   string `json:"user_id"`
	Attacked string `json:"attacked"`
	Covering string `json:"covering"`
}

type TurnPassedPayload struct {
	UserID string `json:"user_id"`
}

type CardsTakenPayload struct {
	UserID string   `json:"user_id"`
	Cards  []string `json:"cards"`
}

type RoundResolvedPayload struct {
	Round          int            `json:"round"`
	Outcome        domain.Outcome `json:"outcome"`
	LeaderUserID   string         `json:"leader_user_id"`
	DefenderUserID string         `json:"defender_user_id"`
	StockCount     int            `json:"stock_count"`
}

type HandUpdatedPayload struct {
	UserID string   `json:"user_id"`
	Hand   []string `json:"hand"`
}

type GameEndedPayload struct {
	LoserUserID string `json:"loser_user_id"`
	Draw        bool   `json:"draw"`
	Rounds      int    `json:"rounds"`
}
