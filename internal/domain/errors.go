package domain

import "errors"

// Validation failures returned by the engine. Callers match them with errors.Is;
// returned errors usually wrap one of these with context.
var (
	ErrInvalidPlayerCount        = errors.New("invalid player count")
	ErrDuplicatePlayer           = errors.New("duplicate or empty player id")
	ErrInsufficientCards         = errors.New("not enough cards in deck")
	ErrTableFull                 = errors.New("table is full")
	ErrUnknownPlayer             = errors.New("player not found")
	ErrInsufficientDefenderCards = errors.New("defender cannot cover another attack")
	ErrInvalidCard               = errors.New("invalid card")
	ErrCardNotHeld               = errors.New("card not held")
	ErrRankNotOnTable            = errors.New("rank not on table")
	ErrNoSuchAttack              = errors.New("no such uncovered attack")
	ErrIllegalCover              = errors.New("card does not beat attack")
	ErrNotYourTurn               = errors.New("not your turn")
	ErrInvalidCardFormat         = errors.New("invalid card format")
	ErrGameOver                  = errors.New("game is over")
)
