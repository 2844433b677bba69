package game

import "errors"

// Sentinel errors returned by engine and store operations. The transport
// layer maps these onto wire error codes with errors.Is; none of them are
// fatal to the process and none leave a room partially mutated.
var (
	ErrRoomNotFound        = errors.New("room not found")
	ErrRoomExists          = errors.New("room already exists")
	ErrPlayerLimitExceeded = errors.New("room is full")
	ErrGameAlreadyStarted  = errors.New("game already started")
	ErrInsufficientChips   = errors.New("insufficient chips")
	ErrInvalidAmount       = errors.New("bet amount must be positive")
	ErrMustSelectTile      = errors.New("must select a tile before confirming")
	ErrWagersConfirmed     = errors.New("wagers already confirmed")
	ErrWrongPhase          = errors.New("operation not valid in current phase")
	ErrUnauthorized        = errors.New("not authorized")
	ErrNoSuchBet           = errors.New("no matching bet")
	ErrInvalidTile         = errors.New("tile index out of range")
)
