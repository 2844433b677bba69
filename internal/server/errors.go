package server

import (
	"errors"

	"github.com/guessbets/guessbets/internal/game"
)

// errorCode maps engine errors to stable wire codes clients can switch on.
func errorCode(err error) string {
	switch {
	case errors.Is(err, game.ErrRoomNotFound):
		return "room_not_found"
	case errors.Is(err, game.ErrRoomExists):
		return "room_exists"
	case errors.Is(err, game.ErrPlayerLimitExceeded):
		return "room_full"
	case errors.Is(err, game.ErrGameAlreadyStarted):
		return "game_already_started"
	case errors.Is(err, game.ErrInsufficientChips):
		return "insufficient_chips"
	case errors.Is(err, game.ErrInvalidAmount):
		return "invalid_amount"
	case errors.Is(err, game.ErrMustSelectTile):
		return "must_select_tile"
	case errors.Is(err, game.ErrWagersConfirmed):
		return "wagers_confirmed"
	case errors.Is(err, game.ErrWrongPhase):
		return "wrong_phase"
	case errors.Is(err, game.ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, game.ErrNoSuchBet):
		return "no_such_bet"
	case errors.Is(err, game.ErrInvalidTile):
		return "invalid_tile"
	case errors.Is(err, errPlayerRequired):
		return "invalid_message"
	default:
		return "internal_error"
	}
}
