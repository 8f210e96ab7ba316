// internal/game/errors.go
package game

import "errors"

// Validation errors. Operations wrap these with context; callers match with errors.Is.
var (
	ErrNotFound           = errors.New("game not found")
	ErrPlayerNotFound     = errors.New("player not found")
	ErrInvalidName        = errors.New("invalid player name")
	ErrInvalidPlayerCount = errors.New("max players must be between 2 and 6")
	ErrAlreadyStarted     = errors.New("game has already started")
	ErrFull               = errors.New("game is full")
	ErrDuplicateName      = errors.New("player name already taken")
	ErrNotHost            = errors.New("only the host can start the game")
	ErrNotEnoughPlayers   = errors.New("not enough players")
	ErrNotEnoughReady     = errors.New("not enough ready players")
	ErrNotActive          = errors.New("game is not active")
	ErrNotYourTurn        = errors.New("not your turn")
	ErrDeckEmpty          = errors.New("deck is empty")
	ErrCardNotInHand      = errors.New("card not in hand")
	ErrIllegalTarget      = errors.New("illegal target")
	ErrUnplayable         = errors.New("card cannot be played")
	ErrHandOverLimit      = errors.New("hand over limit")
	ErrNotEnoughGubs      = errors.New("not enough gub cards to deal")
	ErrInvalidDeck        = errors.New("invalid deck")
	ErrInvalidSnapshot    = errors.New("invalid snapshot")
	ErrRoomCodeTaken      = errors.New("room code already in use")
)

var errorCodes = []struct {
	err  error
	code string
}{
	{ErrNotFound, "not_found"},
	{ErrPlayerNotFound, "player_not_found"},
	{ErrInvalidName, "invalid_name"},
	{ErrInvalidPlayerCount, "invalid_player_count"},
	{ErrAlreadyStarted, "already_started"},
	{ErrFull, "full"},
	{ErrDuplicateName, "duplicate_name"},
	{ErrNotHost, "not_host"},
	{ErrNotEnoughPlayers, "not_enough_players"},
	{ErrNotEnoughReady, "not_enough_ready"},
	{ErrNotActive, "not_active"},
	{ErrNotYourTurn, "not_your_turn"},
	{ErrDeckEmpty, "deck_empty"},
	{ErrCardNotInHand, "card_not_in_hand"},
	{ErrIllegalTarget, "illegal_target"},
	{ErrUnplayable, "unplayable"},
	{ErrHandOverLimit, "hand_over_limit"},
	{ErrNotEnoughGubs, "not_enough_gubs"},
	{ErrInvalidDeck, "invalid_deck"},
	{ErrInvalidSnapshot, "invalid_snapshot"},
	{ErrRoomCodeTaken, "room_code_taken"},
}

// ErrorCode maps err to a stable machine-readable code for transports. Unknown errors map to "internal".
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}
	for _, ec := range errorCodes {
		if errors.Is(err, ec.err) {
			return ec.code
		}
	}
	return "internal"
}
