package server

// MessageType represents a WebSocket message type with type safety
type MessageType string

// WebSocket message type constants
// These are used for client-server communication protocol
const (
	// Client to server messages
	MessageTypeCreateRoom       MessageType = "create_room"
	MessageTypeJoinRoom         MessageType = "join_room"
	MessageTypeLeaveRoom        MessageType = "leave_room"
	MessageTypeDeleteRoom       MessageType = "delete_room"
	MessageTypeSubmitAnswer     MessageType = "submit_answer"
	MessageTypePlaceBet         MessageType = "place_bet"
	MessageTypeRemoveBet        MessageType = "remove_bet"
	MessageTypeConfirmWagers    MessageType = "confirm_wagers"
	MessageTypeRevealAnswer     MessageType = "reveal_answer"
	MessageTypeUpdateCategories MessageType = "update_categories"
	MessageTypeStartGame        MessageType = "start_game"
	MessageTypeNextRound        MessageType = "next_round"
	MessageTypeSetPhase         MessageType = "set_phase"
	MessageTypeRoomState        MessageType = "room_state"

	// Server to client messages
	MessageTypeRoomCreated      MessageType = "room_created"
	MessageTypeRoomUpdate       MessageType = "room_update"
	MessageTypePlayersUpdate    MessageType = "players_update"
	MessageTypeAnswersUpdate    MessageType = "answers_update"
	MessageTypeChipsUpdate      MessageType = "chips_update"
	MessageTypeBetsUpdate       MessageType = "bets_update"
	MessageTypeAnswersRevealed  MessageType = "answers_revealed"
	MessageTypeWagersConfirmed  MessageType = "wagers_confirmed"
	MessageTypePayoutResult     MessageType = "payout_result"
	MessageTypeGameStarted      MessageType = "game_started"
	MessageTypeRoundAdvanced    MessageType = "round_advanced"
	MessageTypePhaseChanged     MessageType = "phase_changed"
	MessageTypeCategoriesUpdate MessageType = "categories_update"
	MessageTypeRoomDeleted      MessageType = "room_deleted"
	MessageTypeLeftRoom         MessageType = "left_room"
	MessageTypeError            MessageType = "error"
)

// String returns the string representation of the message type
func (mt MessageType) String() string {
	return string(mt)
}
