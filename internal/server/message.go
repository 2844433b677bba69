package server

import (
	"encoding/json"
	"time"

	"github.com/guessbets/guessbets/internal/game"
)

// Message is the base WebSocket message envelope. Every frame in either
// direction carries a type, an opaque payload and a server timestamp.
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(messageType MessageType, data interface{}) (*Message, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Message{
		Type:      messageType,
		Data:      dataBytes,
		Timestamp: time.Now(),
	}, nil
}

// Client → Server Messages

type CreateRoomData struct {
	RoomID string `json:"roomId,omitempty"`
	HostID string `json:"hostId"`
}

type JoinRoomData struct {
	RoomID string       `json:"roomId"`
	Player *game.Player `json:"player,omitempty"`
	IsHost bool         `json:"isHost,omitempty"`
	HostID string       `json:"hostId,omitempty"`
}

type LeaveRoomData struct {
	RoomID   string `json:"roomId"`
	PlayerID string `json:"playerId"`
}

type DeleteRoomData struct {
	RoomID string `json:"roomId"`
	HostID string `json:"hostId"`
}

type SubmitAnswerData struct {
	RoomID   string  `json:"roomId"`
	PlayerID string  `json:"playerId"`
	Guess    float64 `json:"guess"`
}

type PlaceBetData struct {
	RoomID    string `json:"roomId"`
	PlayerID  string `json:"playerId"`
	TileIndex int    `json:"tileIndex"`
	Amount    int    `json:"amount"`
}

type RemoveBetData struct {
	RoomID    string `json:"roomId"`
	PlayerID  string `json:"playerId"`
	TileIndex int    `json:"tileIndex"`
}

type ConfirmWagersData struct {
	RoomID   string `json:"roomId"`
	PlayerID string `json:"playerId"`
}

type RevealAnswerData struct {
	RoomID string `json:"roomId"`
	HostID string `json:"hostId"`
}

type UpdateCategoriesData struct {
	RoomID     string   `json:"roomId"`
	Categories []string `json:"categories"`
}

type StartGameData struct {
	RoomID     string   `json:"roomId"`
	Categories []string `json:"categories,omitempty"`
}

type NextRoundData struct {
	RoomID string `json:"roomId"`
}

type SetPhaseData struct {
	RoomID string `json:"roomId"`
	Phase  string `json:"phase"`
}

type RoomStateData struct {
	RoomID string `json:"roomId"`
}

// Server → Client Messages

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type RoomCreatedData struct {
	RoomID string `json:"roomId"`
	HostID string `json:"hostId"`
}

type PlayersUpdateData struct {
	Players []game.Player `json:"players"`
}

type ChipsUpdateData struct {
	Chips map[string]int `json:"chips"`
}

type BetsUpdateData struct {
	Bets  []game.Bet     `json:"bets"`
	Chips map[string]int `json:"chips"`
}

type CategoriesUpdateData struct {
	Categories []string `json:"selectedCategories"`
}

type RoomDeletedData struct {
	RoomID string `json:"roomId"`
}

type LeftRoomData struct {
	RoomID   string `json:"roomId"`
	PlayerID string `json:"playerId"`
}

type PhaseChangedData struct {
	Phase game.Phase `json:"phase"`
}
