package server

import (
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/guessbets/guessbets/internal/game"
	"github.com/guessbets/guessbets/internal/roomcode"
)

var errPlayerRequired = errors.New("join_room requires a player payload")

// RoomService mediates between WebSocket connections and the game engine.
// It resolves rooms, applies engine operations and fans the resulting
// payloads out to everyone in the room. Engine calls hold the room lock for
// the whole operation, so auto transitions (all answered, all confirmed)
// are computed exactly once and broadcast from here.
type RoomService struct {
	store  *game.Store
	engine *game.Engine
	server *Server
	logger zerolog.Logger
}

// NewRoomService creates a room service backed by the given store and engine
func NewRoomService(logger zerolog.Logger, store *game.Store, engine *game.Engine, server *Server) *RoomService {
	return &RoomService{
		store:  store,
		engine: engine,
		server: server,
		logger: logger.With().Str("component", "rooms").Logger(),
	}
}

// CreateRoom creates a room, or re-claims host on an existing one so a host
// whose page reloaded lands back in their room.
func (rs *RoomService) CreateRoom(c *Connection, data CreateRoomData) error {
	id := roomcode.Normalize(data.RoomID)
	if id == "" {
		id = roomcode.Generate()
	}

	room, err := rs.store.Create(id, data.HostID, rs.engine.Config().TotalRounds)
	if errors.Is(err, game.ErrRoomExists) {
		existing, ok := rs.store.Get(id)
		if !ok {
			return game.ErrRoomNotFound
		}
		existing.ClaimHost(data.HostID)
		rs.logger.Info().Str("roomId", id).Str("hostId", data.HostID).Msg("Host re-claimed existing room")
		room = existing
	} else if err != nil {
		return err
	}

	c.SetPlayer(data.HostID)
	c.SetRoom(id)
	rs.store.Touch(id)

	rs.sendTo(c, MessageTypeRoomCreated, RoomCreatedData{RoomID: id, HostID: room.HostID()})
	rs.broadcastSnapshot(room)
	return nil
}

// JoinRoom adds a player to the roster, or attaches a host connection
// without adding it. Players joining without an id get one assigned.
func (rs *RoomService) JoinRoom(c *Connection, data JoinRoomData) error {
	room, ok := rs.store.Get(roomcode.Normalize(data.RoomID))
	if !ok {
		return game.ErrRoomNotFound
	}

	if data.IsHost {
		if data.HostID != "" {
			room.ClaimHost(data.HostID)
			c.SetPlayer(data.HostID)
		}
		c.SetRoom(room.ID())
		rs.store.Touch(room.ID())
		rs.sendTo(c, MessageTypeRoomUpdate, room.Snapshot())
		return nil
	}

	if data.Player == nil {
		return errPlayerRequired
	}

	player := *data.Player
	if player.ID == "" {
		player.ID = uuid.NewString()
	}

	if err := rs.engine.AddPlayer(room, player); err != nil {
		return err
	}

	c.SetPlayer(player.ID)
	c.SetRoom(room.ID())
	rs.store.Touch(room.ID())

	snap := room.Snapshot()
	rs.broadcast(room.ID(), MessageTypePlayersUpdate, PlayersUpdateData{Players: snap.Players})
	rs.broadcast(room.ID(), MessageTypeChipsUpdate, ChipsUpdateData{Chips: snap.Chips})
	rs.broadcast(room.ID(), MessageTypeCategoriesUpdate, CategoriesUpdateData{Categories: snap.Categories})
	rs.broadcast(room.ID(), MessageTypeRoomUpdate, snap)
	return nil
}

// LeaveRoom removes a player from the roster. Outstanding bets are refunded
// before removal; if the departure completes the answer round, the wager
// phase payload is broadcast too.
func (rs *RoomService) LeaveRoom(c *Connection, data LeaveRoomData) error {
	room, ok := rs.store.Get(roomcode.Normalize(data.RoomID))
	if !ok {
		return game.ErrRoomNotFound
	}

	removed, ws := rs.engine.RemovePlayer(room, data.PlayerID)
	c.SetRoom("")
	rs.sendTo(c, MessageTypeLeftRoom, LeftRoomData{RoomID: room.ID(), PlayerID: data.PlayerID})
	if !removed {
		return nil
	}

	rs.store.Touch(room.ID())
	snap := room.Snapshot()
	rs.broadcast(room.ID(), MessageTypePlayersUpdate, PlayersUpdateData{Players: snap.Players})
	rs.broadcast(room.ID(), MessageTypeChipsUpdate, ChipsUpdateData{Chips: snap.Chips})
	if ws != nil {
		rs.broadcast(room.ID(), MessageTypeAnswersRevealed, ws)
	}
	rs.broadcast(room.ID(), MessageTypeRoomUpdate, snap)
	return nil
}

// DeleteRoom tears down a room. Host only.
func (rs *RoomService) DeleteRoom(c *Connection, data DeleteRoomData) error {
	room, ok := rs.store.Get(roomcode.Normalize(data.RoomID))
	if !ok {
		return game.ErrRoomNotFound
	}
	if !room.IsHost(data.HostID) {
		return game.ErrUnauthorized
	}

	rs.broadcast(room.ID(), MessageTypeRoomDeleted, RoomDeletedData{RoomID: room.ID()})
	rs.store.Delete(room.ID())
	return nil
}

// SubmitAnswer records a guess. The last answer flips the room into the
// wager phase and the tile layout goes out in the same operation.
func (rs *RoomService) SubmitAnswer(c *Connection, data SubmitAnswerData) error {
	room, ok := rs.store.Get(roomcode.Normalize(data.RoomID))
	if !ok {
		return game.ErrRoomNotFound
	}

	progress, ws, err := rs.engine.SubmitAnswer(room, data.PlayerID, data.Guess)
	if err != nil {
		return err
	}

	rs.store.Touch(room.ID())
	rs.broadcast(room.ID(), MessageTypeAnswersUpdate, progress)
	if ws != nil {
		rs.broadcast(room.ID(), MessageTypeAnswersRevealed, ws)
		rs.broadcast(room.ID(), MessageTypeRoomUpdate, room.Snapshot())
	}
	return nil
}

// PlaceBet wagers chips on a tile
func (rs *RoomService) PlaceBet(c *Connection, data PlaceBetData) error {
	room, ok := rs.store.Get(roomcode.Normalize(data.RoomID))
	if !ok {
		return game.ErrRoomNotFound
	}

	res, err := rs.engine.PlaceBet(room, data.PlayerID, data.TileIndex, data.Amount)
	if err != nil {
		return err
	}

	rs.store.Touch(room.ID())
	rs.broadcast(room.ID(), MessageTypeBetsUpdate, BetsUpdateData{Bets: res.Bets, Chips: res.Chips})
	return nil
}

// RemoveBet takes a bet back and refunds it
func (rs *RoomService) RemoveBet(c *Connection, data RemoveBetData) error {
	room, ok := rs.store.Get(roomcode.Normalize(data.RoomID))
	if !ok {
		return game.ErrRoomNotFound
	}

	res, err := rs.engine.RemoveBet(room, data.PlayerID, data.TileIndex)
	if err != nil {
		return err
	}

	rs.store.Touch(room.ID())
	rs.broadcast(room.ID(), MessageTypeBetsUpdate, BetsUpdateData{Bets: res.Bets, Chips: res.Chips})
	return nil
}

// ConfirmWagers locks a player's bets in. The last confirmation settles the
// round inside the engine's critical section; both payloads are broadcast.
func (rs *RoomService) ConfirmWagers(c *Connection, data ConfirmWagersData) error {
	room, ok := rs.store.Get(roomcode.Normalize(data.RoomID))
	if !ok {
		return game.ErrRoomNotFound
	}

	conf, settlement, err := rs.engine.ConfirmWagers(room, data.PlayerID)
	if err != nil {
		return err
	}

	rs.store.Touch(room.ID())
	rs.broadcast(room.ID(), MessageTypeWagersConfirmed, conf)
	if settlement != nil {
		rs.broadcast(room.ID(), MessageTypePayoutResult, settlement)
		rs.broadcast(room.ID(), MessageTypeRoomUpdate, room.Snapshot())
	}
	return nil
}

// RevealAnswer settles the round on the host's say-so without waiting for
// every confirmation
func (rs *RoomService) RevealAnswer(c *Connection, data RevealAnswerData) error {
	room, ok := rs.store.Get(roomcode.Normalize(data.RoomID))
	if !ok {
		return game.ErrRoomNotFound
	}
	if data.HostID != "" && !room.IsHost(data.HostID) {
		return game.ErrUnauthorized
	}

	settlement, err := rs.engine.Settle(room)
	if err != nil {
		return err
	}

	rs.store.Touch(room.ID())
	rs.broadcast(room.ID(), MessageTypePayoutResult, settlement)
	rs.broadcast(room.ID(), MessageTypeRoomUpdate, room.Snapshot())
	return nil
}

// UpdateCategories changes the category filter while the room sits in the
// lobby
func (rs *RoomService) UpdateCategories(c *Connection, data UpdateCategoriesData) error {
	room, ok := rs.store.Get(roomcode.Normalize(data.RoomID))
	if !ok {
		return game.ErrRoomNotFound
	}

	rs.engine.SetCategories(room, data.Categories)
	rs.store.Touch(room.ID())
	rs.broadcast(room.ID(), MessageTypeCategoriesUpdate, CategoriesUpdateData{Categories: room.Snapshot().Categories})
	return nil
}

// StartGame draws the first question and moves everyone out of the lobby
func (rs *RoomService) StartGame(c *Connection, data StartGameData) error {
	room, ok := rs.store.Get(roomcode.Normalize(data.RoomID))
	if !ok {
		return game.ErrRoomNotFound
	}

	rr, err := rs.engine.StartGame(room, data.Categories)
	if err != nil {
		return err
	}

	rs.store.Touch(room.ID())
	rs.broadcast(room.ID(), MessageTypeGameStarted, rr)
	rs.broadcast(room.ID(), MessageTypeRoomUpdate, room.Snapshot())
	return nil
}

// NextRound draws the next question, or closes the game out with the final
// leaderboard once the round cap is reached
func (rs *RoomService) NextRound(c *Connection, data NextRoundData) error {
	room, ok := rs.store.Get(roomcode.Normalize(data.RoomID))
	if !ok {
		return game.ErrRoomNotFound
	}

	rr, err := rs.engine.NextRound(room)
	if err != nil {
		return err
	}

	rs.store.Touch(room.ID())
	rs.broadcast(room.ID(), MessageTypeRoundAdvanced, rr)
	rs.broadcast(room.ID(), MessageTypeRoomUpdate, room.Snapshot())
	return nil
}

// SetPhase forces the room into a phase. Escape hatch for the host UI;
// chips and bets are left untouched.
func (rs *RoomService) SetPhase(c *Connection, data SetPhaseData) error {
	room, ok := rs.store.Get(roomcode.Normalize(data.RoomID))
	if !ok {
		return game.ErrRoomNotFound
	}

	if err := rs.engine.SetPhase(room, game.Phase(data.Phase)); err != nil {
		return err
	}

	rs.store.Touch(room.ID())
	rs.broadcast(room.ID(), MessageTypePhaseChanged, PhaseChangedData{Phase: room.Phase()})
	return nil
}

// RoomState sends the full snapshot to the requesting connection only
func (rs *RoomService) RoomState(c *Connection, data RoomStateData) error {
	room, ok := rs.store.Get(roomcode.Normalize(data.RoomID))
	if !ok {
		return game.ErrRoomNotFound
	}

	rs.sendTo(c, MessageTypeRoomUpdate, room.Snapshot())
	return nil
}

func (rs *RoomService) broadcastSnapshot(room *game.Room) {
	rs.broadcast(room.ID(), MessageTypeRoomUpdate, room.Snapshot())
}

func (rs *RoomService) broadcast(roomID string, t MessageType, data interface{}) {
	msg, err := NewMessage(t, data)
	if err != nil {
		rs.logger.Error().Err(err).Str("type", t.String()).Msg("Failed to encode broadcast")
		return
	}
	rs.server.BroadcastToRoom(roomID, msg)
}

func (rs *RoomService) sendTo(c *Connection, t MessageType, data interface{}) {
	msg, err := NewMessage(t, data)
	if err != nil {
		rs.logger.Error().Err(err).Str("type", t.String()).Msg("Failed to encode message")
		return
	}
	_ = c.SendMessage(msg)
}
