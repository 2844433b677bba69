package server

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// Connection represents a WebSocket connection to a client
type Connection struct {
	conn      *websocket.Conn
	send      chan *Message
	playerID  string
	roomID    string
	logger    zerolog.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	mu        sync.RWMutex
	closeOnce sync.Once
	rooms     *RoomService
}

// NewConnection creates a new connection wrapper
func NewConnection(conn *websocket.Conn, logger zerolog.Logger, rooms *RoomService) *Connection {
	ctx, cancel := context.WithCancel(context.Background())

	return &Connection{
		conn:   conn,
		send:   make(chan *Message, 256),
		logger: logger.With().Str("component", "conn").Logger(),
		ctx:    ctx,
		cancel: cancel,
		rooms:  rooms,
	}
}

// Start begins handling the connection
func (c *Connection) Start() {
	go c.writePump()
	go c.readPump()
}

// Close closes the connection
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()
		close(c.send)
		err = c.conn.Close()
	})
	return err
}

// SendMessage sends a message to the client
func (c *Connection) SendMessage(msg *Message) error {
	defer func() {
		if r := recover(); r != nil {
			// Channel was closed, expected during shutdown
			c.logger.Debug().Interface("error", r).Msg("Attempted to send message on closed connection")
		}
	}()

	select {
	case c.send <- msg:
		return nil
	case <-c.ctx.Done():
		return c.ctx.Err()
	default:
		c.logger.Warn().Msg("Connection send buffer full, closing connection")
		_ = c.Close()
		return ErrConnectionClosed
	}
}

// SetPlayer associates this connection with a player
func (c *Connection) SetPlayer(playerID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.playerID = playerID
}

// GetPlayer returns the associated player ID
func (c *Connection) GetPlayer() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.playerID
}

// SetRoom associates this connection with a room
func (c *Connection) SetRoom(roomID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.roomID = roomID
}

// GetRoom returns the associated room ID
func (c *Connection) GetRoom() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.roomID
}

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 8192
)

var ErrConnectionClosed = websocket.ErrCloseSent

// readPump handles incoming messages from the client
func (c *Connection) readPump() {
	defer func() { _ = c.Close() }()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		var msg Message
		err := c.conn.ReadJSON(&msg)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error().Err(err).Msg("WebSocket error")
			}
			break
		}

		c.handleMessage(&msg)
	}
}

// writePump handles outgoing messages to the client
func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteJSON(message); err != nil {
				c.logger.Error().Err(err).Msg("Failed to write message")
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			return
		}
	}
}

// handleMessage processes incoming messages from the client
func (c *Connection) handleMessage(msg *Message) {
	c.logger.Debug().Str("type", msg.Type.String()).Str("player", c.GetPlayer()).Msg("Received message")

	var err error
	switch msg.Type {
	case MessageTypeCreateRoom:
		err = decodeInto(c, msg, func(data CreateRoomData) error {
			return c.rooms.CreateRoom(c, data)
		})
	case MessageTypeJoinRoom:
		err = decodeInto(c, msg, func(data JoinRoomData) error {
			return c.rooms.JoinRoom(c, data)
		})
	case MessageTypeLeaveRoom:
		err = decodeInto(c, msg, func(data LeaveRoomData) error {
			return c.rooms.LeaveRoom(c, data)
		})
	case MessageTypeDeleteRoom:
		err = decodeInto(c, msg, func(data DeleteRoomData) error {
			return c.rooms.DeleteRoom(c, data)
		})
	case MessageTypeSubmitAnswer:
		err = decodeInto(c, msg, func(data SubmitAnswerData) error {
			return c.rooms.SubmitAnswer(c, data)
		})
	case MessageTypePlaceBet:
		err = decodeInto(c, msg, func(data PlaceBetData) error {
			return c.rooms.PlaceBet(c, data)
		})
	case MessageTypeRemoveBet:
		err = decodeInto(c, msg, func(data RemoveBetData) error {
			return c.rooms.RemoveBet(c, data)
		})
	case MessageTypeConfirmWagers:
		err = decodeInto(c, msg, func(data ConfirmWagersData) error {
			return c.rooms.ConfirmWagers(c, data)
		})
	case MessageTypeRevealAnswer:
		err = decodeInto(c, msg, func(data RevealAnswerData) error {
			return c.rooms.RevealAnswer(c, data)
		})
	case MessageTypeUpdateCategories:
		err = decodeInto(c, msg, func(data UpdateCategoriesData) error {
			return c.rooms.UpdateCategories(c, data)
		})
	case MessageTypeStartGame:
		err = decodeInto(c, msg, func(data StartGameData) error {
			return c.rooms.StartGame(c, data)
		})
	case MessageTypeNextRound:
		err = decodeInto(c, msg, func(data NextRoundData) error {
			return c.rooms.NextRound(c, data)
		})
	case MessageTypeSetPhase:
		err = decodeInto(c, msg, func(data SetPhaseData) error {
			return c.rooms.SetPhase(c, data)
		})
	case MessageTypeRoomState:
		err = decodeInto(c, msg, func(data RoomStateData) error {
			return c.rooms.RoomState(c, data)
		})
	default:
		c.sendError("unknown_message_type", "Unknown message type: "+msg.Type.String())
		return
	}

	if err != nil {
		c.sendError(errorCode(err), err.Error())
	}
}

// decodeInto unmarshals the message payload and invokes the handler.
// Malformed payloads are reported to the client directly.
func decodeInto[T any](c *Connection, msg *Message, handle func(T) error) error {
	var data T
	if err := json.Unmarshal(msg.Data, &data); err != nil {
		c.sendError("invalid_message", "Failed to parse "+msg.Type.String()+" data")
		return nil
	}
	return handle(data)
}

// sendError sends an error message to the client
func (c *Connection) sendError(code, message string) {
	errorMsg, err := NewMessage(MessageTypeError, ErrorData{
		Code:    code,
		Message: message,
	})
	if err != nil {
		c.logger.Error().Err(err).Msg("Failed to create error message")
		return
	}

	_ = c.SendMessage(errorMsg)
}
