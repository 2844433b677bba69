package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/guessbets/guessbets/internal/game"
)

// Server owns the WebSocket listener and the connection registry. Room and
// game state lives in the store/engine; the server only routes frames.
type Server struct {
	upgrader    websocket.Upgrader
	connections map[*Connection]bool
	register    chan *Connection
	unregister  chan *Connection
	logger      zerolog.Logger
	mu          sync.RWMutex
	ctx         context.Context
	cancel      context.CancelFunc
	httpServer  *http.Server
	rooms       *RoomService
}

// NewServer creates a new WebSocket server
func NewServer(logger zerolog.Logger, store *game.Store, engine *game.Engine) *Server {
	ctx, cancel := context.WithCancel(context.Background())

	s := &Server{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// Party games are joined from phones on arbitrary origins
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		connections: make(map[*Connection]bool),
		register:    make(chan *Connection),
		unregister:  make(chan *Connection),
		logger:      logger.With().Str("component", "server").Logger(),
		ctx:         ctx,
		cancel:      cancel,
	}
	s.rooms = NewRoomService(logger, store, engine, s)
	return s
}

// Rooms returns the room service behind the socket handlers
func (s *Server) Rooms() *RoomService {
	return s.rooms
}

// Start starts the WebSocket server on the given address, blocking until the
// listener fails or Shutdown is called.
func (s *Server) Start(addr string) error {
	go s.run()

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)

	s.httpServer = &http.Server{Addr: addr, Handler: mux}

	s.logger.Info().Str("addr", addr).Msg("Starting WebSocket server")
	return s.httpServer.ListenAndServe()
}

// Shutdown stops the listener and closes every live connection
func (s *Server) Shutdown(ctx context.Context) error {
	s.cancel()

	s.mu.Lock()
	for conn := range s.connections {
		_ = conn.Close()
	}
	s.mu.Unlock()

	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

// run handles connection lifecycle
func (s *Server) run() {
	for {
		select {
		case conn := <-s.register:
			s.mu.Lock()
			s.connections[conn] = true
			total := len(s.connections)
			s.mu.Unlock()
			s.logger.Info().Int("total", total).Msg("Client connected")

		case conn := <-s.unregister:
			s.mu.Lock()
			if _, ok := s.connections[conn]; ok {
				delete(s.connections, conn)
				_ = conn.Close()
			}
			total := len(s.connections)
			s.mu.Unlock()
			// The roster entry survives a disconnect so the player can
			// rejoin with the same id and keep their chips.
			s.logger.Info().
				Int("total", total).
				Str("player", conn.GetPlayer()).
				Str("room", conn.GetRoom()).
				Msg("Client disconnected")

		case <-s.ctx.Done():
			return
		}
	}
}

// handleWebSocket handles WebSocket upgrade requests
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to upgrade connection")
		return
	}

	client := NewConnection(conn, s.logger, s.rooms)
	s.register <- client
	client.Start()

	go func() {
		<-client.ctx.Done()
		s.unregister <- client
	}()
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "OK")
}

// BroadcastToRoom sends a message to all connections in a room
func (s *Server) BroadcastToRoom(roomID string, msg *Message) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for conn := range s.connections {
		if conn.GetRoom() == roomID {
			if err := conn.SendMessage(msg); err != nil {
				s.logger.Error().Err(err).Str("player", conn.GetPlayer()).Msg("Failed to send message to client")
			} else {
				count++
			}
		}
	}

	s.logger.Debug().
		Str("roomId", roomID).
		Str("type", msg.Type.String()).
		Int("recipients", count).
		Msg("Broadcasted message to room")
}

// RoomConnections returns the player ids connected to a specific room
func (s *Server) RoomConnections(roomID string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var players []string
	for conn := range s.connections {
		if conn.GetRoom() == roomID && conn.GetPlayer() != "" {
			players = append(players, conn.GetPlayer())
		}
	}
	return players
}
