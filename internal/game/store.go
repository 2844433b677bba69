package game

import (
	"sync"
	"time"

	"github.com/coder/quartz"
	"github.com/rs/zerolog"
)

// Store is the process-wide registry of live rooms. Room state lives only in
// memory and dies with the process. The map has its own lock; individual
// rooms serialize their own operations.
type Store struct {
	mu     sync.RWMutex
	rooms  map[string]*Room
	clock  quartz.Clock
	logger zerolog.Logger
}

// NewStore creates an empty registry. Pass quartz.NewReal() outside tests.
func NewStore(logger zerolog.Logger, clock quartz.Clock) *Store {
	return &Store{
		rooms:  make(map[string]*Room),
		clock:  clock,
		logger: logger.With().Str("component", "store").Logger(),
	}
}

// Create registers a fresh lobby-phase room under id.
func (s *Store) Create(id, hostID string, totalRounds int) (*Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.rooms[id]; exists {
		return nil, ErrRoomExists
	}

	room := NewRoom(id, hostID, totalRounds)
	room.lastActive = s.clock.Now()
	s.rooms[id] = room
	s.logger.Info().Str("room", id).Msg("room created")
	return room, nil
}

// Get looks up a live room.
func (s *Store) Get(id string) (*Room, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	room, ok := s.rooms[id]
	return room, ok
}

// Delete removes a room and reports whether it existed.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rooms[id]; !ok {
		return false
	}
	delete(s.rooms, id)
	s.logger.Info().Str("room", id).Msg("room deleted")
	return true
}

// Len returns the number of live rooms.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rooms)
}

// Touch records activity against a room for idle accounting.
func (s *Store) Touch(id string) {
	s.mu.RLock()
	room, ok := s.rooms[id]
	s.mu.RUnlock()
	if ok {
		room.touch(s.clock.Now())
	}
}

// ExpireIdle deletes every room that has seen no operation for longer than
// ttl and returns their ids. A ttl of zero disables expiry.
func (s *Store) ExpireIdle(ttl time.Duration) []string {
	if ttl <= 0 {
		return nil
	}
	cutoff := s.clock.Now().Add(-ttl)

	s.mu.Lock()
	defer s.mu.Unlock()

	var expired []string
	for id, room := range s.rooms {
		if room.LastActive().Before(cutoff) {
			delete(s.rooms, id)
			expired = append(expired, id)
		}
	}
	if len(expired) > 0 {
		s.logger.Info().Strs("rooms", expired).Msg("expired idle rooms")
	}
	return expired
}
