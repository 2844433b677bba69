package game

import (
	"sync"
	"time"

	"github.com/guessbets/guessbets/internal/questions"
)

// Phase is a room's position in the round lifecycle.
type Phase string

const (
	PhaseLobby    Phase = "lobby"
	PhaseQuestion Phase = "question"
	PhaseWager    Phase = "wager"
	PhasePayout   Phase = "payout"
	PhaseFinished Phase = "finished"
)

// Valid reports whether p is one of the known phases.
func (p Phase) Valid() bool {
	switch p {
	case PhaseLobby, PhaseQuestion, PhaseWager, PhasePayout, PhaseFinished:
		return true
	}
	return false
}

// Player is a roster entry. The ID is opaque and stable across reconnects.
type Player struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

// Answer is one player's guess for the current round. A player has at most
// one live answer; resubmitting replaces it.
type Answer struct {
	PlayerID string  `json:"playerId"`
	Guess    float64 `json:"guess"`
}

// Bet is a wager on one tile. Amount zero is only legal for the zero-chip
// comeback mechanic.
type Bet struct {
	PlayerID  string `json:"playerId"`
	TileIndex int    `json:"tileIndex"`
	Amount    int    `json:"amount"`
	ZeroChip  bool   `json:"isZeroChipBet"`
}

// Room is one isolated game session. All fields are guarded by mu; every
// engine operation holds the lock for its whole duration, so bet placement,
// confirmation counting and phase transitions never race within a room.
type Room struct {
	mu sync.Mutex

	id          string
	hostID      string
	phase       Phase
	players     []Player
	categories  []string
	question    *questions.Question
	round       int
	totalRounds int

	answers   []Answer
	tiles     []AnswerTile
	bets      []Bet
	confirmed map[string]bool

	chips         map[string]int
	chipsAtWager  map[string]int
	zeroAtWager   map[string]bool
	usedQuestions map[int]bool

	lastActive time.Time
}

// NewRoom creates a room in the lobby phase with the given host claim.
func NewRoom(id, hostID string, totalRounds int) *Room {
	return &Room{
		id:            id,
		hostID:        hostID,
		phase:         PhaseLobby,
		totalRounds:   totalRounds,
		confirmed:     make(map[string]bool),
		chips:         make(map[string]int),
		usedQuestions: make(map[int]bool),
	}
}

// ID returns the immutable room code.
func (r *Room) ID() string { return r.id }

// HostID returns the current host claim.
func (r *Room) HostID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.hostID
}

// ClaimHost sets the host identifier. A host whose page reloaded re-claims
// their room, so this overwrites unconditionally.
func (r *Room) ClaimHost(hostID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hostID = hostID
}

// IsHost reports whether id matches the host claim.
func (r *Room) IsHost(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.hostID != "" && r.hostID == id
}

// Phase returns the current phase.
func (r *Room) Phase() Phase {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.phase
}

// LastActive returns the time of the last operation against the room.
func (r *Room) LastActive() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastActive
}

func (r *Room) touch(now time.Time) {
	r.mu.Lock()
	r.lastActive = now
	r.mu.Unlock()
}

// Snapshot is an immutable copy of room state for broadcasting.
type Snapshot struct {
	ID          string              `json:"id"`
	HostID      string              `json:"hostId,omitempty"`
	Phase       Phase               `json:"phase"`
	Players     []Player            `json:"players"`
	Categories  []string            `json:"selectedCategories"`
	Question    *questions.Question `json:"currentQuestion,omitempty"`
	Round       int                 `json:"currentRound"`
	TotalRounds int                 `json:"totalRounds"`
	Answers     []Answer            `json:"answers"`
	Tiles       []AnswerTile        `json:"answerTiles"`
	Bets        []Bet               `json:"bets"`
	Confirmed   []string            `json:"confirmedWagers"`
	Chips       map[string]int      `json:"chips"`
}

// Snapshot returns a consistent copy of the room's observable state.
func (r *Room) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked()
}

func (r *Room) snapshotLocked() Snapshot {
	snap := Snapshot{
		ID:          r.id,
		HostID:      r.hostID,
		Phase:       r.phase,
		Players:     append([]Player(nil), r.players...),
		Categories:  append([]string(nil), r.categories...),
		Round:       r.round,
		TotalRounds: r.totalRounds,
		Answers:     append([]Answer(nil), r.answers...),
		Tiles:       append([]AnswerTile(nil), r.tiles...),
		Bets:        append([]Bet(nil), r.bets...),
		Confirmed:   make([]string, 0, len(r.confirmed)),
		Chips:       copyChips(r.chips),
	}
	if r.question != nil {
		q := *r.question
		snap.Question = &q
	}
	// Confirmation order follows the roster so broadcasts are stable.
	for _, p := range r.players {
		if r.confirmed[p.ID] {
			snap.Confirmed = append(snap.Confirmed, p.ID)
		}
	}
	return snap
}

func (r *Room) playerIndex(id string) int {
	for i, p := range r.players {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func copyChips(src map[string]int) map[string]int {
	dst := make(map[string]int, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
