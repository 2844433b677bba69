package game

import (
	rand "math/rand/v2"
	"testing"

	"github.com/rs/zerolog"

	"github.com/guessbets/guessbets/internal/questions"
)

func testEngine(t *testing.T, cfg Config) *Engine {
	t.Helper()
	bank, err := questions.Load()
	if err != nil {
		t.Fatalf("load question bank: %v", err)
	}
	return NewEngine(zerolog.Nop(), bank, rand.New(rand.NewPCG(42, 42)), cfg)
}

// lobbyRoom returns a room with n players joined, still in the lobby.
func lobbyRoom(t *testing.T, e *Engine, n int) *Room {
	t.Helper()
	room := NewRoom("TEST01", "host-1", e.Config().TotalRounds)
	for i := 0; i < n; i++ {
		p := Player{ID: playerID(i), Name: playerID(i)}
		if err := e.AddPlayer(room, p); err != nil {
			t.Fatalf("add player %d: %v", i, err)
		}
	}
	return room
}

// wagerRoom drives a room into the wager phase with the given guesses, one
// per player in roster order.
func wagerRoom(t *testing.T, e *Engine, guesses ...float64) (*Room, *WagerStart) {
	t.Helper()
	room := lobbyRoom(t, e, len(guesses))
	if _, err := e.StartGame(room, nil); err != nil {
		t.Fatalf("start game: %v", err)
	}
	var ws *WagerStart
	for i, g := range guesses {
		var err error
		_, ws, err = e.SubmitAnswer(room, playerID(i), g)
		if err != nil {
			t.Fatalf("submit answer %d: %v", i, err)
		}
	}
	if ws == nil {
		t.Fatal("expected wager phase to begin after final answer")
	}
	return room, ws
}

func playerID(i int) string {
	return "player-" + string(rune('a'+i))
}

func totalChips(r *Room) int {
	sum := 0
	for _, c := range r.Snapshot().Chips {
		sum += c
	}
	return sum
}
