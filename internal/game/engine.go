package game

import (
	rand "math/rand/v2"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/guessbets/guessbets/internal/questions"
)

// Config carries the tunable game parameters.
type Config struct {
	StartingChips    int
	TotalRounds      int
	MaxPlayers       int
	ZeroChipBonusAll int
}

// DefaultConfig returns the stock party-game parameters.
func DefaultConfig() Config {
	return Config{
		StartingChips:    500,
		TotalRounds:      7,
		MaxPlayers:       7,
		ZeroChipBonusAll: 250,
	}
}

// Engine applies game operations to rooms. It owns no room state itself;
// each operation locks the target room for its full duration so concurrent
// calls against the same room serialize, while different rooms proceed in
// parallel.
type Engine struct {
	cfg    Config
	bank   *questions.Bank
	logger zerolog.Logger

	rngMu sync.Mutex
	rng   *rand.Rand
}

// NewEngine creates an engine drawing questions from bank with the given RNG.
func NewEngine(logger zerolog.Logger, bank *questions.Bank, rng *rand.Rand, cfg Config) *Engine {
	if cfg.StartingChips <= 0 {
		cfg.StartingChips = DefaultConfig().StartingChips
	}
	if cfg.TotalRounds <= 0 {
		cfg.TotalRounds = DefaultConfig().TotalRounds
	}
	if cfg.MaxPlayers <= 0 {
		cfg.MaxPlayers = DefaultConfig().MaxPlayers
	}
	if cfg.ZeroChipBonusAll <= 0 {
		cfg.ZeroChipBonusAll = DefaultConfig().ZeroChipBonusAll
	}
	return &Engine{
		cfg:    cfg,
		bank:   bank,
		logger: logger.With().Str("component", "engine").Logger(),
		rng:    rng,
	}
}

// Config returns the engine's game parameters.
func (e *Engine) Config() Config { return e.cfg }

func (e *Engine) drawQuestion(categories []string, used map[int]bool) (questions.Question, bool) {
	e.rngMu.Lock()
	defer e.rngMu.Unlock()
	return e.bank.Random(e.rng, categories, used)
}

// AddPlayer appends a player to the roster. Re-adding an existing ID updates
// the display fields without duplicating the entry or resetting chips, so a
// refreshing player keeps their balance. New players are only admitted in
// the lobby and while the roster has space.
func (e *Engine) AddPlayer(r *Room, p Player) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if i := r.playerIndex(p.ID); i >= 0 {
		r.players[i].Name = p.Name
		r.players[i].Color = p.Color
		if _, ok := r.chips[p.ID]; !ok {
			r.chips[p.ID] = e.cfg.StartingChips
		}
		return nil
	}

	if r.phase != PhaseLobby {
		return ErrGameAlreadyStarted
	}
	if len(r.players) >= e.cfg.MaxPlayers {
		return ErrPlayerLimitExceeded
	}

	r.players = append(r.players, p)
	if _, ok := r.chips[p.ID]; !ok {
		r.chips[p.ID] = e.cfg.StartingChips
	}
	e.logger.Debug().Str("room", r.id).Str("player", p.ID).Int("players", len(r.players)).Msg("player joined")
	return nil
}

// RemovePlayer drops a player from the roster and prunes their chip, answer,
// bet and confirmation records. Outstanding funded bets are refunded before
// the chip entry is deleted so chip conservation holds for everyone else.
// When the removal completes the current question round, the wager phase
// begins and its result is returned for broadcast.
func (e *Engine) RemovePlayer(r *Room, playerID string) (removed bool, ws *WagerStart) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.playerIndex(playerID)
	if i < 0 {
		return false, nil
	}

	r.players = append(r.players[:i], r.players[i+1:]...)

	kept := r.bets[:0]
	for _, b := range r.bets {
		if b.PlayerID != playerID {
			kept = append(kept, b)
			continue
		}
		if !b.ZeroChip {
			r.chips[playerID] += b.Amount
		}
	}
	r.bets = kept

	keptAnswers := r.answers[:0]
	for _, a := range r.answers {
		if a.PlayerID != playerID {
			keptAnswers = append(keptAnswers, a)
		}
	}
	r.answers = keptAnswers

	delete(r.confirmed, playerID)
	delete(r.chips, playerID)
	delete(r.chipsAtWager, playerID)
	delete(r.zeroAtWager, playerID)

	e.logger.Debug().Str("room", r.id).Str("player", playerID).Int("players", len(r.players)).Msg("player left")

	if r.phase == PhaseQuestion && len(r.players) > 0 && len(r.answers) == len(r.players) {
		return true, e.beginWagerLocked(r)
	}
	return true, nil
}

// RoundStart describes the question phase beginning a round.
type RoundStart struct {
	Round    int                `json:"round"`
	Question questions.Question `json:"question"`
	Chips    map[string]int     `json:"chips"`
}

// StartGame locks in the category selection, draws the first question and
// moves the room from lobby to the question phase.
func (e *Engine) StartGame(r *Room, categories []string) (*RoundStart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.phase != PhaseLobby {
		return nil, ErrGameAlreadyStarted
	}

	q, ok := e.drawQuestion(categories, r.usedQuestions)
	if !ok {
		return nil, ErrWrongPhase
	}

	r.categories = append([]string(nil), categories...)
	r.question = &q
	r.usedQuestions[q.ID] = true
	r.round = 1
	r.phase = PhaseQuestion
	r.answers = nil
	r.tiles = nil
	r.bets = nil
	r.confirmed = make(map[string]bool)

	e.logger.Info().Str("room", r.id).Strs("categories", categories).Int("question", q.ID).Msg("game started")

	return &RoundStart{Round: r.round, Question: q, Chips: copyChips(r.chips)}, nil
}

// SetCategories updates the room's category selection from the lobby.
func (e *Engine) SetCategories(r *Room, categories []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.categories = append([]string(nil), categories...)
}

// AnswerProgress reports how many answers are in after a submission.
type AnswerProgress struct {
	Answers []Answer `json:"answers"`
	Total   int      `json:"totalPlayers"`
}

// WagerStart is the broadcast payload produced when every player has
// answered and the room moves into the wager phase.
type WagerStart struct {
	Tiles           []AnswerTile `json:"answerTiles"`
	ZeroChipPlayers []string     `json:"zeroChipPlayers"`
}

// SubmitAnswer upserts the player's guess for the current round. When the
// final answer lands, the wager phase begins in the same critical section
// and its payload is returned alongside the progress report.
func (e *Engine) SubmitAnswer(r *Room, playerID string, guess float64) (*AnswerProgress, *WagerStart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.phase != PhaseQuestion {
		return nil, nil, ErrWrongPhase
	}
	if r.playerIndex(playerID) < 0 {
		return nil, nil, ErrUnauthorized
	}

	replaced := false
	for i := range r.answers {
		if r.answers[i].PlayerID == playerID {
			r.answers[i].Guess = guess
			replaced = true
			break
		}
	}
	if !replaced {
		r.answers = append(r.answers, Answer{PlayerID: playerID, Guess: guess})
	}

	progress := &AnswerProgress{
		Answers: append([]Answer(nil), r.answers...),
		Total:   len(r.players),
	}

	var ws *WagerStart
	if len(r.answers) == len(r.players) && len(r.players) > 0 {
		ws = e.beginWagerLocked(r)
	}
	return progress, ws, nil
}

// beginWagerLocked derives the betting tiles, snapshots chip balances and
// flips the room into the wager phase. The snapshot is what makes the
// zero-chip mechanic well defined: a player who bets down to zero during
// wagering is not zero-chip eligible, only a player who started the phase
// broke is.
func (e *Engine) beginWagerLocked(r *Room) *WagerStart {
	r.tiles = DeriveTiles(r.answers)
	r.chipsAtWager = copyChips(r.chips)
	r.zeroAtWager = make(map[string]bool)
	r.bets = nil
	r.confirmed = make(map[string]bool)
	r.phase = PhaseWager

	var zero []string
	for _, p := range r.players {
		if r.chipsAtWager[p.ID] == 0 {
			r.zeroAtWager[p.ID] = true
			zero = append(zero, p.ID)
		}
	}

	e.logger.Debug().Str("room", r.id).Int("tiles", len(r.tiles)).Strs("zero_chip", zero).Msg("wager phase started")

	return &WagerStart{
		Tiles:           append([]AnswerTile(nil), r.tiles...),
		ZeroChipPlayers: zero,
	}
}

// BetResult reports the state after a successful bet mutation.
type BetResult struct {
	Bets      []Bet          `json:"bets"`
	Chips     map[string]int `json:"chips"`
	Remaining int            `json:"remaining"`
}

// PlaceBet wagers amount on a tile. Bets are funded at placement time: the
// chips leave the player's balance immediately and come back only as
// winnings or through RemoveBet. A player whose balance was zero when the
// wager phase began may place a single free zero-chip bet instead.
func (e *Engine) PlaceBet(r *Room, playerID string, tileIndex, amount int) (*BetResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.phase != PhaseWager {
		return nil, ErrWrongPhase
	}
	if r.confirmed[playerID] {
		return nil, ErrWagersConfirmed
	}
	if tileIndex < 0 || tileIndex >= len(r.tiles) {
		return nil, ErrInvalidTile
	}

	if amount == 0 && r.zeroAtWager[playerID] {
		// The free comeback bet replaces any previous one so the player
		// can change their mind before confirming.
		kept := r.bets[:0]
		for _, b := range r.bets {
			if !(b.PlayerID == playerID && b.ZeroChip) {
				kept = append(kept, b)
			}
		}
		r.bets = append(kept, Bet{PlayerID: playerID, TileIndex: tileIndex, Amount: 0, ZeroChip: true})
		return e.betResultLocked(r, playerID), nil
	}

	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if amount > r.chips[playerID] {
		return nil, ErrInsufficientChips
	}

	r.chips[playerID] -= amount
	r.bets = append(r.bets, Bet{PlayerID: playerID, TileIndex: tileIndex, Amount: amount})
	return e.betResultLocked(r, playerID), nil
}

// RemoveBet refunds and deletes the player's bet on the given tile. Only
// valid before the player confirms their wagers for the round.
func (e *Engine) RemoveBet(r *Room, playerID string, tileIndex int) (*BetResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.phase != PhaseWager {
		return nil, ErrWrongPhase
	}
	if r.confirmed[playerID] {
		return nil, ErrWagersConfirmed
	}

	for i, b := range r.bets {
		if b.PlayerID != playerID || b.TileIndex != tileIndex {
			continue
		}
		if !b.ZeroChip {
			r.chips[playerID] += b.Amount
		}
		r.bets = append(r.bets[:i], r.bets[i+1:]...)
		return e.betResultLocked(r, playerID), nil
	}
	return nil, ErrNoSuchBet
}

func (e *Engine) betResultLocked(r *Room, playerID string) *BetResult {
	return &BetResult{
		Bets:      append([]Bet(nil), r.bets...),
		Chips:     copyChips(r.chips),
		Remaining: r.chips[playerID],
	}
}

// Confirmation reports wager confirmation progress.
type Confirmation struct {
	ConfirmedCount   int      `json:"confirmedCount"`
	TotalPlayers     int      `json:"totalPlayers"`
	AllConfirmed     bool     `json:"allConfirmed"`
	AlreadyConfirmed bool     `json:"alreadyConfirmed"`
	Confirmed        []string `json:"confirmedWagers"`
}

// ConfirmWagers locks in the player's bets for the round. Confirming twice
// is a no-op reported via AlreadyConfirmed. A zero-chip player must have
// placed their free bet first. When the last player confirms, settlement
// runs in the same critical section and its result is returned; two
// simultaneous last confirmers therefore cannot both trigger a payout.
func (e *Engine) ConfirmWagers(r *Room, playerID string) (*Confirmation, *Settlement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.phase != PhaseWager {
		return nil, nil, ErrWrongPhase
	}
	if r.playerIndex(playerID) < 0 {
		return nil, nil, ErrUnauthorized
	}

	if !r.confirmed[playerID] {
		if r.zeroAtWager[playerID] && !r.hasZeroChipBet(playerID) {
			return nil, nil, ErrMustSelectTile
		}
		r.confirmed[playerID] = true
	} else {
		c := r.confirmationLocked(playerID, true)
		return c, nil, nil
	}

	c := r.confirmationLocked(playerID, false)
	var settlement *Settlement
	if c.AllConfirmed && r.question != nil && len(r.tiles) > 0 {
		settlement = e.settleLocked(r, r.question.Answer)
	}
	return c, settlement, nil
}

func (r *Room) confirmationLocked(playerID string, already bool) *Confirmation {
	c := &Confirmation{
		ConfirmedCount:   len(r.confirmed),
		TotalPlayers:     len(r.players),
		AlreadyConfirmed: already,
	}
	c.AllConfirmed = c.TotalPlayers > 0 && c.ConfirmedCount >= c.TotalPlayers
	for _, p := range r.players {
		if r.confirmed[p.ID] {
			c.Confirmed = append(c.Confirmed, p.ID)
		}
	}
	return c
}

func (r *Room) hasZeroChipBet(playerID string) bool {
	for _, b := range r.bets {
		if b.PlayerID == playerID && b.ZeroChip {
			return true
		}
	}
	return false
}

// Settle computes the round's payouts against the current question's answer.
// This is the host's manual reveal path; the usual trigger is the final
// ConfirmWagers call.
func (e *Engine) Settle(r *Room) (*Settlement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.phase != PhaseWager || r.question == nil || len(r.tiles) == 0 {
		return nil, ErrWrongPhase
	}
	return e.settleLocked(r, r.question.Answer), nil
}

// RoundResult is the outcome of advancing past a payout: either the next
// question or the final leaderboard.
type RoundResult struct {
	Phase       Phase               `json:"phase"`
	Round       int                 `json:"round,omitempty"`
	Question    *questions.Question `json:"question,omitempty"`
	Leaderboard []LeaderboardEntry  `json:"leaderboard,omitempty"`
	Chips       map[string]int      `json:"chips"`
}

// LeaderboardEntry is one row of the final standings.
type LeaderboardEntry struct {
	Player Player `json:"player"`
	Chips  int    `json:"chips"`
}

// NextRound advances past a settled round. If the round cap is reached the
// room finishes and the chips-sorted leaderboard is returned; otherwise a
// fresh question is drawn and all per-round state resets.
func (e *Engine) NextRound(r *Room) (*RoundResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.phase != PhasePayout {
		return nil, ErrWrongPhase
	}

	r.round++
	if r.round > r.totalRounds {
		r.phase = PhaseFinished
		r.question = nil
		r.answers = nil
		r.tiles = nil
		r.bets = nil
		r.confirmed = make(map[string]bool)

		board := make([]LeaderboardEntry, 0, len(r.players))
		for _, p := range r.players {
			board = append(board, LeaderboardEntry{Player: p, Chips: r.chips[p.ID]})
		}
		// Ties keep join order.
		sort.SliceStable(board, func(i, j int) bool {
			return board[i].Chips > board[j].Chips
		})

		e.logger.Info().Str("room", r.id).Msg("game finished")
		return &RoundResult{Phase: PhaseFinished, Leaderboard: board, Chips: copyChips(r.chips)}, nil
	}

	q, ok := e.drawQuestion(r.categories, r.usedQuestions)
	if !ok {
		r.round--
		return nil, ErrWrongPhase
	}
	r.question = &q
	r.usedQuestions[q.ID] = true
	r.answers = nil
	r.tiles = nil
	r.bets = nil
	r.confirmed = make(map[string]bool)
	r.chipsAtWager = nil
	r.zeroAtWager = nil
	r.phase = PhaseQuestion

	return &RoundResult{
		Phase:    PhaseQuestion,
		Round:    r.round,
		Question: &q,
		Chips:    copyChips(r.chips),
	}, nil
}

// SetPhase is the host debug override. It moves the room to an arbitrary
// phase without running transition logic; it never touches chips or bets, so
// it cannot corrupt settlement accounting.
func (e *Engine) SetPhase(r *Room, phase Phase) error {
	if !phase.Valid() {
		return ErrWrongPhase
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.phase = phase
	return nil
}
