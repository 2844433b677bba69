package game

// WinningBet itemizes one paying bet inside a player's payout.
type WinningBet struct {
	Amount     int `json:"betAmount"`
	Multiplier int `json:"multiplier"`
	Winnings   int `json:"winnings"`
}

// Payout is one player's result for the round.
type Payout struct {
	Total         int          `json:"total"`
	Winnings      []WinningBet `json:"winnings,omitempty"`
	ZeroChipBonus bool         `json:"isZeroChipBonus,omitempty"`
}

// Settlement is the full outcome of revealing the correct answer.
type Settlement struct {
	CorrectAnswer    float64           `json:"correctAnswer"`
	WinningTileIndex int               `json:"winningTileIndex"`
	WinningTile      AnswerTile        `json:"winningTile"`
	Payouts          map[string]Payout `json:"payouts"`
	Chips            map[string]int    `json:"chips"`
	Tiles            []AnswerTile      `json:"answerTiles"`
	MaxWinnings      int               `json:"maxWinnings"`
}

// settleLocked runs the payout algorithm and moves the room to the payout
// phase. Caller holds r.mu.
//
// The winning tile is the highest real guess that does not exceed the
// correct answer; if every guess overshoots, the synthetic "smaller" tile at
// index 0 wins. Funded bets on the winning tile pay amount times the tile's
// multiplier. Losing bets are simply not refunded - they were deducted at
// placement - which is what keeps chip accounting a pure credit pass here.
func (e *Engine) settleLocked(r *Room, correctAnswer float64) *Settlement {
	winIdx := 0
	for i := 1; i < len(r.tiles); i++ {
		if r.tiles[i].Guess <= correctAnswer {
			winIdx = i
		}
	}

	payouts := make(map[string]Payout)
	maxWinnings := 0
	for _, b := range r.bets {
		if b.TileIndex != winIdx || b.Amount <= 0 {
			continue
		}
		winnings := b.Amount * r.tiles[winIdx].Multiplier
		r.chips[b.PlayerID] += winnings
		if winnings > maxWinnings {
			maxWinnings = winnings
		}
		p := payouts[b.PlayerID]
		p.Total += winnings
		p.Winnings = append(p.Winnings, WinningBet{
			Amount:     b.Amount,
			Multiplier: r.tiles[winIdx].Multiplier,
			Winnings:   winnings,
		})
		payouts[b.PlayerID] = p
	}

	// Zero-chip comeback: a correct free bet pays a fixed stake when the
	// whole table was broke, otherwise a quarter of the best normal win.
	// A wrong free bet costs nothing.
	allZero := len(r.players) > 0
	for _, p := range r.players {
		if !r.zeroAtWager[p.ID] {
			allZero = false
			break
		}
	}
	bonus := maxWinnings / 4
	if allZero {
		bonus = e.cfg.ZeroChipBonusAll
	}
	for _, b := range r.bets {
		if !b.ZeroChip || b.TileIndex != winIdx {
			continue
		}
		r.chips[b.PlayerID] += bonus
		p := payouts[b.PlayerID]
		p.Total += bonus
		p.ZeroChipBonus = true
		payouts[b.PlayerID] = p
	}

	r.phase = PhasePayout

	e.logger.Info().
		Str("room", r.id).
		Float64("answer", correctAnswer).
		Int("winning_tile", winIdx).
		Int("max_winnings", maxWinnings).
		Msg("round settled")

	return &Settlement{
		CorrectAnswer:    correctAnswer,
		WinningTileIndex: winIdx,
		WinningTile:      r.tiles[winIdx],
		Payouts:          payouts,
		Chips:            copyChips(r.chips),
		Tiles:            append([]AnswerTile(nil), r.tiles...),
		MaxWinnings:      maxWinnings,
	}
}
