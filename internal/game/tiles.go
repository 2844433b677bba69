package game

import "sort"

// AnswerTile is one bettable bucket derived from the submitted guesses.
// Index 0 is always the synthetic "smaller than every guess" tile; the rest
// are distinct guess values in ascending order.
type AnswerTile struct {
	Smaller    bool     `json:"isSmallerTile"`
	Guess      float64  `json:"guess"`
	PlayerIDs  []string `json:"playerIds,omitempty"`
	Multiplier int      `json:"multiplier"`
}

// DeriveTiles groups the round's answers into betting tiles and assigns
// payout multipliers. Duplicate guesses collapse onto a single tile carrying
// every contributor.
//
// For an odd count of distinct values the multipliers are symmetric around
// the median, which pays 2x. For an even count both middle tiles pay 3x and
// the right side carries a +1 offset versus the mirrored left side; the
// asymmetry is part of the payout table and pinned by tests.
func DeriveTiles(answers []Answer) []AnswerTile {
	byGuess := make(map[float64][]string)
	values := make([]float64, 0, len(answers))
	for _, a := range answers {
		if _, seen := byGuess[a.Guess]; !seen {
			values = append(values, a.Guess)
		}
		byGuess[a.Guess] = append(byGuess[a.Guess], a.PlayerID)
	}
	sort.Float64s(values)

	n := len(values)
	tiles := make([]AnswerTile, 0, n+1)
	maxMultiplier := 2
	for i, v := range values {
		m := multiplierAt(i, n)
		if m > maxMultiplier {
			maxMultiplier = m
		}
		tiles = append(tiles, AnswerTile{
			Guess:      v,
			PlayerIDs:  byGuess[v],
			Multiplier: m,
		})
	}

	smaller := AnswerTile{Smaller: true, Multiplier: maxMultiplier + 1}
	return append([]AnswerTile{smaller}, tiles...)
}

func multiplierAt(i, n int) int {
	if n%2 == 1 {
		center := n / 2
		return abs(i-center) + 2
	}

	leftMid := n/2 - 1
	rightMid := n / 2
	switch {
	case i <= leftMid:
		return 3 + (leftMid - i)
	case i == rightMid:
		return 3
	default:
		// Right side steps up one faster than the left.
		return 4 + (i - rightMid)
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
