// Package questions holds the static trivia catalog used to drive game
// rounds. Every question has a numeric answer so that guesses can be ranked
// by a closest-without-exceeding rule.
package questions

import (
	_ "embed"
	"encoding/json"
	"fmt"
	rand "math/rand/v2"
	"os"
	"sort"
)

//go:embed questions.json
var embedded []byte

// Question is a single trivia entry with a numeric answer.
type Question struct {
	ID          int     `json:"id"`
	Category    string  `json:"category"`
	Text        string  `json:"text"`
	Answer      float64 `json:"answer"`
	Explanation string  `json:"explanation,omitempty"`
	Source      string  `json:"source,omitempty"`
}

// Bank is an immutable catalog of questions indexed by category.
type Bank struct {
	questions  []Question
	byCategory map[string][]int
}

// Load returns the bank built from the embedded catalog.
func Load() (*Bank, error) {
	return parse(embedded)
}

// LoadFile returns a bank built from a JSON file on disk, overriding the
// embedded catalog.
func LoadFile(path string) (*Bank, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read question pack: %w", err)
	}
	return parse(data)
}

func parse(data []byte) (*Bank, error) {
	var qs []Question
	if err := json.Unmarshal(data, &qs); err != nil {
		return nil, fmt.Errorf("parse question pack: %w", err)
	}
	if len(qs) == 0 {
		return nil, fmt.Errorf("question pack is empty")
	}

	b := &Bank{
		questions:  qs,
		byCategory: make(map[string][]int),
	}
	for i := range b.questions {
		q := &b.questions[i]
		if q.Text == "" {
			return nil, fmt.Errorf("question %d has no text", i)
		}
		if q.Category == "" {
			return nil, fmt.Errorf("question %d has no category", i)
		}
		// IDs are positional so rooms can track which questions they
		// have already used.
		q.ID = i
		b.byCategory[q.Category] = append(b.byCategory[q.Category], i)
	}
	return b, nil
}

// Len returns the total number of questions in the bank.
func (b *Bank) Len() int {
	return len(b.questions)
}

// Categories returns the sorted list of category names.
func (b *Bank) Categories() []string {
	cats := make([]string, 0, len(b.byCategory))
	for c := range b.byCategory {
		cats = append(cats, c)
	}
	sort.Strings(cats)
	return cats
}

// Count returns the number of questions in a category.
func (b *Bank) Count(category string) int {
	return len(b.byCategory[category])
}

// Get returns the question with the given ID.
func (b *Bank) Get(id int) (Question, bool) {
	if id < 0 || id >= len(b.questions) {
		return Question{}, false
	}
	return b.questions[id], true
}

// Random draws a uniformly random question. An empty category filter means
// the whole catalog is eligible. Questions whose IDs appear in used are
// skipped; if that would leave nothing to draw, the used set is ignored so a
// long game repeats questions instead of stalling.
func (b *Bank) Random(rng *rand.Rand, categories []string, used map[int]bool) (Question, bool) {
	pool := b.candidates(categories)
	if len(pool) == 0 {
		return Question{}, false
	}

	fresh := pool[:0:0]
	for _, idx := range pool {
		if !used[idx] {
			fresh = append(fresh, idx)
		}
	}
	if len(fresh) == 0 {
		fresh = pool
	}

	return b.questions[fresh[rng.IntN(len(fresh))]], true
}

func (b *Bank) candidates(categories []string) []int {
	if len(categories) == 0 {
		pool := make([]int, len(b.questions))
		for i := range pool {
			pool[i] = i
		}
		return pool
	}

	var pool []int
	for _, c := range categories {
		pool = append(pool, b.byCategory[c]...)
	}
	sort.Ints(pool)
	return pool
}
