package main

import (
	"fmt"

	"github.com/guessbets/guessbets/internal/questions"
)

// QuestionsCmd prints the categories and question counts of a catalog
type QuestionsCmd struct {
	Pack string `kong:"help='JSON question pack to inspect (defaults to the embedded catalog)',type='path'"`
}

func (c *QuestionsCmd) Run() error {
	bank, err := c.load()
	if err != nil {
		return err
	}

	for _, category := range bank.Categories() {
		fmt.Printf("%-16s %d\n", category, bank.Count(category))
	}
	fmt.Printf("%-16s %d\n", "total", bank.Len())
	return nil
}

func (c *QuestionsCmd) load() (*questions.Bank, error) {
	if c.Pack != "" {
		return questions.LoadFile(c.Pack)
	}
	return questions.Load()
}
