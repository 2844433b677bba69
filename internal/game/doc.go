// Package game implements the authoritative room state machine and payout
// engine for the guessing game.
//
// The main types are Room, which holds one session's state behind a mutex,
// and Engine, which applies every mutating operation: joining and leaving,
// answer submission, tile derivation, bet placement, wager confirmation and
// round settlement.
//
// # Round lifecycle
//
// A room moves strictly forward through the phases of a round:
//
//	lobby -> question -> wager -> payout -> question | finished
//
// The question phase ends automatically when every player has answered; the
// wager phase ends when every player has confirmed, at which point the round
// settles inside the same critical section.
//
// # Deterministic testing
//
// The Engine takes an explicit *rand.Rand so question draws are reproducible:
//
//	rng := rand.New(rand.NewPCG(42, 42))
//	eng := game.NewEngine(logger, bank, rng, game.DefaultConfig())
//
// The Store takes a quartz.Clock so idle expiry can be driven by a mock
// clock in tests.
//
// # Concurrency
//
// Operations against the same room serialize on the room's lock; different
// rooms are fully independent and proceed in parallel. No engine operation
// blocks on I/O.
package game
