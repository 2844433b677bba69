package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/coder/quartz"
	"golang.org/x/sync/errgroup"

	"github.com/guessbets/guessbets/cmd/guessbets/shared"
	"github.com/guessbets/guessbets/internal/game"
	"github.com/guessbets/guessbets/internal/questions"
	"github.com/guessbets/guessbets/internal/randutil"
	"github.com/guessbets/guessbets/internal/server"
)

// ServeCmd contains core server configuration
type ServeCmd struct {
	Addr          string        `kong:"default=':8080',help='Server listen address'"`
	Debug         bool          `kong:"help='Enable debug logging'"`
	StartingChips int           `kong:"default='500',help='Chips each player starts with'"`
	TotalRounds   int           `kong:"default='7',help='Rounds per game'"`
	MaxPlayers    int           `kong:"default='7',help='Maximum players per room'"`
	Seed          *int64        `kong:"help='Deterministic RNG seed for question draws (optional)'"`
	Config        string        `kong:"help='HCL config file',type='path'"`
	RoomTTL       time.Duration `kong:"default='0',help='Delete rooms idle longer than this (0 disables)'"`
	QuestionPack  string        `kong:"help='JSON question pack replacing the embedded catalog',type='path'"`
}

const (
	defaultAddr   = ":8080"
	reaperPeriod  = time.Minute
	drainDeadline = 5 * time.Second
)

func (c *ServeCmd) Run() error {
	logger := shared.SetupLogger(c.Debug)

	if c.Config != "" {
		if err := c.applyConfigFile(); err != nil {
			return err
		}
	}

	bank, err := c.loadQuestions()
	if err != nil {
		return err
	}

	rng, seed := randutil.FromSeed(c.Seed)
	logger.Info().Int64("seed", seed).Msg("Question RNG seeded")

	store := game.NewStore(logger, quartz.NewReal())
	engine := game.NewEngine(logger, bank, rng, game.Config{
		StartingChips: c.StartingChips,
		TotalRounds:   c.TotalRounds,
		MaxPlayers:    c.MaxPlayers,
	})
	srv := server.NewServer(logger, store, engine)

	logger.Info().
		Str("address", c.Addr).
		Int("starting_chips", c.StartingChips).
		Int("total_rounds", c.TotalRounds).
		Int("max_players", c.MaxPlayers).
		Int("questions", bank.Len()).
		Dur("room_ttl", c.RoomTTL).
		Msg("Starting guessbets server")

	ctx := shared.SetupSignalHandler(logger)
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := srv.Start(c.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if c.RoomTTL > 0 {
		g.Go(func() error {
			ticker := time.NewTicker(reaperPeriod)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					if expired := store.ExpireIdle(c.RoomTTL); len(expired) > 0 {
						logger.Info().Strs("rooms", expired).Msg("Expired idle rooms")
					}
				case <-ctx.Done():
					return nil
				}
			}
		})
	}

	g.Go(func() error {
		<-ctx.Done()
		logger.Info().Msg("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), drainDeadline)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// applyConfigFile fills in settings the flags left at their defaults.
// Explicit flags win over the file.
func (c *ServeCmd) applyConfigFile() error {
	cfg, err := server.LoadServerConfig(c.Config)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if c.Addr == defaultAddr {
		c.Addr = cfg.GetServerAddress()
	}
	if c.StartingChips == 500 {
		c.StartingChips = cfg.Game.StartingChips
	}
	if c.TotalRounds == 7 {
		c.TotalRounds = cfg.Game.TotalRounds
	}
	if c.MaxPlayers == 7 {
		c.MaxPlayers = cfg.Game.MaxPlayers
	}
	if c.RoomTTL == 0 && cfg.Game.RoomTTLMinutes > 0 {
		c.RoomTTL = time.Duration(cfg.Game.RoomTTLMinutes) * time.Minute
	}
	if c.QuestionPack == "" && cfg.Questions != nil {
		c.QuestionPack = cfg.Questions.Pack
	}
	return nil
}

func (c *ServeCmd) loadQuestions() (*questions.Bank, error) {
	if c.QuestionPack != "" {
		return questions.LoadFile(c.QuestionPack)
	}
	return questions.Load()
}
