package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/lox/blackjack/cmd/blackjack/shared"
	"github.com/lox/blackjack/internal/randutil"
	"github.com/lox/blackjack/internal/simulator"
)

// SimulateCmd plays rounds with stand-on-N players and prints a summary
type SimulateCmd struct {
	Rounds  int   `short:"n" help:"Rounds to play (default from config)"`
	Workers int   `short:"w" help:"Concurrent workers (default from config)"`
	Players int   `short:"p" help:"Players per round, 1-6 (default from config)"`
	StandOn int   `help:"Players stand at or above this total (default from config)"`
	Seed    int64 `help:"Session seed, 0 for time-based (default from config)"`

	stdout io.Writer
}

func (c *SimulateCmd) Run(g *Globals) error {
	cfg, err := g.loadConfig()
	if err != nil {
		return err
	}
	if c.Rounds != 0 {
		cfg.Simulate.Rounds = c.Rounds
	}
	if c.Workers != 0 {
		cfg.Simulate.Workers = c.Workers
	}
	if c.StandOn != 0 {
		cfg.Simulate.StandOn = c.StandOn
	}
	if c.Players != 0 {
		cfg.Table.Players = c.Players
	}
	if c.Seed != 0 {
		cfg.Table.Seed = c.Seed
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := shared.SetupLogger(cfg.Log.Level, g.Debug, os.Stderr)
	if err != nil {
		return err
	}
	out := writerOr(c.stdout)

	seed := randutil.ResolveSeed(cfg.Table.Seed, time.Now())
	sim := simulator.New(simulator.Config{
		Rounds:  cfg.Simulate.Rounds,
		Workers: cfg.Simulate.Workers,
		Players: cfg.Table.Players,
		StandOn: cfg.Simulate.StandOn,
		Seed:    seed,
		Logger:  logger,
	})

	ctx, stop := shared.SetupSignalHandler(context.Background(), logger)
	defer stop()

	logger.Info("Starting simulation", "rounds", cfg.Simulate.Rounds, "workers", sim.Config().Workers, "seed", seed)
	start := time.Now()
	stats, err := sim.Run(ctx)
	if err != nil {
		return fmt.Errorf("simulation failed: %w", err)
	}

	fmt.Fprint(out, simulator.Report(sim.Config(), stats))
	logger.Info("Simulation finished", "elapsed", time.Since(start).Round(time.Millisecond))
	return nil
}
