// Package simulator plays many blackjack rounds with automatic players and
// reports aggregate statistics.
package simulator

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/randutil"
	"github.com/lox/blackjack/internal/statistics"
)

// Config holds configuration for running simulations
type Config struct {
	Rounds  int
	Workers int
	Players int
	StandOn int
	Seed    int64
	Logger  *log.Logger

	// Progress, when set, is called after every finished round with the
	// number of rounds completed so far. It may be called concurrently.
	Progress func(done int)
}

// Simulator runs blackjack simulations
type Simulator struct {
	config Config
}

// New creates a simulator, filling in defaults for zero values
func New(config Config) *Simulator {
	if config.Workers < 1 {
		config.Workers = 1
	}
	if config.Players == 0 {
		config.Players = 1
	}
	config.Players = game.ClampPlayers(config.Players)
	if config.StandOn == 0 {
		config.StandOn = game.DealerStandsOn
	}
	if config.Logger == nil {
		config.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if config.Workers > config.Rounds && config.Rounds > 0 {
		config.Workers = config.Rounds
	}
	return &Simulator{config: config}
}

// Config returns the effective configuration
func (s *Simulator) Config() Config {
	return s.config
}

// Run plays the configured number of rounds. Worker w plays rounds w,
// w+Workers, ... with its own engine seeded from the session seed, so a
// given seed and worker count always produce the same totals.
func (s *Simulator) Run(ctx context.Context) (*statistics.Statistics, error) {
	cfg := s.config
	if cfg.Rounds <= 0 {
		return nil, fmt.Errorf("rounds must be positive, got %d", cfg.Rounds)
	}

	results := make([]*statistics.Statistics, cfg.Workers)
	var done atomic.Int64

	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < cfg.Workers; w++ {
		g.Go(func() error {
			stats, err := s.runWorker(ctx, w, &done)
			results[w] = stats
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := &statistics.Statistics{}
	for _, r := range results {
		total.Merge(r)
	}
	if err := total.Validate(); err != nil {
		return nil, fmt.Errorf("statistics validation failed: %w", err)
	}

	cfg.Logger.Info("Simulation complete", "rounds", total.Rounds, "hands", total.Hands, "mean", fmt.Sprintf("%.4f", total.Mean()))
	return total, nil
}

func (s *Simulator) runWorker(ctx context.Context, worker int, done *atomic.Int64) (*statistics.Statistics, error) {
	cfg := s.config
	logger := cfg.Logger.With("worker", worker)
	seed := randutil.Derive(cfg.Seed, worker)
	engine := game.NewEngine(game.WithRNG(randutil.New(seed)), game.WithLogger(logger))
	policy := game.StandOn(cfg.StandOn)

	stats := &statistics.Statistics{}
	for round := worker; round < cfg.Rounds; round += cfg.Workers {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		result, err := playRound(engine, cfg.Players, policy)
		if err != nil {
			return stats, fmt.Errorf("worker %d round %d (seed %d): %w", worker, round, seed, err)
		}
		stats.Add(result)

		n := int(done.Add(1))
		if cfg.Progress != nil {
			cfg.Progress(n)
		}
	}

	logger.Debug("Worker finished", "rounds", stats.Rounds, "seed", seed)
	return stats, nil
}

func playRound(engine *game.Engine, players int, policy game.Policy) (statistics.RoundResult, error) {
	if err := engine.NewGame(players); err != nil {
		return statistics.RoundResult{}, err
	}
	if err := engine.AutoPlay(policy); err != nil {
		return statistics.RoundResult{}, err
	}
	return statistics.FromSnapshot(engine.Snapshot())
}

// Report renders stats as a human-readable summary
func Report(cfg Config, stats *statistics.Statistics) string {
	var b strings.Builder
	low, high := stats.ConfidenceInterval95()

	fmt.Fprintf(&b, "Rounds: %d (%d players, stand on %d, %d workers, seed %d)\n",
		stats.Rounds, cfg.Players, cfg.StandOn, cfg.Workers, cfg.Seed)
	fmt.Fprintf(&b, "Hands: %d\n", stats.Hands)
	fmt.Fprintf(&b, "Wins: %d (%.2f%%)  Losses: %d  Ties: %d\n",
		stats.Wins, 100*stats.WinRate(), stats.Losses, stats.Ties)
	fmt.Fprintf(&b, "Player busts: %d (%.2f%%)  Naturals: %d\n",
		stats.Busts, 100*stats.BustRate(), stats.Naturals)
	fmt.Fprintf(&b, "Net per hand: %+.4f ± %.4f (95%% CI [%+.4f, %+.4f])\n",
		stats.Mean(), 1.96*stats.StdError(), low, high)
	fmt.Fprintf(&b, "Dealer busts: %.2f%% of %d dealer turns, avg %.2f cards\n",
		100*stats.DealerBustRate(), stats.DealerPlayed, stats.AvgDealerCards())
	fmt.Fprintf(&b, "All-blackjack rounds: %d  All-bust rounds: %d\n",
		stats.AllBlackjackRounds, stats.AllBustedRounds)

	for seat := 0; seat < cfg.Players; seat++ {
		fmt.Fprintf(&b, "  Seat %d: %+.4f over %d hands\n", seat+1, stats.SeatMean(seat), stats.Seats[seat].Hands)
	}
	return b.String()
}
