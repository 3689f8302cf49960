package simulator

import (
	"context"
	"io"
	"sync/atomic"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
}

func TestNewAppliesDefaults(t *testing.T) {
	t.Parallel()

	sim := New(Config{Rounds: 2, Workers: 8, Players: 12})
	cfg := sim.Config()
	assert.Equal(t, 2, cfg.Workers, "workers capped at rounds")
	assert.Equal(t, 6, cfg.Players, "players clamped")
	assert.Equal(t, 17, cfg.StandOn)
	assert.NotNil(t, cfg.Logger)
}

func TestRunCountsEveryRound(t *testing.T) {
	t.Parallel()

	var progress atomic.Int64
	sim := New(Config{
		Rounds:   200,
		Workers:  4,
		Players:  3,
		StandOn:  17,
		Seed:     12345,
		Logger:   quietLogger(),
		Progress: func(int) { progress.Add(1) },
	})

	stats, err := sim.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 200, stats.Rounds)
	assert.Equal(t, 600, stats.Hands)
	assert.Equal(t, int64(200), progress.Load())
	assert.Equal(t, stats.Hands, stats.Wins+stats.Losses+stats.Ties)
	assert.NoError(t, stats.Validate())

	for seat := 0; seat < 3; seat++ {
		assert.Equal(t, 200, stats.Seats[seat].Hands)
	}
	assert.Zero(t, stats.Seats[3].Hands)
}

func TestRunIsDeterministic(t *testing.T) {
	t.Parallel()

	cfg := Config{Rounds: 150, Workers: 3, Players: 2, Seed: 99, Logger: quietLogger()}

	a, err := New(cfg).Run(context.Background())
	require.NoError(t, err)
	b, err := New(cfg).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestRunPolicyChangesBusts(t *testing.T) {
	t.Parallel()

	timid, err := New(Config{Rounds: 400, Workers: 2, Players: 2, StandOn: 12, Seed: 7, Logger: quietLogger()}).Run(context.Background())
	require.NoError(t, err)
	greedy, err := New(Config{Rounds: 400, Workers: 2, Players: 2, StandOn: 21, Seed: 7, Logger: quietLogger()}).Run(context.Background())
	require.NoError(t, err)

	assert.Less(t, timid.Busts, greedy.Busts)
}

func TestRunDealerFigures(t *testing.T) {
	t.Parallel()

	stats, err := New(Config{Rounds: 500, Workers: 2, Players: 1, Seed: 3, Logger: quietLogger()}).Run(context.Background())
	require.NoError(t, err)

	assert.Greater(t, stats.DealerPlayed, 0)
	assert.GreaterOrEqual(t, stats.AvgDealerCards(), 2.0)
	assert.Greater(t, stats.DealerBustRate(), 0.0)
	assert.Less(t, stats.DealerBustRate(), 1.0)
}

func TestRunHonoursCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(Config{Rounds: 1000, Workers: 2, Logger: quietLogger()}).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunRejectsZeroRounds(t *testing.T) {
	t.Parallel()

	_, err := New(Config{Logger: quietLogger()}).Run(context.Background())
	assert.Error(t, err)
}

func TestReport(t *testing.T) {
	t.Parallel()

	cfg := Config{Rounds: 20, Workers: 1, Players: 2, StandOn: 17, Seed: 5, Logger: quietLogger()}
	sim := New(cfg)
	stats, err := sim.Run(context.Background())
	require.NoError(t, err)

	out := Report(sim.Config(), stats)
	assert.Contains(t, out, "Rounds: 20 (2 players, stand on 17, 1 workers, seed 5)")
	assert.Contains(t, out, "Hands: 40")
	assert.Contains(t, out, "Seat 1:")
	assert.Contains(t, out, "Seat 2:")
	assert.NotContains(t, out, "Seat 3:")
}
