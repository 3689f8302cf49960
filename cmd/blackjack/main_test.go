package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/blackjack/internal/config"
	"github.com/lox/blackjack/internal/fileutil"
)

// isolate points the CLI at a temp dir and clears BLACKJACK_* variables
func isolate(t *testing.T) *Globals {
	t.Helper()
	for _, name := range []string{config.EnvPlayers, config.EnvSeed, config.EnvLogLevel, config.EnvMonitorAddr} {
		t.Setenv(name, "")
	}
	dir := t.TempDir()
	return &Globals{
		ConfigFile: filepath.Join(dir, "blackjack.hcl"),
		EnvFile:    filepath.Join(dir, ".env"),
	}
}

func parse(t *testing.T, args ...string) (*CLI, *kong.Context) {
	t.Helper()
	var cli CLI
	parser, err := newParser(&cli, kong.Exit(func(int) { t.Fatal("unexpected exit") }))
	require.NoError(t, err)
	ctx, err := parser.Parse(args)
	require.NoError(t, err)
	return &cli, ctx
}

func TestParseDefaults(t *testing.T) {
	cli, ctx := parse(t)
	assert.Equal(t, "play", ctx.Command())
	assert.Equal(t, config.DefaultFile, cli.ConfigFile)
	assert.Equal(t, ".env", cli.EnvFile)
}

func TestParseSimulateFlags(t *testing.T) {
	cli, ctx := parse(t, "--debug", "simulate", "-n", "50", "--workers", "3", "--stand-on", "15", "--seed", "9")
	assert.Equal(t, "simulate", ctx.Command())
	assert.True(t, cli.Debug)
	assert.Equal(t, 50, cli.Simulate.Rounds)
	assert.Equal(t, 3, cli.Simulate.Workers)
	assert.Equal(t, 15, cli.Simulate.StandOn)
	assert.Equal(t, int64(9), cli.Simulate.Seed)
}

func TestParseConfigInit(t *testing.T) {
	cli, ctx := parse(t, "-c", "table.hcl", "config", "init", "--force")
	assert.Equal(t, "config init", ctx.Command())
	assert.Equal(t, "table.hcl", cli.ConfigFile)
	assert.True(t, cli.Config.Init.Force)
}

func TestConfigInitAndShow(t *testing.T) {
	g := isolate(t)

	var out bytes.Buffer
	initCmd := &ConfigInitCmd{stdout: &out}
	require.NoError(t, initCmd.Run(g))
	assert.Equal(t, "Wrote "+g.ConfigFile+"\n", out.String())

	err := initCmd.Run(g)
	assert.ErrorIs(t, err, fileutil.ErrExists)

	initCmd.Force = true
	require.NoError(t, initCmd.Run(g))

	t.Setenv(config.EnvPlayers, "5")
	out.Reset()
	show := &ConfigShowCmd{stdout: &out}
	require.NoError(t, show.Run(g))

	shown, err := config.Parse(out.Bytes(), "shown.hcl")
	require.NoError(t, err)
	assert.Equal(t, 5, shown.Table.Players)
	assert.Equal(t, 17, shown.Simulate.StandOn)
}

func TestDotEnvOverridesConfig(t *testing.T) {
	g := isolate(t)
	os.Unsetenv(config.EnvSeed)
	require.NoError(t, os.WriteFile(g.EnvFile, []byte(config.EnvSeed+"=31337\n"), 0o644))

	cfg, err := g.loadConfig()
	require.NoError(t, err)
	assert.Equal(t, int64(31337), cfg.Table.Seed)
}

func TestSimulateCommand(t *testing.T) {
	g := isolate(t)
	require.NoError(t, os.WriteFile(g.ConfigFile, []byte("log {\n  level = \"error\"\n}\n"), 0o644))

	var out bytes.Buffer
	cmd := &SimulateCmd{Rounds: 40, Workers: 2, Players: 2, Seed: 11, stdout: &out}
	require.NoError(t, cmd.Run(g))

	report := out.String()
	assert.Contains(t, report, "Rounds: 40 (2 players, stand on 17, 2 workers, seed 11)")
	assert.Contains(t, report, "Hands: 80")
}

func TestSimulateRejectsBadStandOn(t *testing.T) {
	g := isolate(t)
	cmd := &SimulateCmd{Rounds: 10, StandOn: 30, stdout: &bytes.Buffer{}}
	err := cmd.Run(g)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stand_on")
}

func TestPlayPlain(t *testing.T) {
	g := isolate(t)
	require.NoError(t, os.WriteFile(g.ConfigFile, []byte("log {\n  level = \"error\"\n}\n"), 0o644))

	var out bytes.Buffer
	cmd := &PlayCmd{
		Players: 2,
		Seed:    5,
		Plain:   true,
		stdin:   strings.NewReader("s\ns\nq\n"),
		stdout:  &out,
	}
	require.NoError(t, cmd.Run(g))

	assert.Contains(t, out.String(), "New game started with 2 players")
	assert.Contains(t, out.String(), "Game over. Results:")
}
