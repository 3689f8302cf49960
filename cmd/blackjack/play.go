package main

import (
	"context"
	"errors"
	"io"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/coder/quartz"
	"golang.org/x/sync/errgroup"

	"github.com/lox/blackjack/cmd/blackjack/shared"
	"github.com/lox/blackjack/internal/announcer"
	"github.com/lox/blackjack/internal/assets"
	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/monitor"
	"github.com/lox/blackjack/internal/randutil"
	"github.com/lox/blackjack/internal/tui"
)

// PlayCmd runs an interactive table
type PlayCmd struct {
	Players     int    `short:"p" help:"Players at the table, 1-6 (default from config)"`
	Seed        int64  `help:"Shuffle seed, 0 for time-based (default from config)"`
	Plain       bool   `help:"Line-oriented prompt instead of the full-screen UI"`
	Monitor     bool   `help:"Serve a read-only websocket feed for spectators"`
	MonitorAddr string `help:"Monitor listen address (default from config)"`
	Assets      string `help:"Card image directory (default from config)"`
	SymbolCards bool   `help:"Narrate cards as 10♥ rather than 10 of Hearts"`
	QuietTurns  bool   `help:"Leave turn changes out of the narration"`

	stdin  io.Reader
	stdout io.Writer
}

func (c *PlayCmd) Run(g *Globals) error {
	cfg, err := g.loadConfig()
	if err != nil {
		return err
	}
	if c.Players != 0 {
		cfg.Table.Players = c.Players
	}
	if c.Seed != 0 {
		cfg.Table.Seed = c.Seed
	}
	if c.Monitor {
		cfg.Monitor.Enabled = true
	}
	if c.MonitorAddr != "" {
		cfg.Monitor.Address = c.MonitorAddr
	}
	if c.Assets != "" {
		cfg.Assets.Dir = c.Assets
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	stdin, stdout := c.stdin, c.stdout
	if stdin == nil {
		stdin = os.Stdin
	}
	if stdout == nil {
		stdout = os.Stdout
	}

	// The full-screen UI owns the terminal, so it logs to a file.
	logOut := io.Writer(os.Stderr)
	if !c.Plain {
		f, err := shared.OpenLogFile(cfg.Log.File)
		if err != nil {
			return err
		}
		defer f.Close()
		logOut = f
	}
	logger, err := shared.SetupLogger(cfg.Log.Level, g.Debug, logOut)
	if err != nil {
		return err
	}

	seed := randutil.ResolveSeed(cfg.Table.Seed, time.Now())
	logger.Info("Starting table", "players", game.ClampPlayers(cfg.Table.Players), "seed", seed)

	engine := game.NewEngine(game.WithSeed(seed), game.WithLogger(logger))
	resolver := assets.NewResolver(cfg.Assets.Dir, logger)

	ctx, stop := shared.SetupSignalHandler(context.Background(), logger)
	defer stop()

	eg, ctx := errgroup.WithContext(ctx)
	uiCtx, uiDone := context.WithCancel(ctx)
	defer uiDone()

	if cfg.Monitor.Enabled {
		srv := monitor.NewServer(cfg.Monitor.Address, quartz.NewReal(), logger,
			monitor.WithValidator(cfg.Monitor.Validator(), cfg.Monitor.AuthFailOpen))
		engine.Subscribe(monitor.NewFeed(srv.Hub(), engine.Snapshot))
		eg.Go(func() error {
			return srv.ListenAndServe(uiCtx)
		})
	}

	eg.Go(func() error {
		defer uiDone()
		if c.Plain {
			err := tui.RunPlain(uiCtx, engine, stdin, stdout, tui.PlainOptions{
				Players:    cfg.Table.Players,
				QuietTurns: c.QuietTurns,
				Logger:     logger,
			})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}

		opts := []tea.ProgramOption{tea.WithContext(uiCtx)}
		if c.stdin != nil {
			opts = append(opts, tea.WithInput(c.stdin))
		}
		if c.stdout != nil {
			opts = append(opts, tea.WithOutput(c.stdout))
		}
		model := tui.NewTUIModel(engine, tui.Options{
			Players:   cfg.Table.Players,
			Assets:    resolver,
			Narration: announcer.FormattingOptions{SymbolCards: c.SymbolCards, QuietTurns: c.QuietTurns},
			Logger:    logger,
		})
		err := tui.Run(model, opts...)
		if errors.Is(err, tea.ErrProgramKilled) {
			return nil
		}
		return err
	})

	err = eg.Wait()
	logger.Info("Table closed")
	return err
}
