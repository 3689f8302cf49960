package tui

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"

	"github.com/lox/blackjack/internal/announcer"
	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/game"
)

// PlainOptions configures RunPlain
type PlainOptions struct {
	Players    int
	QuietTurns bool // the prompt already names the player to act
	Logger     *log.Logger
	Output     []termenv.OutputOption // e.g. termenv.WithProfile(termenv.Ascii)
}

// plainPrinter writes coloured narration for each engine event
type plainPrinter struct {
	out       *termenv.Output
	formatter *announcer.EventFormatter
}

func (p *plainPrinter) OnEvent(event game.GameEvent) {
	switch e := event.(type) {
	case game.ResultsEvent:
		p.println(p.out.String("Game over. Results:").Bold())
		for _, r := range e.Results {
			label := announcer.ResultLabel(r)
			line := fmt.Sprintf("  Player %d: %s (%d)", r.Player+1, label, r.Score)
			p.println(p.out.String(line).Foreground(p.out.Color(outcomeColor(r.Outcome))))
		}
		return
	case game.BustEvent, game.AllBustedEvent:
		p.println(p.out.String(p.formatter.Format(event)).Foreground(p.out.Color(colorRed)))
		return
	case game.AllBlackjackEvent:
		p.println(p.out.String(p.formatter.Format(event)).Foreground(p.out.Color(colorYellow)).Bold())
		return
	case game.TurnChangedEvent:
		if line := p.formatter.Format(event); line != "" {
			p.println(p.out.String(line).Foreground(p.out.Color(colorGreen)))
		}
		return
	}

	if line := p.formatter.Format(event); line != "" {
		p.println(p.out.String(line))
	}
}

func (p *plainPrinter) println(s termenv.Style) {
	fmt.Fprintln(p.out, s.String())
}

func outcomeColor(o game.Outcome) string {
	switch o {
	case game.OutcomeWin:
		return colorYellow
	case game.OutcomeLose:
		return colorRed
	default:
		return colorText
	}
}

// RunPlain plays on a line-oriented terminal: one command per line read from
// in, narration written to out. It returns when in is exhausted, the player
// quits, or ctx is cancelled.
func RunPlain(ctx context.Context, engine *game.Engine, in io.Reader, out io.Writer, opts PlainOptions) error {
	logger := opts.Logger
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	logger = logger.WithPrefix("plain")

	o := termenv.NewOutput(out, opts.Output...)
	printer := &plainPrinter{
		out:       o,
		formatter: announcer.NewEventFormatter(announcer.FormattingOptions{SymbolCards: true, QuietTurns: opts.QuietTurns}),
	}
	engine.Subscribe(printer)
	defer engine.Unsubscribe(printer)

	players := opts.Players
	if players == 0 {
		players = 1
	}
	players = game.ClampPlayers(players)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	lines := readLines(ctx, in)

	deal := func() {
		if err := engine.NewGame(players); err != nil {
			logger.Error("Failed to start game", "error", err)
			fmt.Fprintln(o, o.String("Could not deal: "+err.Error()).Foreground(o.Color(colorRed)))
		}
	}

	deal()
	for {
		fmt.Fprint(o, prompt(o, engine.Snapshot(), players))

		var line string
		var ok bool
		select {
		case <-ctx.Done():
			fmt.Fprintln(o)
			return ctx.Err()
		case line, ok = <-lines:
			if !ok {
				fmt.Fprintln(o)
				return nil
			}
		}

		var err error
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "h", "hit":
			_, err = engine.Hit()
		case "s", "stand":
			_, err = engine.Stand()
		case "n", "new":
			deal()
		case "+":
			players = game.ClampPlayers(players + 1)
			fmt.Fprintf(o, "Next game: %d %s\n", players, plural(players, "player"))
		case "-":
			players = game.ClampPlayers(players - 1)
			fmt.Fprintf(o, "Next game: %d %s\n", players, plural(players, "player"))
		case "q", "quit", "exit":
			return nil
		case "":
		default:
			fmt.Fprintln(o, o.String(fmt.Sprintf("Unknown command %q. Use h, s, n, +, - or q.", line)).Foreground(o.Color(colorMuted)))
		}
		if err != nil {
			logger.Error("Command failed", "error", err)
			fmt.Fprintln(o, o.String(err.Error()).Foreground(o.Color(colorRed)))
		}
	}
}

// readLines delivers lines from in until it is exhausted or ctx is done,
// then closes the channel.
func readLines(ctx context.Context, in io.Reader) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()
	return lines
}

// prompt shows the hand in play, or the between-rounds choices
func prompt(o *termenv.Output, snap game.Snapshot, players int) string {
	current, ok := snap.Current()
	if !ok {
		return fmt.Sprintf("[n]ew game (%d %s), [+/-] players, [q]uit > ", players, plural(players, "player"))
	}
	return fmt.Sprintf("Dealer shows %s. Player %d holds %s (%s). [h]it, [s]tand > ",
		plainCards(o, snap.Dealer.Cards), snap.CurrentPlayer+1, plainCards(o, current.Cards), scoreText(current))
}

func plainCards(o *termenv.Output, cards []deck.Card) string {
	parts := make([]string, len(cards))
	for i, c := range cards {
		s := o.String(c.String())
		if c.IsRed() {
			s = s.Foreground(o.Color(colorRed))
		}
		parts[i] = s.String()
	}
	return strings.Join(parts, " ")
}
