// Package tui renders a blackjack table in the terminal, either as a Bubble
// Tea program or as a plain line-oriented prompt.
package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/lox/blackjack/internal/announcer"
	"github.com/lox/blackjack/internal/assets"
	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/game"
)

// Options configures a table model
type Options struct {
	Players   int              // seats for the first game, clamped to 1..6
	Assets    *assets.Resolver // nil uses placeholders only
	Narration announcer.FormattingOptions
	Logger    *log.Logger
}

// logHistory is the number of narration lines kept for the log pane
const logHistory = 500

// TUIModel is the Bubble Tea model for one blackjack table
type TUIModel struct {
	engine    *game.Engine
	announcer *announcer.Announcer
	assets    *assets.Resolver
	logger    *log.Logger

	keys    KeyMap
	help    help.Model
	logView viewport.Model

	players  int // seats for the next game
	err      error
	width    int
	height   int
	quitting bool
}

// NewTUIModel wires a model to engine and deals the first game
func NewTUIModel(engine *game.Engine, opts Options) *TUIModel {
	logger := opts.Logger
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	resolver := opts.Assets
	if resolver == nil {
		resolver = assets.NewResolver("", logger)
	}
	players := opts.Players
	if players == 0 {
		players = 1
	}

	m := &TUIModel{
		engine:    engine,
		announcer: announcer.New(
			announcer.WithFormatting(opts.Narration),
			announcer.WithHistory(logHistory),
			announcer.WithLogger(logger),
		),
		assets:    resolver,
		logger:    logger.WithPrefix("tui"),
		keys:      DefaultKeyMap(),
		help:      help.New(),
		logView:   viewport.New(40, 10),
		players:   game.ClampPlayers(players),
	}
	engine.Subscribe(m.announcer)
	m.newGame()
	return m
}

// Init implements tea.Model
func (m *TUIModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (m *TUIModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.resize()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Hit):
			m.run("hit", m.engine.Hit)
		case key.Matches(msg, m.keys.Stand):
			m.run("stand", m.engine.Stand)
		case key.Matches(msg, m.keys.NewGame):
			m.newGame()
		case key.Matches(msg, m.keys.MorePlayers):
			m.setPlayers(m.players + 1)
		case key.Matches(msg, m.keys.FewerPlayers):
			m.setPlayers(m.players - 1)
		case key.Matches(msg, m.keys.ScrollUp):
			m.logView.ScrollUp(1)
		case key.Matches(msg, m.keys.ScrollDown):
			m.logView.ScrollDown(1)
		}

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.logView, cmd = m.logView.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *TUIModel) run(name string, cmd func() (bool, error)) {
	applied, err := cmd()
	m.err = err
	if err != nil {
		m.logger.Error("Command failed", "command", name, "error", err)
		m.announcer.Announce(fmt.Sprintf("Cannot %s: %v", name, err))
	} else if !applied {
		m.logger.Debug("Command ignored", "command", name, "phase", m.engine.Phase())
	}
	m.refreshLog()
}

func (m *TUIModel) newGame() {
	m.err = m.engine.NewGame(m.players)
	if m.err != nil {
		m.logger.Error("Failed to start game", "error", m.err)
		m.announcer.Announce(fmt.Sprintf("Could not deal: %v", m.err))
	}
	m.refreshLog()
}

func (m *TUIModel) setPlayers(n int) {
	m.players = game.ClampPlayers(n)
	m.announcer.Announce(fmt.Sprintf("Next game: %d %s", m.players, plural(m.players, "player")))
	m.refreshLog()
}

func (m *TUIModel) refreshLog() {
	m.logView.SetContent(GameLogStyle.Render(strings.Join(m.announcer.Lines(), "\n")))
	m.logView.GotoBottom()
}

func (m *TUIModel) resize() {
	table := m.renderTable()
	width := m.width - 2
	height := m.height - lipgloss.Height(table) - lipgloss.Height(m.help.View(m.keys)) - 5
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	m.logView.Width = width
	m.logView.Height = height
	m.logView.GotoBottom()
}

// View implements tea.Model
func (m *TUIModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.renderTable())
	b.WriteString("\n")
	b.WriteString(PaneStyle.Render(m.logView.View()))
	b.WriteString("\n")
	if m.err != nil {
		b.WriteString(ErrorStyle.Render(m.err.Error()))
		b.WriteString("\n")
	}
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m *TUIModel) renderTable() string {
	snap := m.engine.Snapshot()

	var b strings.Builder
	header := fmt.Sprintf("Blackjack · %s · Deck: %d", snap.Phase, snap.DeckRemaining)
	b.WriteString(HeaderStyle.Render(header))
	b.WriteString("\n")
	b.WriteString(InfoStyle.Render(fmt.Sprintf("Next game: %d %s", m.players, plural(m.players, "player"))))
	b.WriteString("\n\n")

	b.WriteString(m.renderDealer(snap))
	b.WriteString("\n")
	for i, p := range snap.Players {
		b.WriteString(m.renderPlayer(i, p, i == snap.CurrentPlayer))
		b.WriteString("\n")
	}
	return b.String()
}

func (m *TUIModel) renderDealer(snap game.Snapshot) string {
	cards := make([]string, 0, len(snap.Dealer.Cards)+1)
	switch {
	case snap.Dealer.HiddenCard != nil:
		cards = append(cards, m.renderCard(*snap.Dealer.HiddenCard))
	case snap.Phase != game.PhaseDealing || len(snap.Dealer.Cards) > 0:
		cards = append(cards, m.renderBack())
	}
	for _, c := range snap.Dealer.Cards {
		cards = append(cards, m.renderCard(c))
	}

	score := fmt.Sprintf("showing %d", snap.Dealer.VisibleScore)
	if snap.Phase == game.PhaseFinished {
		score = fmt.Sprintf("score %d", snap.Dealer.Score)
	}
	return fmt.Sprintf("  %-9s %s  %s", "Dealer", strings.Join(cards, " "), InfoStyle.Render(score))
}

// scoreText shows a player's total, calling out a soft hand
func scoreText(p game.PlayerSnapshot) string {
	if p.Soft && !p.Natural {
		return fmt.Sprintf("soft %d", p.Score)
	}
	return fmt.Sprintf("%d", p.Score)
}

func (m *TUIModel) renderPlayer(i int, p game.PlayerSnapshot, current bool) string {
	cards := make([]string, len(p.Cards))
	for j, c := range p.Cards {
		cards[j] = m.renderCard(c)
	}

	marker := " "
	name := PlayerInfoStyle.Render(fmt.Sprintf("%-9s", fmt.Sprintf("Player %d", i+1)))
	if current {
		marker = CurrentPlayerStyle.Render("▶")
		name = CurrentPlayerStyle.Render(fmt.Sprintf("%-9s", fmt.Sprintf("Player %d", i+1)))
	}

	line := fmt.Sprintf("%s %s %s  %s", marker, name, strings.Join(cards, " "), scoreText(p))
	if p.Natural {
		line += WinStyle.Render(" blackjack")
	}
	if p.Outcome != game.OutcomeNone {
		label := announcer.ResultLabel(game.PlayerResult{Player: i, Score: p.Score, Busted: p.Busted, Outcome: p.Outcome})
		line += "  " + OutcomeStyle(p.Outcome).Render(label)
	} else if p.Busted {
		line += "  " + LoseStyle.Render("Bust")
	}
	return line
}

func (m *TUIModel) renderCard(c deck.Card) string {
	asset := m.assets.Resolve(c)
	face := c.String()
	red := c.IsRed()
	if asset.Placeholder != nil {
		face = asset.Placeholder.Label + asset.Placeholder.Symbol
		red = asset.Placeholder.Red
	}
	if red {
		return RedCardStyle.Render("[" + face + "]")
	}
	return BlackCardStyle.Render("[" + face + "]")
}

func (m *TUIModel) renderBack() string {
	back := m.assets.Back()
	symbol := "▒"
	if back.Placeholder != nil {
		symbol = back.Placeholder.Symbol
	}
	return CardBackStyle.Render("[" + symbol + symbol + "]")
}

// Players returns the seat count used for the next game
func (m *TUIModel) Players() int {
	return m.players
}

// Log returns the narration shown in the log pane
func (m *TUIModel) Log() []string {
	return m.announcer.Lines()
}

// Run starts the interactive program on the alternate screen
func Run(model *TUIModel, opts ...tea.ProgramOption) error {
	opts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithMouseCellMotion()}, opts...)
	_, err := tea.NewProgram(model, opts...).Run()
	return err
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
