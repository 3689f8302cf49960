package announcer

import (
	"github.com/charmbracelet/log"
	"github.com/lox/blackjack/internal/game"
)

// DefaultHistory is the number of lines kept when no limit is given
const DefaultHistory = 200

// Announcer subscribes to an engine and keeps a bounded history of
// narration lines
type Announcer struct {
	formatter *EventFormatter
	logger    *log.Logger
	max       int
	lines     []string
}

// Option configures an Announcer
type Option func(*Announcer)

// WithFormatting sets the formatting options
func WithFormatting(opts FormattingOptions) Option {
	return func(a *Announcer) { a.formatter = NewEventFormatter(opts) }
}

// WithHistory bounds the number of retained lines
func WithHistory(n int) Option {
	return func(a *Announcer) { a.max = n }
}

// WithLogger echoes every line to the logger at debug level
func WithLogger(logger *log.Logger) Option {
	return func(a *Announcer) { a.logger = logger.WithPrefix("announcer") }
}

// New creates an announcer
func New(opts ...Option) *Announcer {
	a := &Announcer{
		formatter: NewEventFormatter(FormattingOptions{}),
		max:       DefaultHistory,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.max <= 0 {
		a.max = DefaultHistory
	}
	return a
}

// OnEvent implements game.EventSubscriber
func (a *Announcer) OnEvent(event game.GameEvent) {
	line := a.formatter.Format(event)
	if line == "" {
		return
	}
	a.Announce(line)
}

// Announce records a line directly
func (a *Announcer) Announce(line string) {
	a.lines = append(a.lines, line)
	if len(a.lines) > a.max {
		a.lines = a.lines[len(a.lines)-a.max:]
	}
	if a.logger != nil {
		a.logger.Debug(line)
	}
}

// Lines returns a copy of the retained history, oldest first
func (a *Announcer) Lines() []string {
	out := make([]string, len(a.lines))
	copy(out, a.lines)
	return out
}
