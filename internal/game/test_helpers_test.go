package game

import (
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/lox/blackjack/internal/deck"
)

// recorder captures every published event
type recorder struct {
	events []GameEvent
}

func (r *recorder) OnEvent(e GameEvent) {
	r.events = append(r.events, e)
}

func (r *recorder) types() []EventType {
	out := make([]EventType, len(r.events))
	for i, e := range r.events {
		out[i] = e.EventType()
	}
	return out
}

func (r *recorder) count(et EventType) int {
	n := 0
	for _, e := range r.events {
		if e.EventType() == et {
			n++
		}
	}
	return n
}

func quietLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
}

// stackedEngine deals the given cards in order: hole, dealer up card, two
// per player, then hits and dealer draws.
func stackedEngine(t *testing.T, drawOrder string) (*Engine, *recorder) {
	t.Helper()
	rec := &recorder{}
	e := NewEngine(
		WithLogger(quietLogger()),
		WithClock(quartz.NewMock(t)),
		WithStackedDeck(deck.MustParseCards(drawOrder)),
	)
	e.Subscribe(rec)
	return e, rec
}

func mustNewGame(t *testing.T, e *Engine, players int) {
	t.Helper()
	if err := e.NewGame(players); err != nil {
		t.Fatalf("NewGame(%d) error = %v", players, err)
	}
}

func mustHit(t *testing.T, e *Engine) {
	t.Helper()
	applied, err := e.Hit()
	if err != nil {
		t.Fatalf("Hit() error = %v", err)
	}
	if !applied {
		t.Fatal("Hit() was ignored")
	}
}

func mustStand(t *testing.T, e *Engine) {
	t.Helper()
	applied, err := e.Stand()
	if err != nil {
		t.Fatalf("Stand() error = %v", err)
	}
	if !applied {
		t.Fatal("Stand() was ignored")
	}
}
