package game

import (
	"errors"

	"github.com/lox/blackjack/internal/deck"
)

// Policy decides whether the player holding h takes another card. The hand
// is a copy; changing it does not affect the round.
type Policy interface {
	ShouldHit(h *Hand) bool
}

// StandOn hits below the threshold and stands at or above it.
type StandOn int

// ShouldHit implements Policy
func (s StandOn) ShouldHit(h *Hand) bool {
	return h.EffectiveScore() < int(s)
}

// PolicyFunc adapts a function to Policy
type PolicyFunc func(h *Hand) bool

// ShouldHit implements Policy
func (f PolicyFunc) ShouldHit(h *Hand) bool { return f(h) }

// AutoPlay plays every remaining player turn with p. A player who wants a
// card from an empty deck stands instead. It returns once the round has left
// the player phase.
func (e *Engine) AutoPlay(p Policy) error {
	for e.state != nil && e.state.phase == PhasePlayerTurn {
		h := e.state.players[e.state.current].clone()
		if p.ShouldHit(h) {
			_, err := e.Hit()
			if err == nil {
				continue
			}
			if !errors.Is(err, deck.ErrDeckExhausted) {
				return err
			}
		}
		if _, err := e.Stand(); err != nil {
			return err
		}
	}
	return nil
}
