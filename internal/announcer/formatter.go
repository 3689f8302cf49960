// Package announcer turns engine events into short narration lines for
// screen readers, logs and spectators.
package announcer

import (
	"fmt"
	"strings"

	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/game"
)

// FormattingOptions controls how events are rendered
type FormattingOptions struct {
	SymbolCards bool // "10♥" instead of "10 of Hearts"
	QuietTurns  bool // omit "Player N's turn" lines
}

// EventFormatter renders game events as text
type EventFormatter struct {
	opts FormattingOptions
}

// NewEventFormatter creates a new event formatter with the given options
func NewEventFormatter(opts FormattingOptions) *EventFormatter {
	return &EventFormatter{opts: opts}
}

// Format returns the narration for an event, or "" if the event is not
// announced
func (ef *EventFormatter) Format(event game.GameEvent) string {
	switch e := event.(type) {
	case game.GameStartedEvent:
		if e.NumPlayers == 1 {
			return "New game started with 1 player"
		}
		return fmt.Sprintf("New game started with %d players", e.NumPlayers)
	case game.TurnChangedEvent:
		if ef.opts.QuietTurns {
			return ""
		}
		return fmt.Sprintf("%s's turn", playerLabel(e.Player))
	case game.CardDrawnEvent:
		return fmt.Sprintf("%s received %s. New total: %d", playerLabel(e.Player), ef.card(e.Card), e.Score)
	case game.BustEvent:
		return fmt.Sprintf("%s busts!", playerLabel(e.Player))
	case game.StandEvent:
		return fmt.Sprintf("%s stands with %d", playerLabel(e.Player), e.Score)
	case game.AllBlackjackEvent:
		return "Every player has blackjack!"
	case game.AllBustedEvent:
		return "All players busted. Dealer wins!"
	case game.DealerTurnStartedEvent:
		return fmt.Sprintf("Dealer's turn. Hidden card is %s", ef.card(e.HiddenCard))
	case game.DealerDrawsEvent:
		return fmt.Sprintf("Dealer draws %s", ef.card(e.Card))
	case game.DealerStandsEvent:
		if e.DeckExhausted {
			return fmt.Sprintf("Dealer's final score: %d (deck exhausted)", e.Score)
		}
		return fmt.Sprintf("Dealer's final score: %d", e.Score)
	case game.ResultsEvent:
		return ef.formatResults(e)
	default:
		return ""
	}
}

func (ef *EventFormatter) formatResults(e game.ResultsEvent) string {
	var sb strings.Builder
	sb.WriteString("Game over. Results:")
	for _, r := range e.Results {
		fmt.Fprintf(&sb, " %s: %s (%d).", playerLabel(r.Player), ResultLabel(r), r.Score)
	}
	return sb.String()
}

// ResultLabel names a player's result, calling out busts separately from
// ordinary losses
func ResultLabel(r game.PlayerResult) string {
	if r.Busted {
		return "Bust"
	}
	switch r.Outcome {
	case game.OutcomeWin:
		return "Win"
	case game.OutcomeTie:
		return "Tie"
	case game.OutcomeLose:
		return "Lose"
	default:
		return "-"
	}
}

func (ef *EventFormatter) card(c deck.Card) string {
	if ef.opts.SymbolCards {
		return c.String()
	}
	return fmt.Sprintf("%s of %s", c.Rank, c.Suit.Name())
}

func playerLabel(index int) string {
	return fmt.Sprintf("Player %d", index+1)
}
