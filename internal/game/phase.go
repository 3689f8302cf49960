package game

import "fmt"

// Phase is the engine's position in the round state machine
type Phase int

const (
	PhaseDealing Phase = iota
	PhasePlayerTurn
	PhaseDealerTurn
	PhaseFinished
)

// String returns the string representation of the phase
func (p Phase) String() string {
	switch p {
	case PhaseDealing:
		return "dealing"
	case PhasePlayerTurn:
		return "player_turn"
	case PhaseDealerTurn:
		return "dealer_turn"
	case PhaseFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// MarshalText encodes the phase by name
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText decodes a phase name
func (p *Phase) UnmarshalText(text []byte) error {
	for candidate := PhaseDealing; candidate <= PhaseFinished; candidate++ {
		if candidate.String() == string(text) {
			*p = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown phase %q", text)
}

// Outcome is a player's result against the dealer
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeWin
	OutcomeLose
	OutcomeTie
)

// String returns the string representation of the outcome
func (o Outcome) String() string {
	switch o {
	case OutcomeWin:
		return "win"
	case OutcomeLose:
		return "lose"
	case OutcomeTie:
		return "tie"
	default:
		return "none"
	}
}

// MarshalText encodes the outcome by name
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalText decodes an outcome name
func (o *Outcome) UnmarshalText(text []byte) error {
	switch string(text) {
	case "win":
		*o = OutcomeWin
	case "lose":
		*o = OutcomeLose
	case "tie":
		*o = OutcomeTie
	case "none", "":
		*o = OutcomeNone
	default:
		return fmt.Errorf("unknown outcome %q", text)
	}
	return nil
}

// DetermineOutcome compares a player's effective score with the dealer's.
// A busted player loses even if the dealer also busts.
func DetermineOutcome(playerScore, dealerScore int) Outcome {
	switch {
	case playerScore > BlackjackScore:
		return OutcomeLose
	case dealerScore > BlackjackScore:
		return OutcomeWin
	case playerScore == dealerScore:
		return OutcomeTie
	case playerScore > dealerScore:
		return OutcomeWin
	default:
		return OutcomeLose
	}
}
