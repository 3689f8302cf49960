package game

import "github.com/lox/blackjack/internal/deck"

// Snapshot is a read-only copy of the engine state. Mutating it has no
// effect on the engine.
type Snapshot struct {
	RoundID       string           `json:"round_id"`
	Phase         Phase            `json:"phase"`
	NumPlayers    int              `json:"num_players"`
	CurrentPlayer int              `json:"current_player"` // -1 unless a player is due to act
	Dealer        DealerSnapshot   `json:"dealer"`
	Players       []PlayerSnapshot `json:"players"`
	DeckRemaining int              `json:"deck_remaining"`
}

// DealerSnapshot describes the dealer's side of the table. HiddenCard and
// Score are only set once the round is finished.
type DealerSnapshot struct {
	Cards        []deck.Card `json:"cards"`
	HiddenCard   *deck.Card  `json:"hidden_card,omitempty"`
	VisibleScore int         `json:"visible_score"`
	Score        int         `json:"score,omitempty"`
}

// PlayerSnapshot describes one player's hand. Outcome is OutcomeNone until
// the round is finished.
type PlayerSnapshot struct {
	Cards   []deck.Card `json:"cards"`
	Score   int         `json:"score"`
	Soft    bool        `json:"soft"`
	Natural bool        `json:"natural"`
	Busted  bool        `json:"busted"`
	Outcome Outcome     `json:"outcome,omitempty"`
}

// Snapshot returns a copy of the current state for presentation layers
func (e *Engine) Snapshot() Snapshot {
	s := e.state
	if s == nil {
		return Snapshot{Phase: PhaseDealing, CurrentPlayer: -1}
	}

	snap := Snapshot{
		RoundID:       s.roundID,
		Phase:         s.phase,
		NumPlayers:    len(s.players),
		CurrentPlayer: -1,
		DeckRemaining: s.deck.Remaining(),
		Players:       make([]PlayerSnapshot, 0, len(s.players)),
	}
	if s.phase == PhasePlayerTurn {
		snap.CurrentPlayer = s.current
	}

	visible := s.dealer.Cards()
	snap.Dealer = DealerSnapshot{
		Cards:        visible,
		VisibleScore: ScoreCards(visible),
	}

	finished := s.phase == PhaseFinished
	dealerScore := s.dealer.EffectiveScore()
	if finished {
		if hole, ok := s.dealer.Hole(); ok {
			snap.Dealer.HiddenCard = &hole
		}
		snap.Dealer.Score = dealerScore
	}

	for _, h := range s.players {
		if h == nil {
			// Dealing failed part way through
			continue
		}
		score := h.EffectiveScore()
		ps := PlayerSnapshot{
			Cards:   h.Cards(),
			Score:   score,
			Soft:    h.IsSoft(),
			Natural: h.Len() == InitialCards && score == BlackjackScore,
			Busted:  score > BlackjackScore,
		}
		if finished {
			ps.Outcome = DetermineOutcome(score, dealerScore)
		}
		snap.Players = append(snap.Players, ps)
	}

	return snap
}

// Current returns the snapshot of the player due to act
func (s Snapshot) Current() (PlayerSnapshot, bool) {
	if s.CurrentPlayer < 0 || s.CurrentPlayer >= len(s.Players) {
		return PlayerSnapshot{}, false
	}
	return s.Players[s.CurrentPlayer], true
}
