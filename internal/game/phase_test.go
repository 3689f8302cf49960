package game

import "testing"

func TestDetermineOutcome(t *testing.T) {
	tests := []struct {
		name   string
		player int
		dealer int
		want   Outcome
	}{
		{"higher score wins", 20, 18, OutcomeWin},
		{"bust loses regardless of dealer", 22, 18, OutcomeLose},
		{"dealer bust wins", 19, 22, OutcomeWin},
		{"equal scores tie", 17, 17, OutcomeTie},
		{"lower score loses", 16, 20, OutcomeLose},
		{"both bust player loses", 23, 24, OutcomeLose},
		{"21 ties 21", 21, 21, OutcomeTie},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetermineOutcome(tt.player, tt.dealer); got != tt.want {
				t.Errorf("DetermineOutcome(%d, %d) = %v, want %v", tt.player, tt.dealer, got, tt.want)
			}
		})
	}
}

func TestOutcomeText(t *testing.T) {
	for _, o := range []Outcome{OutcomeNone, OutcomeWin, OutcomeLose, OutcomeTie} {
		text, err := o.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText(%v) error = %v", o, err)
		}
		var back Outcome
		if err := back.UnmarshalText(text); err != nil {
			t.Fatalf("UnmarshalText(%q) error = %v", text, err)
		}
		if back != o {
			t.Errorf("round trip %v -> %q -> %v", o, text, back)
		}
	}

	var o Outcome
	if err := o.UnmarshalText([]byte("push")); err == nil {
		t.Error("expected error for unknown outcome")
	}
}

func TestPhaseString(t *testing.T) {
	tests := map[Phase]string{
		PhaseDealing:    "dealing",
		PhasePlayerTurn: "player_turn",
		PhaseDealerTurn: "dealer_turn",
		PhaseFinished:   "finished",
		Phase(99):       "unknown",
	}
	for p, want := range tests {
		if p.String() != want {
			t.Errorf("Phase(%d).String() = %q, want %q", int(p), p.String(), want)
		}
	}
}

func TestPhaseText(t *testing.T) {
	for p := PhaseDealing; p <= PhaseFinished; p++ {
		text, err := p.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText(%v) error = %v", p, err)
		}
		var back Phase
		if err := back.UnmarshalText(text); err != nil {
			t.Fatalf("UnmarshalText(%q) error = %v", text, err)
		}
		if back != p {
			t.Errorf("round trip %v -> %q -> %v", p, text, back)
		}
	}

	var p Phase
	if err := p.UnmarshalText([]byte("shuffling")); err == nil {
		t.Error("expected error for unknown phase")
	}
}
