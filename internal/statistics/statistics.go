// Package statistics accumulates blackjack round results into summary figures.
package statistics

import (
	"fmt"
	"math"

	"github.com/lox/blackjack/internal/game"
)

// HandResult is one player's finished hand
type HandResult struct {
	Seat    int          // 0-based seat
	Score   int          // final effective score
	Natural bool         // two-card 21
	Busted  bool         // over 21
	Outcome game.Outcome // Win, Lose or Tie
}

// Net returns the hand's result in betting units: +1 win, -1 loss, 0 tie.
func (h HandResult) Net() float64 {
	switch h.Outcome {
	case game.OutcomeWin:
		return 1
	case game.OutcomeLose:
		return -1
	default:
		return 0
	}
}

// RoundResult describes one finished round
type RoundResult struct {
	Hands        []HandResult
	DealerScore  int
	DealerCards  int // cards the dealer held at the end, hole card included
	AllBlackjack bool
	AllBusted    bool
}

// DealerBust reports whether the dealer finished over 21
func (r RoundResult) DealerBust() bool {
	return r.DealerScore > game.BlackjackScore
}

// SeatStats tracks results for a single seat
type SeatStats struct {
	Hands  int
	SumNet float64
}

// Statistics tracks blackjack simulation results
type Statistics struct {
	Rounds  int
	Hands   int
	SumNet  float64
	SumNet2 float64 // sum of squares for variance

	Wins     int
	Losses   int
	Ties     int
	Busts    int
	Naturals int

	AllBlackjackRounds int
	AllBustedRounds    int
	DealerBusts        int
	DealerPlayed       int // rounds in which the dealer drew to a total
	DealerCards        int

	Seats [game.MaxPlayers]SeatStats
}

// FromSnapshot builds a RoundResult from a finished round's snapshot.
func FromSnapshot(snap game.Snapshot) (RoundResult, error) {
	if snap.Phase != game.PhaseFinished {
		return RoundResult{}, fmt.Errorf("round %s is not finished (phase %s)", snap.RoundID, snap.Phase)
	}

	r := RoundResult{
		Hands:        make([]HandResult, len(snap.Players)),
		DealerScore:  snap.Dealer.Score,
		DealerCards:  len(snap.Dealer.Cards),
		AllBlackjack: len(snap.Players) > 0,
		AllBusted:    len(snap.Players) > 0,
	}
	if snap.Dealer.HiddenCard != nil {
		r.DealerCards++
	}
	for i, p := range snap.Players {
		r.Hands[i] = HandResult{
			Seat:    i,
			Score:   p.Score,
			Natural: p.Natural,
			Busted:  p.Busted,
			Outcome: p.Outcome,
		}
		r.AllBlackjack = r.AllBlackjack && p.Natural
		r.AllBusted = r.AllBusted && p.Busted
	}
	return r, nil
}

// Add incorporates a finished round
func (s *Statistics) Add(r RoundResult) {
	s.Rounds++
	for _, h := range r.Hands {
		net := h.Net()
		s.Hands++
		s.SumNet += net
		s.SumNet2 += net * net

		switch h.Outcome {
		case game.OutcomeWin:
			s.Wins++
		case game.OutcomeLose:
			s.Losses++
		case game.OutcomeTie:
			s.Ties++
		}
		if h.Busted {
			s.Busts++
		}
		if h.Natural {
			s.Naturals++
		}
		if h.Seat >= 0 && h.Seat < len(s.Seats) {
			s.Seats[h.Seat].Hands++
			s.Seats[h.Seat].SumNet += net
		}
	}

	switch {
	case r.AllBlackjack:
		s.AllBlackjackRounds++
	case r.AllBusted:
		s.AllBustedRounds++
	default:
		s.DealerPlayed++
		s.DealerCards += r.DealerCards
		if r.DealerBust() {
			s.DealerBusts++
		}
	}
}

// Merge folds other into s. Used to combine per-worker results.
func (s *Statistics) Merge(other *Statistics) {
	s.Rounds += other.Rounds
	s.Hands += other.Hands
	s.SumNet += other.SumNet
	s.SumNet2 += other.SumNet2
	s.Wins += other.Wins
	s.Losses += other.Losses
	s.Ties += other.Ties
	s.Busts += other.Busts
	s.Naturals += other.Naturals
	s.AllBlackjackRounds += other.AllBlackjackRounds
	s.AllBustedRounds += other.AllBustedRounds
	s.DealerBusts += other.DealerBusts
	s.DealerPlayed += other.DealerPlayed
	s.DealerCards += other.DealerCards
	for i := range s.Seats {
		s.Seats[i].Hands += other.Seats[i].Hands
		s.Seats[i].SumNet += other.Seats[i].SumNet
	}
}

// Mean returns the average net result per hand
func (s *Statistics) Mean() float64 {
	if s.Hands == 0 {
		return 0
	}
	return s.SumNet / float64(s.Hands)
}

// Variance returns the sample variance of per-hand results
func (s *Statistics) Variance() float64 {
	if s.Hands < 2 {
		return 0
	}
	mean := s.Mean()
	return (s.SumNet2 - float64(s.Hands)*mean*mean) / float64(s.Hands-1)
}

// StdDev returns the sample standard deviation
func (s *Statistics) StdDev() float64 {
	return math.Sqrt(s.Variance())
}

// StdError returns the standard error of the mean
func (s *Statistics) StdError() float64 {
	if s.Hands == 0 {
		return 0
	}
	return s.StdDev() / math.Sqrt(float64(s.Hands))
}

// ConfidenceInterval95 returns the 95% confidence interval for the mean
func (s *Statistics) ConfidenceInterval95() (float64, float64) {
	mean := s.Mean()
	margin := 1.96 * s.StdError()
	return mean - margin, mean + margin
}

func rate(n, of int) float64 {
	if of == 0 {
		return 0
	}
	return float64(n) / float64(of)
}

// WinRate returns the share of hands won
func (s *Statistics) WinRate() float64 { return rate(s.Wins, s.Hands) }

// BustRate returns the share of hands that busted
func (s *Statistics) BustRate() float64 { return rate(s.Busts, s.Hands) }

// DealerBustRate returns the share of dealer turns that ended over 21.
// Rounds the dealer never played are excluded.
func (s *Statistics) DealerBustRate() float64 { return rate(s.DealerBusts, s.DealerPlayed) }

// AvgDealerCards returns the mean number of cards the dealer held after playing
func (s *Statistics) AvgDealerCards() float64 {
	if s.DealerPlayed == 0 {
		return 0
	}
	return float64(s.DealerCards) / float64(s.DealerPlayed)
}

// SeatMean returns the mean net result for a 0-based seat
func (s *Statistics) SeatMean(seat int) float64 {
	if seat < 0 || seat >= len(s.Seats) || s.Seats[seat].Hands == 0 {
		return 0
	}
	return s.Seats[seat].SumNet / float64(s.Seats[seat].Hands)
}

// IsLedgerBalanced checks that every hand was counted exactly once
func (s *Statistics) IsLedgerBalanced() bool {
	return s.Wins+s.Losses+s.Ties == s.Hands &&
		math.Abs(s.SumNet-float64(s.Wins-s.Losses)) <= 1e-9
}

// Validate performs consistency checks on the accumulated data
func (s *Statistics) Validate() error {
	if s.Rounds <= 0 {
		return fmt.Errorf("invalid rounds count: %d", s.Rounds)
	}
	if !s.IsLedgerBalanced() {
		return fmt.Errorf("ledger mismatch: wins=%d losses=%d ties=%d hands=%d net=%.2f",
			s.Wins, s.Losses, s.Ties, s.Hands, s.SumNet)
	}
	if s.Busts > s.Losses {
		return fmt.Errorf("busts (%d) exceed losses (%d)", s.Busts, s.Losses)
	}

	seatHands := 0
	for _, seat := range s.Seats {
		seatHands += seat.Hands
	}
	if seatHands != s.Hands {
		return fmt.Errorf("seat hands total (%d) does not match total hands (%d)", seatHands, s.Hands)
	}

	if got := s.AllBlackjackRounds + s.AllBustedRounds + s.DealerPlayed; got != s.Rounds {
		return fmt.Errorf("round categories (%d) do not match rounds (%d)", got, s.Rounds)
	}
	return nil
}
