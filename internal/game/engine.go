package game

import (
	"errors"
	"fmt"
	"io"
	rand "math/rand/v2"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/randutil"
	"github.com/lox/blackjack/internal/roundid"
)

// Table limits and dealer rule
const (
	MinPlayers     = 1
	MaxPlayers     = 6
	DealerStandsOn = 17
	InitialCards   = 2
)

// ErrInvariantViolation reports that the engine's card accounting no longer
// adds up. It indicates a bug, never a player mistake.
var ErrInvariantViolation = errors.New("engine invariant violated")

// DeckSource supplies the deck for each new round
type DeckSource func(rng *rand.Rand) *deck.Deck

// ShuffledDeck builds a fresh 52-card deck and shuffles it with rng
func ShuffledDeck(rng *rand.Rand) *deck.Deck {
	d := deck.NewDeck(rng)
	d.Shuffle()
	return d
}

type state struct {
	deck    *deck.Deck
	dealer  DealerHand
	players []*Hand
	current int
	phase   Phase
	total   int
	roundID string
}

// Engine runs rounds of blackjack. It is not safe for concurrent use; every
// command runs to completion before returning.
type Engine struct {
	state   *state
	rng     *rand.Rand
	newDeck DeckSource
	bus     EventBus
	clock   quartz.Clock
	ids     *roundid.Generator
	logger  *log.Logger
}

// Option configures an Engine
type Option func(*Engine)

// WithRNG sets the RNG used for shuffling
func WithRNG(rng *rand.Rand) Option {
	return func(e *Engine) { e.rng = rng }
}

// WithSeed seeds the shuffle RNG
func WithSeed(seed int64) Option {
	return func(e *Engine) { e.rng = randutil.New(seed) }
}

// WithClock sets the clock used for event timestamps and round IDs
func WithClock(clock quartz.Clock) Option {
	return func(e *Engine) { e.clock = clock }
}

// WithLogger sets the engine logger
func WithLogger(logger *log.Logger) Option {
	return func(e *Engine) { e.logger = logger.WithPrefix("engine") }
}

// WithDeckSource replaces the shuffled 52-card deck
func WithDeckSource(source DeckSource) Option {
	return func(e *Engine) { e.newDeck = source }
}

// WithStackedDeck deals the given cards in order every round: hole card,
// dealer up card, then two cards per player, then hits and dealer draws.
func WithStackedDeck(drawOrder []deck.Card) Option {
	reversed := make([]deck.Card, len(drawOrder))
	for i, c := range drawOrder {
		reversed[len(drawOrder)-1-i] = c
	}
	return WithDeckSource(func(*rand.Rand) *deck.Deck {
		return deck.NewStackedDeck(reversed)
	})
}

// NewEngine creates an engine with no round in progress
func NewEngine(opts ...Option) *Engine {
	e := &Engine{}
	for _, opt := range opts {
		opt(e)
	}

	if e.clock == nil {
		e.clock = quartz.NewReal()
	}
	if e.logger == nil {
		e.logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if e.rng == nil {
		e.rng = randutil.New(e.clock.Now().UnixNano())
	}
	if e.newDeck == nil {
		e.newDeck = ShuffledDeck
	}
	if e.bus == nil {
		e.bus = NewEventBus()
	}
	e.ids = roundid.NewGenerator(e.clock, nil)

	return e
}

// Subscribe registers a subscriber on the engine's event bus
func (e *Engine) Subscribe(sub EventSubscriber) {
	e.bus.Subscribe(sub)
}

// Unsubscribe removes a subscriber from the engine's event bus
func (e *Engine) Unsubscribe(sub EventSubscriber) {
	e.bus.Unsubscribe(sub)
}

// RoundID returns the ID of the current round, or "" before the first game
func (e *Engine) RoundID() string {
	if e.state == nil {
		return ""
	}
	return e.state.roundID
}

// Phase returns the current phase
func (e *Engine) Phase() Phase {
	if e.state == nil {
		return PhaseDealing
	}
	return e.state.phase
}

// Finished reports whether the current round is over
func (e *Engine) Finished() bool {
	return e.Phase() == PhaseFinished
}

// ClampPlayers normalizes a requested player count into [MinPlayers, MaxPlayers]
func ClampPlayers(n int) int {
	if n < MinPlayers {
		return MinPlayers
	}
	if n > MaxPlayers {
		return MaxPlayers
	}
	return n
}

// NewGame discards any previous round, shuffles a fresh deck and deals.
// If every player is dealt a natural the round finishes immediately.
func (e *Engine) NewGame(numPlayers int) error {
	n := ClampPlayers(numPlayers)
	if n != numPlayers {
		e.logger.Debug("Normalized player count", "requested", numPlayers, "players", n)
	}

	d := e.newDeck(e.rng)
	s := &state{
		deck:    d,
		players: make([]*Hand, n),
		phase:   PhaseDealing,
		total:   d.Remaining(),
		roundID: e.ids.Next(),
	}
	e.state = s

	hole, err := s.deck.Draw()
	if err != nil {
		return fmt.Errorf("deal dealer hole card: %w", err)
	}
	s.dealer.SetHole(hole)

	up, err := s.deck.Draw()
	if err != nil {
		return fmt.Errorf("deal dealer up card: %w", err)
	}
	s.dealer.Add(up)

	for p := range s.players {
		h := &Hand{}
		for i := 0; i < InitialCards; i++ {
			c, err := s.deck.Draw()
			if err != nil {
				return fmt.Errorf("deal player %d: %w", p+1, err)
			}
			h.Add(c)
		}
		s.players[p] = h
	}

	e.logger.Debug("Dealt round", "round", s.roundID, "players", n, "dealer_up", up, "deck", s.deck.Remaining())
	e.bus.Publish(GameStartedEvent{
		eventMeta:     e.meta(),
		NumPlayers:    n,
		Requested:     numPlayers,
		DeckRemaining: s.deck.Remaining(),
	})

	if s.allNatural() {
		e.logger.Info("Every player dealt blackjack", "round", s.roundID, "players", n)
		s.phase = PhaseFinished
		e.bus.Publish(AllBlackjackEvent{eventMeta: e.meta(), NumPlayers: n})
		e.publishResults()
		return e.checkInvariants()
	}

	s.phase = PhasePlayerTurn
	s.current = 0
	e.bus.Publish(TurnChangedEvent{eventMeta: e.meta(), Player: 0, Score: s.players[0].EffectiveScore()})

	return e.checkInvariants()
}

// Hit draws a card for the current player. It returns false without error
// when no player is due to act. A bust ends the player's turn.
func (e *Engine) Hit() (bool, error) {
	s := e.state
	if s == nil || s.phase != PhasePlayerTurn {
		e.logger.Debug("Ignoring hit", "phase", e.Phase())
		return false, nil
	}

	card, err := s.deck.Draw()
	if err != nil {
		e.logger.Error("Cannot hit", "player", s.current+1, "error", err)
		return false, fmt.Errorf("player %d hit: %w", s.current+1, err)
	}

	h := s.players[s.current]
	h.Add(card)
	score := h.EffectiveScore()

	e.logger.Debug("Player hit", "player", s.current+1, "card", card, "score", score)
	e.bus.Publish(CardDrawnEvent{eventMeta: e.meta(), Player: s.current, Card: card, Score: score})

	if score > BlackjackScore {
		e.bus.Publish(BustEvent{eventMeta: e.meta(), Player: s.current, Score: score})
		e.advance()
	}

	return true, e.checkInvariants()
}

// Stand ends the current player's turn. It returns false when no player is
// due to act.
func (e *Engine) Stand() (bool, error) {
	s := e.state
	if s == nil || s.phase != PhasePlayerTurn {
		e.logger.Debug("Ignoring stand", "phase", e.Phase())
		return false, nil
	}

	score := s.players[s.current].EffectiveScore()
	e.logger.Debug("Player stands", "player", s.current+1, "score", score)
	e.bus.Publish(StandEvent{eventMeta: e.meta(), Player: s.current, Score: score})
	e.advance()

	return true, e.checkInvariants()
}

// advance moves to the next player, or resolves the dealer once every
// player has acted.
func (e *Engine) advance() {
	s := e.state
	s.current++
	if s.current < len(s.players) {
		e.bus.Publish(TurnChangedEvent{eventMeta: e.meta(), Player: s.current, Score: s.players[s.current].EffectiveScore()})
		return
	}

	if s.allBusted() {
		score := s.dealer.EffectiveScore()
		e.logger.Debug("All players busted, dealer stands", "dealer_score", score)
		s.phase = PhaseFinished
		e.bus.Publish(AllBustedEvent{eventMeta: e.meta(), DealerScore: score})
		e.publishResults()
		return
	}

	s.phase = PhaseDealerTurn
	e.playDealer()
}

// playDealer draws for the dealer while below 17. An empty deck stops the
// dealer early; that is not an error.
func (e *Engine) playDealer() {
	s := e.state
	e.bus.Publish(DealerTurnStartedEvent{eventMeta: e.meta(), HiddenCard: s.dealer.hole, Score: s.dealer.EffectiveScore()})

	for s.dealer.EffectiveScore() < DealerStandsOn && !s.deck.IsEmpty() {
		card, err := s.deck.Draw()
		if err != nil {
			break
		}
		s.dealer.Add(card)
		e.bus.Publish(DealerDrawsEvent{eventMeta: e.meta(), Card: card, Score: s.dealer.EffectiveScore()})
	}

	score := s.dealer.EffectiveScore()
	exhausted := score < DealerStandsOn && s.deck.IsEmpty()
	if exhausted {
		e.logger.Warn("Deck exhausted during dealer play", "dealer_score", score)
	}
	e.bus.Publish(DealerStandsEvent{eventMeta: e.meta(), Score: score, DeckExhausted: exhausted})

	s.phase = PhaseFinished
	e.publishResults()
}

func (e *Engine) publishResults() {
	s := e.state
	dealerScore := s.dealer.EffectiveScore()
	results := make([]PlayerResult, len(s.players))
	for p, h := range s.players {
		score := h.EffectiveScore()
		results[p] = PlayerResult{
			Player:  p,
			Score:   score,
			Busted:  score > BlackjackScore,
			Outcome: DetermineOutcome(score, dealerScore),
		}
	}

	e.logger.Info("Round finished", "round", s.roundID, "dealer_score", dealerScore, "players", len(results))
	e.bus.Publish(ResultsEvent{eventMeta: e.meta(), DealerScore: dealerScore, Results: results})
}

// Outcomes returns each player's result once the round is finished
func (e *Engine) Outcomes() ([]Outcome, bool) {
	s := e.state
	if s == nil || s.phase != PhaseFinished {
		return nil, false
	}
	dealerScore := s.dealer.EffectiveScore()
	out := make([]Outcome, len(s.players))
	for p, h := range s.players {
		out[p] = DetermineOutcome(h.EffectiveScore(), dealerScore)
	}
	return out, true
}

func (e *Engine) meta() eventMeta {
	return eventMeta{roundID: e.state.roundID, timestamp: e.clock.Now()}
}

// checkInvariants verifies card conservation and ace accounting
func (e *Engine) checkInvariants() error {
	s := e.state
	inHands := s.dealer.CardsInHand()
	for _, h := range s.players {
		inHands += h.Len()
	}
	if s.deck.Remaining()+inHands != s.total {
		err := fmt.Errorf("%w: %d cards in deck and %d in hands, expected %d", ErrInvariantViolation, s.deck.Remaining(), inHands, s.total)
		e.logger.Error("Card conservation failed", "error", err)
		return err
	}

	if s.dealer.SoftAces() > s.dealer.aces() {
		return fmt.Errorf("%w: dealer has %d soft aces but holds %d", ErrInvariantViolation, s.dealer.SoftAces(), s.dealer.aces())
	}
	for p, h := range s.players {
		if h.SoftAces() > h.aces() {
			return fmt.Errorf("%w: player %d has %d soft aces but holds %d", ErrInvariantViolation, p+1, h.SoftAces(), h.aces())
		}
	}
	return nil
}

func (s *state) allNatural() bool {
	for _, h := range s.players {
		if !h.IsNatural() {
			return false
		}
	}
	return true
}

func (s *state) allBusted() bool {
	for _, h := range s.players {
		if !h.IsBust() {
			return false
		}
	}
	return true
}
