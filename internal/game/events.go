package game

import (
	"time"

	"github.com/lox/blackjack/internal/deck"
)

// EventType represents a game event type with type safety
type EventType string

// EventType constants for game domain events
const (
	EventTypeGameStarted       EventType = "game_started"
	EventTypeTurnChanged       EventType = "turn_changed"
	EventTypeCardDrawn         EventType = "card_drawn"
	EventTypeBust              EventType = "bust"
	EventTypeStand             EventType = "stand"
	EventTypeAllBlackjack      EventType = "all_blackjack"
	EventTypeAllBusted         EventType = "all_busted"
	EventTypeDealerTurnStarted EventType = "dealer_turn_started"
	EventTypeDealerDraws       EventType = "dealer_draws"
	EventTypeDealerStands      EventType = "dealer_stands"
	EventTypeResults           EventType = "results"
)

// String returns the string representation of the event type
func (et EventType) String() string {
	return string(et)
}

// GameEvent represents anything that happens during a round. Player
// indexes in events are zero based.
type GameEvent interface {
	EventType() EventType
	Timestamp() time.Time
	RoundID() string
}

type eventMeta struct {
	roundID   string
	timestamp time.Time
}

func (m eventMeta) Timestamp() time.Time { return m.timestamp }
func (m eventMeta) RoundID() string      { return m.roundID }

// GameStartedEvent is published once the initial cards are dealt
type GameStartedEvent struct {
	eventMeta
	NumPlayers    int `json:"num_players"`
	Requested     int `json:"requested_players"`
	DeckRemaining int `json:"deck_remaining"`
}

func (e GameStartedEvent) EventType() EventType { return EventTypeGameStarted }

// TurnChangedEvent is published when a player becomes the one to act
type TurnChangedEvent struct {
	eventMeta
	Player int `json:"player"`
	Score  int `json:"score"`
}

func (e TurnChangedEvent) EventType() EventType { return EventTypeTurnChanged }

// CardDrawnEvent is published when a player hits
type CardDrawnEvent struct {
	eventMeta
	Player int       `json:"player"`
	Card   deck.Card `json:"card"`
	Score  int       `json:"score"`
}

func (e CardDrawnEvent) EventType() EventType { return EventTypeCardDrawn }

// BustEvent is published when a hit takes a player over 21
type BustEvent struct {
	eventMeta
	Player int `json:"player"`
	Score  int `json:"score"`
}

func (e BustEvent) EventType() EventType { return EventTypeBust }

// StandEvent is published when a player stands
type StandEvent struct {
	eventMeta
	Player int `json:"player"`
	Score  int `json:"score"`
}

func (e StandEvent) EventType() EventType { return EventTypeStand }

// AllBlackjackEvent is published when every player is dealt a natural and
// the round ends before anyone acts
type AllBlackjackEvent struct {
	eventMeta
	NumPlayers int `json:"num_players"`
}

func (e AllBlackjackEvent) EventType() EventType { return EventTypeAllBlackjack }

// AllBustedEvent is published when every player has busted; the dealer
// does not draw
type AllBustedEvent struct {
	eventMeta
	DealerScore int `json:"dealer_score"`
}

func (e AllBustedEvent) EventType() EventType { return EventTypeAllBusted }

// DealerTurnStartedEvent reveals the hole card as the dealer begins to play
type DealerTurnStartedEvent struct {
	eventMeta
	HiddenCard deck.Card `json:"hidden_card"`
	Score      int       `json:"score"`
}

func (e DealerTurnStartedEvent) EventType() EventType { return EventTypeDealerTurnStarted }

// DealerDrawsEvent is published for each card the dealer takes
type DealerDrawsEvent struct {
	eventMeta
	Card  deck.Card `json:"card"`
	Score int       `json:"score"`
}

func (e DealerDrawsEvent) EventType() EventType { return EventTypeDealerDraws }

// DealerStandsEvent is published when the dealer stops drawing
type DealerStandsEvent struct {
	eventMeta
	Score         int  `json:"score"`
	DeckExhausted bool `json:"deck_exhausted"`
}

func (e DealerStandsEvent) EventType() EventType { return EventTypeDealerStands }

// PlayerResult is one player's final standing
type PlayerResult struct {
	Player  int     `json:"player"`
	Score   int     `json:"score"`
	Busted  bool    `json:"busted"`
	Outcome Outcome `json:"outcome"`
}

// ResultsEvent is published when the round is finished
type ResultsEvent struct {
	eventMeta
	DealerScore int            `json:"dealer_score"`
	Results     []PlayerResult `json:"results"`
}

func (e ResultsEvent) EventType() EventType { return EventTypeResults }

// EventSubscriber can subscribe to game events
type EventSubscriber interface {
	OnEvent(event GameEvent)
}

// EventBus manages event publishing and subscription
type EventBus interface {
	Subscribe(subscriber EventSubscriber)
	Unsubscribe(subscriber EventSubscriber)
	Publish(event GameEvent)
}

// SimpleEventBus delivers events synchronously, in subscription order
type SimpleEventBus struct {
	subscribers []EventSubscriber
}

// NewEventBus creates a new event bus
func NewEventBus() *SimpleEventBus {
	return &SimpleEventBus{
		subscribers: make([]EventSubscriber, 0),
	}
}

// Subscribe adds a subscriber to receive events
func (bus *SimpleEventBus) Subscribe(subscriber EventSubscriber) {
	bus.subscribers = append(bus.subscribers, subscriber)
}

// Unsubscribe removes a subscriber from receiving events
func (bus *SimpleEventBus) Unsubscribe(subscriber EventSubscriber) {
	for i, sub := range bus.subscribers {
		if sub == subscriber {
			bus.subscribers = append(bus.subscribers[:i], bus.subscribers[i+1:]...)
			break
		}
	}
}

// Publish sends an event to all subscribers
func (bus *SimpleEventBus) Publish(event GameEvent) {
	for _, subscriber := range bus.subscribers {
		subscriber.OnEvent(event)
	}
}
