package monitor

import (
	"encoding/json"
	"time"

	"github.com/lox/blackjack/internal/announcer"
	"github.com/lox/blackjack/internal/game"
)

// MessageTypeHello is sent once to each spectator on connect, carrying the
// current table state.
const MessageTypeHello = "hello"

// Message is the JSON document sent to spectators. Type is the engine event
// type, or "hello" for the greeting.
type Message struct {
	Type     string         `json:"type"`
	RoundID  string         `json:"round_id,omitempty"`
	Time     time.Time      `json:"time"`
	Text     string         `json:"text,omitempty"`
	Payload  game.GameEvent `json:"payload,omitempty"`
	Snapshot *game.Snapshot `json:"snapshot,omitempty"`
}

// Feed turns engine events into spectator messages and hands them to the hub.
// It must be subscribed to the engine whose snapshots it reads.
type Feed struct {
	hub       *Hub
	snapshot  func() game.Snapshot
	formatter *announcer.EventFormatter
}

// NewFeed creates a feed publishing to hub. snapshot is usually Engine.Snapshot.
func NewFeed(hub *Hub, snapshot func() game.Snapshot) *Feed {
	return &Feed{
		hub:       hub,
		snapshot:  snapshot,
		formatter: announcer.NewEventFormatter(announcer.FormattingOptions{}),
	}
}

// OnEvent implements game.EventSubscriber
func (f *Feed) OnEvent(event game.GameEvent) {
	snap := f.snapshot()
	msg := Message{
		Type:     event.EventType().String(),
		RoundID:  event.RoundID(),
		Time:     event.Timestamp(),
		Text:     f.formatter.Format(event),
		Payload:  event,
		Snapshot: &snap,
	}
	data, err := json.Marshal(msg)
	if err != nil {
		f.hub.logger.Error("Failed to encode event", "type", msg.Type, "error", err)
		return
	}
	f.hub.Broadcast(data)

	hello := Message{Type: MessageTypeHello, RoundID: snap.RoundID, Time: msg.Time, Snapshot: &snap}
	if data, err := json.Marshal(hello); err == nil {
		f.hub.setGreeting(data)
	}
}
