package game

import "github.com/lox/blackjack/internal/deck"

// BlackjackScore is the best possible effective score
const BlackjackScore = 21

// Hand holds a participant's cards and running score. rawSum counts every
// ace still marked soft as 11; softAces is the number of those aces.
type Hand struct {
	cards    []deck.Card
	rawSum   int
	softAces int
}

// Add appends a card and updates the raw sum and soft ace count
func (h *Hand) Add(c deck.Card) {
	h.cards = append(h.cards, c)
	h.count(c)
}

func (h *Hand) count(c deck.Card) {
	h.rawSum += c.Value()
	if c.IsAce() {
		h.softAces++
	}
}

// EffectiveScore demotes soft aces from 11 to 1 while the hand would bust.
// The reduction is stored, so repeated calls return the same value.
func (h *Hand) EffectiveScore() int {
	for h.rawSum > BlackjackScore && h.softAces > 0 {
		h.rawSum -= 10
		h.softAces--
	}
	return h.rawSum
}

// IsNatural reports a two-card 21
func (h *Hand) IsNatural() bool {
	return len(h.cards) == 2 && h.rawSum == BlackjackScore
}

// IsBust reports whether the effective score exceeds 21
func (h *Hand) IsBust() bool {
	return h.EffectiveScore() > BlackjackScore
}

// IsSoft reports whether an ace is still counted as 11 after reduction
func (h *Hand) IsSoft() bool {
	h.EffectiveScore()
	return h.softAces > 0
}

// SoftAces returns the number of aces still counted as 11
func (h *Hand) SoftAces() int { return h.softAces }

// Len returns the number of cards in the hand
func (h *Hand) Len() int { return len(h.cards) }

// Cards returns a copy of the cards in the order they were dealt
func (h *Hand) Cards() []deck.Card {
	out := make([]deck.Card, len(h.cards))
	copy(out, h.cards)
	return out
}

// clone returns a copy that shares no storage with h
func (h *Hand) clone() *Hand {
	return &Hand{cards: h.Cards(), rawSum: h.rawSum, softAces: h.softAces}
}

func (h *Hand) aces() int {
	n := 0
	for _, c := range h.cards {
		if c.IsAce() {
			n++
		}
	}
	return n
}

// DealerHand is the dealer's visible cards plus the face-down hole card.
// The hole card counts toward the score but is not part of Cards.
type DealerHand struct {
	Hand
	hole    deck.Card
	hasHole bool
}

// SetHole records the face-down card and counts it into the score
func (d *DealerHand) SetHole(c deck.Card) {
	d.hole = c
	d.hasHole = true
	d.count(c)
}

// Hole returns the face-down card, if one has been dealt
func (d *DealerHand) Hole() (deck.Card, bool) {
	return d.hole, d.hasHole
}

// CardsInHand counts the visible cards and the hole card
func (d *DealerHand) CardsInHand() int {
	if d.hasHole {
		return d.Len() + 1
	}
	return d.Len()
}

func (d *DealerHand) aces() int {
	n := d.Hand.aces()
	if d.hasHole && d.hole.IsAce() {
		n++
	}
	return n
}

// ScoreCards computes the effective score of an arbitrary set of cards
// without touching any hand.
func ScoreCards(cards []deck.Card) int {
	var h Hand
	for _, c := range cards {
		h.count(c)
	}
	return h.EffectiveScore()
}
