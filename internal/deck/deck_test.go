package deck

import (
	"errors"
	"testing"

	"github.com/lox/blackjack/internal/randutil"
)

func TestNewDeckCoversEveryCard(t *testing.T) {
	d := NewDeck(randutil.New(42))

	if d.Remaining() != Size {
		t.Fatalf("Expected %d cards, got %d", Size, d.Remaining())
	}

	seen := make(map[Card]bool)
	for _, c := range d.Cards() {
		if !c.Valid() {
			t.Errorf("invalid card %v", c)
		}
		if seen[c] {
			t.Errorf("duplicate card %v", c)
		}
		seen[c] = true
	}

	for suit := Clubs; suit <= Spades; suit++ {
		for rank := Ace; rank <= King; rank++ {
			if !seen[NewCard(rank, suit)] {
				t.Errorf("missing card %v", NewCard(rank, suit))
			}
		}
	}
}

func TestBuildOrder(t *testing.T) {
	d := NewDeck(nil)
	cards := d.Cards()

	if cards[0] != NewCard(Ace, Clubs) {
		t.Errorf("first card = %v, want A♣", cards[0])
	}
	if cards[12] != NewCard(King, Clubs) {
		t.Errorf("13th card = %v, want K♣", cards[12])
	}
	if cards[51] != NewCard(King, Spades) {
		t.Errorf("last card = %v, want K♠", cards[51])
	}

	// Drawing takes from the end
	top, err := d.Draw()
	if err != nil {
		t.Fatalf("Draw() error = %v", err)
	}
	if top != NewCard(King, Spades) {
		t.Errorf("Draw() = %v, want K♠", top)
	}
}

func TestShuffleConservesCards(t *testing.T) {
	for seed := int64(0); seed < 20; seed++ {
		d := NewDeck(randutil.New(seed))
		d.Shuffle()

		if d.Remaining() != Size {
			t.Fatalf("seed %d: shuffle changed size to %d", seed, d.Remaining())
		}

		seen := make(map[Card]int)
		for _, c := range d.Cards() {
			seen[c]++
		}
		if len(seen) != Size {
			t.Errorf("seed %d: expected %d distinct cards, got %d", seed, Size, len(seen))
		}
		for c, n := range seen {
			if n != 1 {
				t.Errorf("seed %d: card %v appears %d times", seed, c, n)
			}
		}
	}
}

func TestShuffleIsDeterministicPerSeed(t *testing.T) {
	d1 := NewDeck(randutil.New(7))
	d2 := NewDeck(randutil.New(7))
	d3 := NewDeck(randutil.New(8))
	d1.Shuffle()
	d2.Shuffle()
	d3.Shuffle()

	if !cardsEqual(d1.Cards(), d2.Cards()) {
		t.Error("same seed should give the same order")
	}
	if cardsEqual(d1.Cards(), d3.Cards()) {
		t.Error("different seeds should give different orders")
	}
	if cardsEqual(d1.Cards(), NewDeck(nil).Cards()) {
		t.Error("shuffled deck should differ from build order")
	}
}

func TestShuffleReachesEveryPosition(t *testing.T) {
	// The ace of clubs starts at index 0; after enough shuffles it should
	// have been observed at every index.
	positions := make(map[int]bool)
	rng := randutil.New(99)
	for i := 0; i < 5000 && len(positions) < Size; i++ {
		d := NewDeck(rng)
		d.Shuffle()
		for idx, c := range d.Cards() {
			if c == NewCard(Ace, Clubs) {
				positions[idx] = true
			}
		}
	}
	if len(positions) != Size {
		t.Errorf("ace of clubs only reached %d of %d positions", len(positions), Size)
	}
}

func TestDrawAll(t *testing.T) {
	d := NewDeck(randutil.New(42))
	d.Shuffle()

	for i := 0; i < Size; i++ {
		if _, err := d.Draw(); err != nil {
			t.Fatalf("Draw failed at card %d: %v", i+1, err)
		}
	}

	if !d.IsEmpty() {
		t.Error("Deck should be empty after drawing all cards")
	}

	_, err := d.Draw()
	if !errors.Is(err, ErrDeckExhausted) {
		t.Errorf("Draw on empty deck error = %v, want ErrDeckExhausted", err)
	}
}

func TestStackedDeck(t *testing.T) {
	cards := MustParseCards("2C 3D AS")
	d := NewStackedDeck(cards)
	cards[0] = NewCard(King, Hearts) // caller's slice must not alias

	want := MustParseCards("AS 3D 2C")
	for _, w := range want {
		got, err := d.Draw()
		if err != nil {
			t.Fatalf("Draw() error = %v", err)
		}
		if got != w {
			t.Errorf("Draw() = %v, want %v", got, w)
		}
	}
}
