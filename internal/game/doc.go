// Package game implements the blackjack rules engine: one dealer against
// one to six players.
//
// The main type is Engine, which owns the deck, the dealer's hand (including
// the face-down hole card) and every player's hand. Engine is the only
// mutator of that state; callers issue commands and read Snapshots.
//
// # Basic Usage
//
//	e := game.NewEngine(game.WithLogger(logger))
//	if err := e.NewGame(3); err != nil {
//	    return err
//	}
//	for !e.Finished() {
//	    if _, err := e.Stand(); err != nil {
//	        return err
//	    }
//	}
//	snap := e.Snapshot()
//
// # Deterministic Testing
//
// Inject a seeded RNG for reproducible shuffles, or a stacked deck to
// control every card dealt:
//
//	e := game.NewEngine(game.WithRNG(randutil.New(42)))
//	e := game.NewEngine(game.WithStackedDeck(deck.MustParseCards("KS AH 10D QC")))
//
// # Events
//
// Every state change publishes a typed GameEvent on the engine's EventBus.
// Events carry data only; turning them into text is the job of the
// announcer and other presentation layers. Subscribers run synchronously
// inside the command that produced the event and must not issue commands.
package game
