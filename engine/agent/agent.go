// Package agent decides moves for computer-controlled Shanko seats.
//
// A Decider only reads the game state; it never applies a move. The flow
// controller turns its answers into engine calls and falls back to a plain
// discard when an answer turns out to be illegal.
package agent

import (
	"errors"

	engine "github.com/ppravin88/Shanko/engine"
)

// ErrNoCardToDiscard is returned when the player has nothing left in hand.
var ErrNoCardToDiscard = errors.New("agent: no card to discard")

// MeldDecision is the answer to "should I lay down my objective now?".
// Combinations carry card IDs from the player's hand; IDs of the
// combinations themselves are left empty for the engine to assign.
type MeldDecision struct {
	ShouldMeld   bool                 `json:"shouldMeld"`
	Combinations []engine.Combination `json:"combinations,omitempty"`
}

// SwapDecision names a Joker on the table and the natural card from hand
// that takes its place.
type SwapDecision struct {
	ShouldSwap        bool   `json:"shouldSwap"`
	CombinationID     string `json:"combinationId,omitempty"`
	JokerCardID       string `json:"jokerCardId,omitempty"`
	ReplacementCardID string `json:"replacementCardId,omitempty"`
}

// ExtendDecision names a melded sequence and the hand cards to attach to it.
type ExtendDecision struct {
	ShouldExtend  bool            `json:"shouldExtend"`
	CombinationID string          `json:"combinationId,omitempty"`
	CardIDs       []string        `json:"cardIds,omitempty"`
	Position      engine.Position `json:"position,omitempty"`
}

// Decider is the decision surface the flow controller consults for AI seats.
type Decider interface {
	DecideDraw(state engine.GameState, playerID string) engine.DrawSource
	DecideDiscard(state engine.GameState, playerID string) (engine.Card, error)
	DecideMeld(state engine.GameState, playerID string) MeldDecision
	DecideBuy(state engine.GameState, playerID string, card engine.Card) bool
	DecideJokerSwap(state engine.GameState, playerID string) SwapDecision
	DecideExtension(state engine.GameState, playerID string) ExtendDecision
}
