package engine

import "fmt"

// Action names a player-initiated operation for ValidatePlayerAction.
type Action string

const (
	ActionDraw      Action = "draw"
	ActionDiscard   Action = "discard"
	ActionMeld      Action = "meld"
	ActionGoOut     Action = "go_out"
	ActionBuy       Action = "buy"
	ActionSwapJoker Action = "swap_joker"
	ActionExtend    Action = "extend"
)

// ValidatePlayerAction rejects actions by unknown players and actions taken
// out of turn. Buying is exempt from the turn check because the buy window
// is open to every eligible player.
func ValidatePlayerAction(state GameState, playerID string, action Action) error {
	switch action {
	case ActionDraw, ActionDiscard, ActionMeld, ActionGoOut, ActionBuy, ActionSwapJoker, ActionExtend:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidAction, action)
	}
	idx, ok := playerIndex(state, playerID)
	if !ok {
		return fmt.Errorf("%w: %q", ErrPlayerNotFound, playerID)
	}
	if action != ActionBuy && idx != state.CurrentPlayerIndex {
		return fmt.Errorf("%w: %s tried to %s", ErrOutOfTurn, state.Players[idx].Name, action)
	}
	return nil
}

// ValidActionSet describes what the current player can attempt in the
// current phase. A true flag does not guarantee the attempt succeeds: melds,
// swaps and extensions still depend on the cards chosen.
type ValidActionSet struct {
	DrawFromPile    bool `json:"drawFromPile"`
	DrawFromDiscard bool `json:"drawFromDiscard"`
	Meld            bool `json:"meld"`
	GoOut           bool `json:"goOut"`
	Discard         bool `json:"discard"`
	SwapJoker       bool `json:"swapJoker"`
	Extend          bool `json:"extend"`
	Buy             bool `json:"buy"`
}

// ValidActions returns the actions open to the current player.
func ValidActions(state GameState) ValidActionSet {
	var v ValidActionSet
	if !state.Phase.InRound() || len(state.Players) == 0 {
		return v
	}
	p := state.Players[state.CurrentPlayerIndex]

	switch state.Phase {
	case PhaseDraw:
		v.DrawFromPile = len(state.DrawPile) > 0 || len(state.DiscardPile) > 1
		v.DrawFromDiscard = len(state.DiscardPile) > 0
	case PhaseMeld:
		v.Meld = !p.HasMelded && len(p.Hand) > state.RoundObjective.TotalCards
		v.GoOut = !p.HasMelded && len(p.Hand) == state.RoundObjective.TotalCards+1
		v.Discard = len(p.Hand) > 0
		v.SwapJoker = p.HasMelded && hasMeldedJoker(state)
		v.Extend = p.HasMelded && len(p.Hand) > 1
	case PhaseDiscard:
		v.Discard = len(p.Hand) > 0
		v.SwapJoker = p.HasMelded && hasMeldedJoker(state)
		v.Extend = p.HasMelded && len(p.Hand) > 1
	case PhaseBuyWindow:
		v.Buy = len(BuyPriority(state)) > 0 && !state.BuyClaimed && len(state.DiscardPile) > 0
	}
	return v
}

func hasMeldedJoker(state GameState) bool {
	for _, c := range AllMeldedCombinations(state) {
		if c.Type != Sequence {
			continue
		}
		for _, card := range c.Cards {
			if card.IsJoker() {
				return true
			}
		}
	}
	return false
}

// ---------------------------------------------------------------------------
// Selectors
// ---------------------------------------------------------------------------

// CurrentPlayer returns the player whose turn it is.
func CurrentPlayer(state GameState) (Player, bool) {
	if state.CurrentPlayerIndex < 0 || state.CurrentPlayerIndex >= len(state.Players) {
		return Player{}, false
	}
	return state.Players[state.CurrentPlayerIndex].clone(), true
}

// PlayerByID looks up a player.
func PlayerByID(state GameState, playerID string) (Player, bool) {
	idx, ok := playerIndex(state, playerID)
	if !ok {
		return Player{}, false
	}
	return state.Players[idx].clone(), true
}

// TopDiscard returns the card on top of the discard pile.
func TopDiscard(state GameState) (Card, bool) {
	if len(state.DiscardPile) == 0 {
		return Card{}, false
	}
	return state.DiscardPile[len(state.DiscardPile)-1], true
}

// AllMeldedCombinations returns every combination on the table, in seat order.
func AllMeldedCombinations(state GameState) []Combination {
	var out []Combination
	for _, p := range state.Players {
		for _, c := range p.MeldedCombinations {
			out = append(out, c.clone())
		}
	}
	return out
}

// CardCount returns the number of cards currently in play: every hand, every
// melded combination and both piles.
func CardCount(state GameState) int {
	n := len(state.DrawPile) + len(state.DiscardPile)
	for _, p := range state.Players {
		n += len(p.Hand) + p.MeldedCardCount()
	}
	return n
}
