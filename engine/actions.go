package engine

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// DrawCard moves the top card of source into the current player's hand.
// An empty draw pile is first replenished from the discard pile, keeping the
// top discard in place.
func DrawCard(state GameState, source DrawSource) (GameState, Card, error) {
	if state.Phase != PhaseDraw {
		return state, Card{}, fmt.Errorf("%w: cannot draw in %s", ErrWrongPhase, state.Phase)
	}
	g := state.Clone()
	p := &g.Players[g.CurrentPlayerIndex]

	var drawn Card
	switch source {
	case FromDrawPile:
		if len(g.DrawPile) == 0 {
			reshuffleDiscardPile(&g)
		}
		if len(g.DrawPile) == 0 {
			return state, Card{}, ErrNoCardsAvailable
		}
		drawn = g.DrawPile[0]
		g.DrawPile = g.DrawPile[1:]
	case FromDiscardPile:
		n := len(g.DiscardPile)
		if n == 0 {
			return state, Card{}, ErrEmptyDiscardPile
		}
		drawn = g.DiscardPile[n-1]
		g.DiscardPile = g.DiscardPile[:n-1]
	default:
		return state, Card{}, fmt.Errorf("%w: %q", ErrInvalidDrawSource, source)
	}

	p.Hand = append(p.Hand, drawn)
	g.Phase = PhaseMeld
	return g, drawn, nil
}

// DiscardCard moves cardID from the current player's hand onto the discard
// pile. With three or more players the buy window opens; with two the turn
// passes straight to the next player. A melded player who discards their
// last card goes out.
func DiscardCard(state GameState, cardID string) (GameState, error) {
	if state.Phase != PhaseMeld && state.Phase != PhaseDiscard {
		return state, fmt.Errorf("%w: cannot discard in %s", ErrWrongPhase, state.Phase)
	}
	g := state.Clone()
	p := &g.Players[g.CurrentPlayerIndex]

	hand, card, ok := removeCard(p.Hand, cardID)
	if !ok {
		return state, fmt.Errorf("%w: %s", ErrCardNotInHand, cardID)
	}
	p.Hand = hand
	g.DiscardPile = append(g.DiscardPile, card)

	if p.HasMelded && len(p.Hand) == 0 {
		return EndRound(g, p.ID)
	}
	if len(g.Players) == 2 {
		return advance(g), nil
	}
	g.Phase = PhaseBuyWindow
	g.BuyClaimed = false
	return g, nil
}

// MeldCombinations lays down combinations for the current player. Cards are
// matched to the hand by ID. The combinations must each be valid and
// together match the round objective exactly, and the player must keep at
// least one card to discard. Melding forfeits any remaining buys.
func MeldCombinations(state GameState, combinations []Combination) (GameState, error) {
	if state.Phase != PhaseMeld {
		return state, fmt.Errorf("%w: cannot meld in %s", ErrWrongPhase, state.Phase)
	}
	g := state.Clone()
	p := &g.Players[g.CurrentPlayerIndex]
	if p.HasMelded {
		return state, ErrAlreadyMelded
	}

	rest, melded, err := resolveMeld(*p, combinations, g.RoundObjective)
	if err != nil {
		return state, err
	}
	if len(rest) == 0 {
		return state, fmt.Errorf("%w: melding would empty the hand", ErrMustKeepDiscard)
	}

	p.Hand = rest
	p.MeldedCombinations = melded
	p.HasMelded = true
	p.BuysRemaining = 0
	g.Phase = PhaseDiscard
	return g, nil
}

// GoOut melds combinations and discards finalCardID in one move, which must
// leave the hand empty. The round ends with the current player as winner.
func GoOut(state GameState, combinations []Combination, finalCardID string) (GameState, error) {
	if state.Phase != PhaseMeld {
		return state, fmt.Errorf("%w: cannot go out in %s", ErrWrongPhase, state.Phase)
	}
	g := state.Clone()
	p := &g.Players[g.CurrentPlayerIndex]
	if p.HasMelded {
		return state, ErrAlreadyMelded
	}

	rest, melded, err := resolveMeld(*p, combinations, g.RoundObjective)
	if err != nil {
		return state, err
	}
	if finalCardIn(melded, finalCardID) {
		return state, fmt.Errorf("%w: %s", ErrFinalCardMelded, finalCardID)
	}
	if len(rest) != 1 {
		return state, fmt.Errorf("%w: %d cards would remain", ErrFinalCardCount, len(rest))
	}
	if rest[0].ID != finalCardID {
		return state, fmt.Errorf("%w: %s", ErrCardNotInHand, finalCardID)
	}

	p.Hand = []Card{}
	p.MeldedCombinations = melded
	p.HasMelded = true
	p.BuysRemaining = 0
	g.DiscardPile = append(g.DiscardPile, rest[0])
	return EndRound(g, p.ID)
}

// resolveMeld replaces the cards of each proposed combination with the
// player's own copies, assigns IDs and ownership, and checks the result
// against the combination rules and the round objective.
func resolveMeld(p Player, combinations []Combination, objective RoundObjective) ([]Card, []Combination, error) {
	hand := p.Hand
	melded := make([]Combination, 0, len(combinations))
	for _, c := range combinations {
		ids := make([]string, len(c.Cards))
		for i, card := range c.Cards {
			ids[i] = card.ID
		}
		rest, taken, err := takeCards(hand, ids)
		if errors.Is(err, ErrCardNotInHand) {
			// still in the full hand means an earlier combination already used it
			if id := firstMissing(hand, ids); indexOfCard(p.Hand, id) >= 0 {
				return nil, nil, fmt.Errorf("%w: %s", ErrDuplicateCard, id)
			}
		}
		if err != nil {
			return nil, nil, err
		}
		hand = rest
		id := c.ID
		if id == "" {
			id = uuid.NewString()
		}
		melded = append(melded, Combination{ID: id, Type: c.Type, Cards: taken, PlayerID: p.ID})
	}

	for _, c := range melded {
		if err := ValidateCombination(c); err != nil {
			return nil, nil, err
		}
	}
	if !MeetsRoundObjective(melded, objective) {
		return nil, nil, fmt.Errorf("%w: round %d needs %d triplets and %d sequences (%d cards)",
			ErrObjectiveNotMet, objective.Round, objective.Triplets, objective.Sequences, objective.TotalCards)
	}
	return hand, melded, nil
}

func firstMissing(hand []Card, ids []string) string {
	for _, id := range ids {
		if indexOfCard(hand, id) < 0 {
			return id
		}
	}
	return ""
}

func finalCardIn(combinations []Combination, id string) bool {
	for _, c := range combinations {
		if indexOfCard(c.Cards, id) >= 0 {
			return true
		}
	}
	return false
}

// ---------------------------------------------------------------------------
// Laying off on melded combinations
// ---------------------------------------------------------------------------

// SwapJoker replaces a Joker in any player's melded sequence with a natural
// card from playerID's hand; the Joker goes to that hand.
func SwapJoker(state GameState, playerID, combinationID, jokerCardID, replacementCardID string) (GameState, error) {
	pi, err := checkLayOff(state, playerID)
	if err != nil {
		return state, err
	}
	g := state.Clone()
	p := &g.Players[pi]

	owner, ci, ok := findCombination(g, combinationID)
	if !ok {
		return state, fmt.Errorf("%w: %s", ErrCombinationNotFound, combinationID)
	}
	combo := &g.Players[owner].MeldedCombinations[ci]

	ji := indexOfCard(combo.Cards, jokerCardID)
	if ji < 0 {
		return state, fmt.Errorf("%w: joker %s is not in combination %s", ErrInvalidJokerSwap, jokerCardID, combinationID)
	}
	hand, replacement, ok := removeCard(p.Hand, replacementCardID)
	if !ok {
		return state, fmt.Errorf("%w: %s", ErrCardNotInHand, replacementCardID)
	}
	joker := combo.Cards[ji]
	if !CanSwapJoker(*combo, joker, replacement) {
		return state, fmt.Errorf("%w: %s cannot replace %s", ErrInvalidJokerSwap, replacement, joker)
	}

	combo.Cards[ji] = replacement
	p.Hand = append(hand, joker)
	return g, nil
}

// ExtendSequence attaches cards from playerID's hand to either end of any
// player's melded sequence. At least one card must stay in hand.
func ExtendSequence(state GameState, playerID, combinationID string, extensionCardIDs []string, position Position) (GameState, error) {
	pi, err := checkLayOff(state, playerID)
	if err != nil {
		return state, err
	}
	g := state.Clone()
	p := &g.Players[pi]

	owner, ci, ok := findCombination(g, combinationID)
	if !ok {
		return state, fmt.Errorf("%w: %s", ErrCombinationNotFound, combinationID)
	}
	combo := &g.Players[owner].MeldedCombinations[ci]
	if combo.Type != Sequence {
		return state, fmt.Errorf("%w: %s is a %s", ErrNotASequence, combinationID, combo.Type)
	}

	rest, ext, err := takeCards(p.Hand, extensionCardIDs)
	if err != nil {
		return state, err
	}
	if len(ext) == 0 {
		return state, fmt.Errorf("%w: no cards given", ErrInvalidExtension)
	}
	if len(rest) == 0 {
		return state, ErrMustKeepDiscard
	}
	if !CanExtendSequence(*combo, ext, position) {
		return state, fmt.Errorf("%w: %v at %s of %v", ErrInvalidExtension, ext, position, combo.Cards)
	}

	combo.Cards, _ = joinAt(combo.Cards, ext, position)
	p.Hand = rest
	return g, nil
}

// checkLayOff validates the acting player for a Joker swap or an extension:
// it must be their turn, after drawing, and they must have melded.
func checkLayOff(state GameState, playerID string) (int, error) {
	pi, ok := playerIndex(state, playerID)
	if !ok {
		return -1, fmt.Errorf("%w: %q", ErrPlayerNotFound, playerID)
	}
	if state.Phase != PhaseMeld && state.Phase != PhaseDiscard {
		return -1, fmt.Errorf("%w: cannot lay off in %s", ErrWrongPhase, state.Phase)
	}
	if pi != state.CurrentPlayerIndex {
		return -1, ErrOutOfTurn
	}
	if !state.Players[pi].HasMelded {
		return -1, ErrNotMelded
	}
	return pi, nil
}

func findCombination(state GameState, combinationID string) (owner, idx int, ok bool) {
	for pi, p := range state.Players {
		for ci, c := range p.MeldedCombinations {
			if c.ID == combinationID {
				return pi, ci, true
			}
		}
	}
	return -1, -1, false
}

// ---------------------------------------------------------------------------
// Turn order
// ---------------------------------------------------------------------------

// AdvanceTurn passes the turn clockwise and returns to the DRAW phase.
func AdvanceTurn(state GameState) (GameState, error) {
	if !state.Phase.InRound() {
		return state, fmt.Errorf("%w: cannot advance turn in %s", ErrWrongPhase, state.Phase)
	}
	return advance(state.Clone()), nil
}

func advance(g GameState) GameState {
	g.CurrentPlayerIndex = nextIndex(g, g.CurrentPlayerIndex)
	g.Phase = PhaseDraw
	g.BuyClaimed = false
	return g
}
