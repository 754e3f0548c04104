package engine

import "fmt"

// BuyCard lets playerID take the top discard out of turn, together with a
// face-down bonus card from the draw pile. It costs one buy token. Only one
// buy is allowed per buy window, and neither the discarder nor the next
// player in turn order may buy.
func BuyCard(state GameState, playerID string) (next GameState, bought, extra Card, err error) {
	pi, err := checkBuy(state, playerID)
	if err != nil {
		return state, Card{}, Card{}, err
	}

	g := state.Clone()
	n := len(g.DiscardPile)
	bought = g.DiscardPile[n-1]
	g.DiscardPile = g.DiscardPile[:n-1]

	if len(g.DrawPile) == 0 {
		reshuffleDiscardPile(&g)
	}
	if len(g.DrawPile) == 0 {
		return state, Card{}, Card{}, fmt.Errorf("%w: no bonus card for the buy", ErrNoCardsAvailable)
	}
	extra = g.DrawPile[0]
	g.DrawPile = g.DrawPile[1:]

	p := &g.Players[pi]
	p.Hand = append(p.Hand, bought, extra)
	p.BuysRemaining--
	g.BuyClaimed = true
	return g, bought, extra, nil
}

// CanPlayerBuy reports whether BuyCard would accept playerID right now.
func CanPlayerBuy(state GameState, playerID string) bool {
	_, err := checkBuy(state, playerID)
	return err == nil
}

func checkBuy(state GameState, playerID string) (int, error) {
	if len(state.Players) == 2 {
		return -1, ErrBuyingDisabled
	}
	if state.Phase != PhaseBuyWindow {
		return -1, fmt.Errorf("%w: cannot buy in %s", ErrWrongPhase, state.Phase)
	}
	pi, ok := playerIndex(state, playerID)
	if !ok {
		return -1, fmt.Errorf("%w: %q", ErrPlayerNotFound, playerID)
	}
	p := state.Players[pi]
	switch {
	case p.HasMelded:
		return -1, fmt.Errorf("%w: cannot buy after melding", ErrAlreadyMelded)
	case p.BuysRemaining <= 0:
		return -1, ErrNoBuysRemaining
	case len(state.DiscardPile) == 0:
		return -1, ErrEmptyDiscardPile
	case pi == state.CurrentPlayerIndex:
		return -1, fmt.Errorf("%w: %s discarded the card", ErrNotEligibleToBuy, p.Name)
	case pi == nextIndex(state, state.CurrentPlayerIndex):
		return -1, fmt.Errorf("%w: %s draws next", ErrNotEligibleToBuy, p.Name)
	case state.BuyClaimed:
		return -1, ErrBuyWindowClaimed
	}
	return pi, nil
}

// BuyPriority lists, in order of precedence, the players who may buy the
// discard just made by the current player. It walks clockwise from the seat
// after the next player, skipping the discarder, melded players and players
// without buys. Two-player games have no buy window and return nil.
func BuyPriority(state GameState) []string {
	n := len(state.Players)
	if n <= 2 {
		return nil
	}
	discarder := state.CurrentPlayerIndex
	order := make([]string, 0, n-2)
	for step := 2; step < n; step++ {
		p := state.Players[(discarder+step)%n]
		if p.HasMelded || p.BuysRemaining <= 0 {
			continue
		}
		order = append(order, p.ID)
	}
	return order
}

// CompleteBuyWindow closes the buy window and passes the turn.
func CompleteBuyWindow(state GameState) (GameState, error) {
	if state.Phase != PhaseBuyWindow {
		return state, fmt.Errorf("%w: no buy window open in %s", ErrWrongPhase, state.Phase)
	}
	return advance(state.Clone()), nil
}
