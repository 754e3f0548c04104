package agent

import (
	"fmt"
	"sort"

	engine "github.com/ppravin88/Shanko/engine"
)

// Heuristic is a rule-of-thumb Decider. It plans melds exactly, values cards
// by how much they help the partial combinations in hand and otherwise sheds
// the most expensive deadwood.
type Heuristic struct {
	Tuning Tuning
}

// NewHeuristic returns a Heuristic with DefaultTuning.
func NewHeuristic() *Heuristic {
	return &Heuristic{Tuning: DefaultTuning()}
}

var _ Decider = (*Heuristic)(nil)

// DecideDraw takes the top discard when it completes or clearly advances a
// partial combination, and the draw pile otherwise.
func (h *Heuristic) DecideDraw(state engine.GameState, playerID string) engine.DrawSource {
	p, ok := engine.PlayerByID(state, playerID)
	if !ok {
		return engine.FromDrawPile
	}
	top, ok := engine.TopDiscard(state)
	if !ok {
		return engine.FromDrawPile
	}
	if p.HasMelded {
		if extendsAnySequence(state, top) {
			return engine.FromDiscardPile
		}
		return engine.FromDrawPile
	}

	ev := EvaluateHand(p.Hand, state.RoundObjective)
	if completesAny(top, ev.Partials) {
		return engine.FromDiscardPile
	}
	value := h.cardValue(top, ev)
	if value > h.Tuning.DrawValue || (ev.DeadwoodPoints > h.Tuning.DrawDeadwood && value > 0) {
		return engine.FromDiscardPile
	}
	return engine.FromDrawPile
}

// DecideMeld lays the objective down when it is in hand and holding on is
// not worth the risk.
func (h *Heuristic) DecideMeld(state engine.GameState, playerID string) MeldDecision {
	p, ok := engine.PlayerByID(state, playerID)
	if !ok || p.HasMelded {
		return MeldDecision{}
	}
	plan, ok := PlanObjective(p.Hand, state.RoundObjective)
	if !ok {
		return MeldDecision{}
	}
	remaining := len(p.Hand) - state.RoundObjective.TotalCards
	if remaining < 1 {
		// nothing would be left to discard
		return MeldDecision{}
	}
	meld := MeldDecision{ShouldMeld: true, Combinations: plan}

	deadwood := engine.RoundScore(restOf(p.Hand, plan))
	switch {
	case remaining == 1:
		return meld
	case deadwood > h.Tuning.MeldDeadwood:
		return meld
	case opponentMelded(state, playerID):
		return meld
	case remaining <= h.Tuning.HoldRemaining && deadwood < h.Tuning.HoldDeadwood:
		return MeldDecision{}
	case state.Round >= h.Tuning.LateRound && remaining <= h.Tuning.LateRoundRemaining:
		return meld
	}
	return MeldDecision{}
}

// DecideBuy buys cards that complete a partial combination, and other
// valuable cards while buys are plentiful. The threshold drops in later
// rounds.
func (h *Heuristic) DecideBuy(state engine.GameState, playerID string, card engine.Card) bool {
	p, ok := engine.PlayerByID(state, playerID)
	if !ok || p.BuysRemaining <= 0 || p.HasMelded {
		return false
	}
	ev := EvaluateHand(p.Hand, state.RoundObjective)
	if completesAny(card, ev.Partials) {
		return true
	}

	value := h.cardValue(card, ev)
	threshold := h.Tuning.BuyBase - float64(state.Round)/engine.NumRounds*h.Tuning.BuyRoundDiscount
	switch {
	case float64(value) > threshold:
		return true
	case p.BuysRemaining == 1:
		return value > h.Tuning.LastBuyValue
	default:
		return value > h.Tuning.SpareBuyValue
	}
}

// DecideDiscard returns the card to throw away. Before melding it sheds the
// most expensive natural deadwood; after melding it keeps cards that can
// still be laid off on the table.
func (h *Heuristic) DecideDiscard(state engine.GameState, playerID string) (engine.Card, error) {
	p, ok := engine.PlayerByID(state, playerID)
	if !ok {
		return engine.Card{}, fmt.Errorf("%w: %q", engine.ErrPlayerNotFound, playerID)
	}
	if len(p.Hand) == 0 {
		return engine.Card{}, ErrNoCardToDiscard
	}
	if p.HasMelded {
		return h.discardAfterMeld(state, p.Hand), nil
	}

	ev := EvaluateHand(p.Hand, state.RoundObjective)
	if c, ok := mostExpensive(ev.Deadwood); ok {
		return c, nil
	}

	// no deadwood: give up the least useful card outside the completed set
	inCompleted := make(map[string]bool)
	for _, c := range ev.Completed {
		markUsed(inCompleted, c.Cards)
	}
	var best engine.Card
	bestValue, found := 0, false
	for _, c := range p.Hand {
		if inCompleted[c.ID] {
			continue
		}
		if v := h.cardValue(c, ev); !found || v < bestValue {
			best, bestValue, found = c, v, true
		}
	}
	if found {
		return best, nil
	}
	if c, ok := mostExpensive(p.Hand); ok {
		return c, nil
	}
	return p.Hand[0], nil
}

func (h *Heuristic) discardAfterMeld(state engine.GameState, hand []engine.Card) engine.Card {
	var dead []engine.Card
	for _, c := range hand {
		if !extendsAnySequence(state, c) {
			dead = append(dead, c)
		}
	}
	if c, ok := mostExpensive(dead); ok {
		return c
	}
	if c, ok := mostExpensive(hand); ok {
		return c
	}
	return hand[0]
}

// DecideJokerSwap finds the first Joker on the table that a natural card in
// hand can replace.
func (h *Heuristic) DecideJokerSwap(state engine.GameState, playerID string) SwapDecision {
	p, ok := engine.PlayerByID(state, playerID)
	if !ok || !p.HasMelded {
		return SwapDecision{}
	}
	for _, combo := range engine.AllMeldedCombinations(state) {
		if combo.Type != engine.Sequence {
			continue
		}
		for _, joker := range combo.Cards {
			if !joker.IsJoker() {
				continue
			}
			for _, c := range p.Hand {
				if engine.CanSwapJoker(combo, joker, c) {
					return SwapDecision{
						ShouldSwap:        true,
						CombinationID:     combo.ID,
						JokerCardID:       joker.ID,
						ReplacementCardID: c.ID,
					}
				}
			}
		}
	}
	return SwapDecision{}
}

// DecideExtension finds a natural card in hand that extends a melded
// sequence, keeping at least one card back for the discard.
func (h *Heuristic) DecideExtension(state engine.GameState, playerID string) ExtendDecision {
	p, ok := engine.PlayerByID(state, playerID)
	if !ok || !p.HasMelded || len(p.Hand) < 2 {
		return ExtendDecision{}
	}
	for _, combo := range engine.AllMeldedCombinations(state) {
		if combo.Type != engine.Sequence {
			continue
		}
		for _, c := range mostExpensiveFirst(p.Hand) {
			if c.IsJoker() {
				continue
			}
			if pos, ok := extensionSide(combo, c); ok {
				return ExtendDecision{
					ShouldExtend:  true,
					CombinationID: combo.ID,
					CardIDs:       []string{c.ID},
					Position:      pos,
				}
			}
		}
	}
	return ExtendDecision{}
}

// cardValue scores a card for the hand: minus its points, plus a bonus for
// each partial it completes or advances, plus a flat bonus for Jokers.
func (h *Heuristic) cardValue(c engine.Card, ev HandEvaluation) int {
	v := -engine.CardPoints(c)
	for _, p := range ev.Partials {
		switch {
		case completes(c, p):
			v += h.Tuning.CompleteBonus
		case advances(c, p):
			v += h.Tuning.AdvanceBonus
		}
	}
	if c.IsJoker() {
		v += h.Tuning.JokerBonus
	}
	return v
}

func completesAny(c engine.Card, partials []Partial) bool {
	for _, p := range partials {
		if completes(c, p) {
			return true
		}
	}
	return false
}

// completes reports whether c is the one card p is missing.
func completes(c engine.Card, p Partial) bool {
	if p.Missing != 1 || containsCard(p.Cards, c.ID) {
		return false
	}
	cards := append(append([]engine.Card(nil), p.Cards...), c)
	if p.Type == engine.Triplet {
		return engine.IsValidTriplet(cards)
	}
	return engine.IsValidSequence(cards)
}

// advances reports whether c belongs to p or brings it a card closer.
func advances(c engine.Card, p Partial) bool {
	if containsCard(p.Cards, c.ID) {
		return true
	}
	if p.Type == engine.Triplet {
		return c.IsJoker() || c.Rank == p.Cards[0].Rank
	}
	if c.IsJoker() || c.Suit != p.Cards[0].Suit {
		return false
	}
	for _, x := range p.Cards {
		if x.Rank == c.Rank {
			return false
		}
	}
	cards := append(append([]engine.Card(nil), p.Cards...), c)
	return spanAtMost(cards, false, planSeqLength) || spanAtMost(cards, true, planSeqLength)
}

func spanAtMost(cards []engine.Card, aceHigh bool, n int) bool {
	lo, hi := highestPosition+1, 0
	for _, c := range cards {
		pos := seqPos(c.Rank, aceHigh)
		lo, hi = min(lo, pos), max(hi, pos)
	}
	return hi-lo+1 <= n
}

// extensionSide picks the end of combo that c can be attached to, preferring
// the end that keeps the run in ascending order.
func extensionSide(combo engine.Combination, c engine.Card) (engine.Position, bool) {
	var fallback engine.Position
	for _, pos := range []engine.Position{engine.AtStart, engine.AtEnd} {
		if !engine.CanExtendSequence(combo, []engine.Card{c}, pos) {
			continue
		}
		joined := append([]engine.Card{c}, combo.Cards...)
		if pos == engine.AtEnd {
			joined = append(append([]engine.Card(nil), combo.Cards...), c)
		}
		if ascending(joined, false) || ascending(joined, true) {
			return pos, true
		}
		if fallback == "" {
			fallback = pos
		}
	}
	return fallback, fallback != ""
}

// ascending reports whether every natural card sits at its own position
// counted from the first natural card.
func ascending(cards []engine.Card, aceHigh bool) bool {
	base, set := 0, false
	for i, c := range cards {
		if c.IsJoker() {
			continue
		}
		pos := seqPos(c.Rank, aceHigh)
		if !set {
			base, set = pos-i, true
		}
		if pos != base+i {
			return false
		}
	}
	return true
}

func extendsAnySequence(state engine.GameState, c engine.Card) bool {
	if c.IsJoker() {
		return false
	}
	for _, combo := range engine.AllMeldedCombinations(state) {
		if engine.CanExtendSequence(combo, []engine.Card{c}, engine.AtStart) ||
			engine.CanExtendSequence(combo, []engine.Card{c}, engine.AtEnd) {
			return true
		}
	}
	return false
}

func opponentMelded(state engine.GameState, playerID string) bool {
	for _, p := range state.Players {
		if p.ID != playerID && p.HasMelded {
			return true
		}
	}
	return false
}

func restOf(hand []engine.Card, plan []engine.Combination) []engine.Card {
	used := make(map[string]bool)
	for _, c := range plan {
		markUsed(used, c.Cards)
	}
	return unused(hand, used)
}

// mostExpensive returns the highest-scoring natural card, or a Joker when
// nothing else is left.
func mostExpensive(cards []engine.Card) (engine.Card, bool) {
	if len(cards) == 0 {
		return engine.Card{}, false
	}
	for _, c := range mostExpensiveFirst(cards) {
		if !c.IsJoker() {
			return c, true
		}
	}
	return cards[0], true
}

func mostExpensiveFirst(cards []engine.Card) []engine.Card {
	out := append([]engine.Card(nil), cards...)
	sort.SliceStable(out, func(i, j int) bool {
		return engine.CardPoints(out[i]) > engine.CardPoints(out[j])
	})
	return out
}
