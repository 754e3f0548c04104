package agent

import (
	"sort"

	engine "github.com/ppravin88/Shanko/engine"
)

// Usefulness weights for LeastUseful.
const (
	jokerUsefulness    = 100
	tripletPartnerGain = 30
	runPartnerGain     = 25
	objectiveGain      = 20
	pointPenalty       = 2
	runReach           = 3 // ranks either side that can share a 4-card run
)

// LeastUseful picks the card to discard for a player who ran out of time.
// It is cheaper than a full evaluation: each card is scored by how many
// cards in hand could share a triplet or run with it, less twice its
// points. Jokers are kept. Ties go to the card earlier in hand.
func LeastUseful(hand []engine.Card, objective engine.RoundObjective) (engine.Card, error) {
	if len(hand) == 0 {
		return engine.Card{}, ErrNoCardToDiscard
	}
	scores := make([]int, len(hand))
	order := make([]int, len(hand))
	for i, c := range hand {
		scores[i] = usefulness(c, hand, objective)
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return scores[order[a]] < scores[order[b]] })
	return hand[order[0]], nil
}

func usefulness(c engine.Card, hand []engine.Card, objective engine.RoundObjective) int {
	if c.IsJoker() {
		return jokerUsefulness
	}
	sameRank := 0
	near := make(map[engine.Rank]bool)
	for _, o := range hand {
		if o.ID == c.ID || o.IsJoker() {
			continue
		}
		if o.Rank == c.Rank {
			sameRank++
		}
		// Ace counts high here, as in rank order.
		if o.Suit == c.Suit && o.Rank != c.Rank && absDiff(int(o.Rank), int(c.Rank)) <= runReach {
			near[o.Rank] = true
		}
	}
	runPartners := len(near)

	score := sameRank*tripletPartnerGain + runPartners*runPartnerGain - engine.CardPoints(c)*pointPenalty
	if objective.Triplets > 0 && sameRank >= 1 {
		score += objectiveGain
	}
	if objective.Sequences > 0 && runPartners >= 2 {
		score += objectiveGain
	}
	return score
}

func absDiff(a, b int) int {
	if a > b {
		return a - b
	}
	return b - a
}
