package agent

import engine "github.com/ppravin88/Shanko/engine"

// Partial is a combination the hand is still building.
type Partial struct {
	Type    engine.CombinationType `json:"type"`
	Cards   []engine.Card          `json:"cards"`
	Missing int                    `json:"missing"`
}

// HandEvaluation summarises a hand against the round objective.
type HandEvaluation struct {
	// Completed is the objective plan when one exists, otherwise every
	// all-natural triplet and four-card run found in the hand.
	Completed    []engine.Combination `json:"completed"`
	ObjectiveMet bool                 `json:"objectiveMet"`
	Partials     []Partial            `json:"partials"`
	// Deadwood holds the natural cards outside every completed and partial
	// combination. Jokers are never deadwood.
	Deadwood        []engine.Card `json:"deadwood"`
	DeadwoodPoints  int           `json:"deadwoodPoints"`
	TurnsToComplete int           `json:"turnsToComplete"`
}

// Turns assumed to build a missing combination from nothing.
const (
	tripletFromScratch  = 3
	sequenceFromScratch = 4
)

// EvaluateHand splits hand into completed combinations, partial
// combinations and deadwood, and estimates how many turns the objective is
// away.
func EvaluateHand(hand []engine.Card, objective engine.RoundObjective) HandEvaluation {
	var ev HandEvaluation
	used := make(map[string]bool, len(hand))

	if plan, ok := PlanObjective(hand, objective); ok {
		ev.Completed, ev.ObjectiveMet = plan, true
	} else {
		ev.Completed = completedTriplets(hand)
		for _, c := range ev.Completed {
			markUsed(used, c.Cards)
		}
		ev.Completed = append(ev.Completed, completedRuns(unused(hand, used))...)
	}
	for _, c := range ev.Completed {
		markUsed(used, c.Cards)
	}

	rest := unused(hand, used)
	ev.Partials = append(pairs(rest), shortRuns(rest)...)
	inPartial := make(map[string]bool)
	for _, p := range ev.Partials {
		markUsed(inPartial, p.Cards)
	}
	for _, c := range rest {
		if !c.IsJoker() && !inPartial[c.ID] {
			ev.Deadwood = append(ev.Deadwood, c)
		}
	}
	ev.DeadwoodPoints = engine.RoundScore(ev.Deadwood)
	if !ev.ObjectiveMet {
		ev.TurnsToComplete = estimateTurns(ev.Completed, ev.Partials, objective)
	}
	return ev
}

// estimateTurns counts one turn per missing card of the closest partials,
// plus a flat cost for every combination not started at all.
func estimateTurns(completed []engine.Combination, partials []Partial, objective engine.RoundObjective) int {
	var haveTrip, haveSeq int
	for _, c := range completed {
		if c.Type == engine.Triplet {
			haveTrip++
		} else {
			haveSeq++
		}
	}
	needTrip := max(0, objective.Triplets-haveTrip)
	needSeq := max(0, objective.Sequences-haveSeq)

	turns := 0
	for missing := 1; missing < sequenceFromScratch; missing++ {
		for _, p := range partials {
			if p.Missing != missing {
				continue
			}
			switch {
			case p.Type == engine.Triplet && needTrip > 0:
				needTrip--
				turns += missing
			case p.Type == engine.Sequence && needSeq > 0:
				needSeq--
				turns += missing
			}
		}
	}
	return turns + needTrip*tripletFromScratch + needSeq*sequenceFromScratch
}

func markUsed(set map[string]bool, cards []engine.Card) {
	for _, c := range cards {
		set[c.ID] = true
	}
}

func unused(hand []engine.Card, used map[string]bool) []engine.Card {
	out := make([]engine.Card, 0, len(hand))
	for _, c := range hand {
		if !used[c.ID] {
			out = append(out, c)
		}
	}
	return out
}

// byRank groups the natural cards of hand by rank in rank order.
func byRank(hand []engine.Card) [][]engine.Card {
	groups := make(map[engine.Rank][]engine.Card)
	for _, c := range hand {
		if !c.IsJoker() {
			groups[c.Rank] = append(groups[c.Rank], c)
		}
	}
	var out [][]engine.Card
	for _, r := range engine.RankOrder() {
		if g := groups[r]; len(g) > 0 {
			out = append(out, g)
		}
	}
	return out
}

func completedTriplets(hand []engine.Card) []engine.Combination {
	var out []engine.Combination
	for _, g := range byRank(hand) {
		for len(g) >= engine.TripletLength {
			cards := append([]engine.Card(nil), g[:engine.TripletLength]...)
			out = append(out, engine.Combination{Type: engine.Triplet, Cards: cards})
			g = g[engine.TripletLength:]
		}
	}
	return out
}

func pairs(hand []engine.Card) []Partial {
	var out []Partial
	for _, g := range byRank(hand) {
		if len(g) == engine.TripletLength-1 {
			out = append(out, Partial{Type: engine.Triplet, Cards: append([]engine.Card(nil), g...), Missing: 1})
		}
	}
	return out
}

// completedRuns cuts every same-suit run of four or more natural cards into
// four-card sequences.
func completedRuns(hand []engine.Card) []engine.Combination {
	var out []engine.Combination
	for _, run := range runs(hand) {
		for len(run) >= planSeqLength {
			cards := append([]engine.Card(nil), run[:planSeqLength]...)
			out = append(out, engine.Combination{Type: engine.Sequence, Cards: cards})
			run = run[planSeqLength:]
		}
	}
	return out
}

// shortRuns reports same-suit runs of two or three consecutive natural cards.
func shortRuns(hand []engine.Card) []Partial {
	var out []Partial
	for _, run := range runs(hand) {
		if len(run) >= 2 && len(run) < planSeqLength {
			out = append(out, Partial{
				Type:    engine.Sequence,
				Cards:   run,
				Missing: planSeqLength - len(run),
			})
		}
	}
	return out
}

// runs walks each suit from Ace-low to Ace-high and returns the maximal runs
// of consecutive natural cards. A card is used by one run at most, so an Ace
// that closes a low run is not offered to a high one.
func runs(hand []engine.Card) [][]engine.Card {
	var out [][]engine.Card
	taken := make(map[string]bool)
	for _, suit := range engine.Suits {
		var cur []engine.Card
		flush := func() {
			if len(cur) >= 2 {
				out = append(out, cur)
				markUsed(taken, cur)
			}
			cur = nil
		}
		for pos := lowestPosition; pos <= highestPosition; pos++ {
			c, ok := findNatural(hand, suit, rankAt(pos), taken, cur)
			if !ok {
				flush()
				continue
			}
			cur = append(cur, c)
		}
		flush()
	}
	return out
}

func findNatural(hand []engine.Card, suit engine.Suit, rank engine.Rank, taken map[string]bool, cur []engine.Card) (engine.Card, bool) {
	for _, c := range hand {
		if c.IsJoker() || c.Suit != suit || c.Rank != rank || taken[c.ID] || containsCard(cur, c.ID) {
			continue
		}
		return c, true
	}
	return engine.Card{}, false
}

func containsCard(cards []engine.Card, id string) bool {
	for _, c := range cards {
		if c.ID == id {
			return true
		}
	}
	return false
}
