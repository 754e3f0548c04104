package agent

import engine "github.com/ppravin88/Shanko/engine"

// Sequence positions run from 1 (Ace low) to 14 (Ace high). A four-card
// window can start anywhere from 1 to 11.
const (
	lowestPosition  = 1
	highestPosition = 14
	planSeqLength   = engine.MinSequenceLength
	windowsPerSuit  = highestPosition - planSeqLength + 1
)

// seqPos places r on the sequence axis: 2..13 at face value, the Ace at 1
// (low) or 14 (high).
func seqPos(r engine.Rank, aceHigh bool) int {
	if r == engine.RankAce && !aceHigh {
		return lowestPosition
	}
	return int(r)
}

// rankAt is the inverse of seqPos.
func rankAt(pos int) engine.Rank {
	if pos == lowestPosition {
		return engine.RankAce
	}
	return engine.Rank(pos)
}

// PlanObjective searches hand for disjoint combinations that meet objective
// exactly, using three-card triplets and four-card sequences. When several
// plans exist the one melding the most points wins, ties going to the first
// found. ok is false when no plan exists.
func PlanObjective(hand []engine.Card, objective engine.RoundObjective) (plan []engine.Combination, ok bool) {
	if len(hand) < objective.TotalCards {
		return nil, false
	}
	p := &planner{
		hand:      hand,
		used:      make([]bool, len(hand)),
		ranks:     engine.RankOrder(),
		bestScore: -1,
	}
	p.search(objective.Sequences, objective.Triplets, 0, 0)
	return p.best, p.best != nil
}

type planner struct {
	hand  []engine.Card
	used  []bool
	ranks []engine.Rank

	cur       []engine.Combination
	best      []engine.Combination
	bestScore int
}

// search fills the remaining sequences first, then the triplets. Windows and
// ranks are visited in non-decreasing order so each plan is reached once.
func (p *planner) search(needSeq, needTrip, fromWindow, fromRank int) {
	if needSeq == 0 && needTrip == 0 {
		if s := p.score(); s > p.bestScore {
			p.bestScore = s
			p.best = make([]engine.Combination, len(p.cur))
			copy(p.best, p.cur)
		}
		return
	}

	if needSeq > 0 {
		for w := fromWindow; w < len(engine.Suits)*windowsPerSuit; w++ {
			suit := engine.Suits[w/windowsPerSuit]
			lo := w%windowsPerSuit + lowestPosition
			p.eachSequence(suit, lo, func(idx []int) {
				p.push(engine.Sequence, idx)
				p.search(needSeq-1, needTrip, w, 0)
				p.pop()
			})
		}
		return
	}

	for ri := fromRank; ri < len(p.ranks); ri++ {
		p.eachTriplet(p.ranks[ri], func(idx []int) {
			p.push(engine.Triplet, idx)
			p.search(0, needTrip-1, 0, ri)
			p.pop()
		})
	}
}

// eachSequence calls fn with every way to build the four-card run of suit
// starting at position lo. Both ends must be natural cards; the middle
// positions take a natural card or a Joker.
func (p *planner) eachSequence(suit engine.Suit, lo int, fn func([]int)) {
	hi := lo + planSeqLength - 1
	first := p.natural(suit, rankAt(lo))
	if first < 0 {
		return
	}
	p.used[first] = true
	defer func() { p.used[first] = false }()

	last := p.natural(suit, rankAt(hi))
	if last < 0 {
		return
	}
	p.used[last] = true
	defer func() { p.used[last] = false }()

	p.fillRun(suit, lo+1, hi, []int{first}, func(idx []int) {
		fn(append(idx, last))
	})
}

func (p *planner) fillRun(suit engine.Suit, pos, hi int, acc []int, fn func([]int)) {
	if pos == hi {
		fn(append([]int(nil), acc...))
		return
	}
	try := func(i int) {
		if i < 0 {
			return
		}
		p.used[i] = true
		p.fillRun(suit, pos+1, hi, append(acc[:len(acc):len(acc)], i), fn)
		p.used[i] = false
	}
	try(p.natural(suit, rankAt(pos)))
	try(p.joker())
}

// eachTriplet calls fn with the triplets of rank, from all-natural down to a
// single natural card padded with Jokers.
func (p *planner) eachTriplet(rank engine.Rank, fn func([]int)) {
	var naturals, jokers []int
	for i, c := range p.hand {
		switch {
		case p.used[i]:
		case c.IsJoker():
			jokers = append(jokers, i)
		case c.Rank == rank:
			naturals = append(naturals, i)
		}
	}
	k := min(len(naturals), engine.TripletLength)
	for ; k >= 1; k-- {
		need := engine.TripletLength - k
		if need > len(jokers) {
			break
		}
		idx := make([]int, 0, engine.TripletLength)
		idx = append(idx, naturals[:k]...)
		idx = append(idx, jokers[:need]...)
		for _, i := range idx {
			p.used[i] = true
		}
		fn(idx)
		for _, i := range idx {
			p.used[i] = false
		}
	}
}

func (p *planner) natural(suit engine.Suit, rank engine.Rank) int {
	for i, c := range p.hand {
		if !p.used[i] && !c.IsJoker() && c.Suit == suit && c.Rank == rank {
			return i
		}
	}
	return -1
}

func (p *planner) joker() int {
	for i, c := range p.hand {
		if !p.used[i] && c.IsJoker() {
			return i
		}
	}
	return -1
}

func (p *planner) push(typ engine.CombinationType, idx []int) {
	cards := make([]engine.Card, len(idx))
	for i, j := range idx {
		cards[i] = p.hand[j]
	}
	p.cur = append(p.cur, engine.Combination{Type: typ, Cards: cards})
}

func (p *planner) pop() { p.cur = p.cur[:len(p.cur)-1] }

func (p *planner) score() int {
	total := 0
	for _, c := range p.cur {
		total += engine.RoundScore(c.Cards)
	}
	return total
}
