package engine

import "fmt"

// Sequence length bounds. A sequence can run from A (low) through K, or from
// 2 through A (high): at most 14 distinct positions are ever available.
const (
	MinSequenceLength = 4
	MaxSequenceLength = 14
	TripletLength     = 3
)

func splitJokers(cards []Card) (naturals []Card, jokers int) {
	naturals = make([]Card, 0, len(cards))
	for _, c := range cards {
		if c.IsJoker() {
			jokers++
			continue
		}
		naturals = append(naturals, c)
	}
	return naturals, jokers
}

// IsValidTriplet reports whether cards is exactly three cards of one rank,
// Jokers standing in for any rank. At least one natural card is required.
func IsValidTriplet(cards []Card) bool {
	if len(cards) != TripletLength {
		return false
	}
	naturals, _ := splitJokers(cards)
	if len(naturals) == 0 {
		return false
	}
	for _, c := range naturals[1:] {
		if c.Rank != naturals[0].Rank {
			return false
		}
	}
	return true
}

// IsValidSequence reports whether cards form a same-suit run of consecutive
// ranks in which every Joker fills a gap between natural cards.
//
// Each natural card is placed at its rank position (2..13, Ace at 1 or 14).
// The run is valid when, for either placement of the Ace, the span of the
// natural positions is exactly the number of cards. Positions never leave
// [1,14], so K-A-2 can never be continuous.
func IsValidSequence(cards []Card) bool {
	if len(cards) < MinSequenceLength || len(cards) > MaxSequenceLength {
		return false
	}
	naturals, _ := splitJokers(cards)
	if len(naturals) == 0 {
		return false
	}

	suit := naturals[0].Suit
	seen := make(map[Rank]bool, len(naturals))
	for _, c := range naturals {
		if c.Suit != suit || !c.Rank.Valid() {
			return false
		}
		// duplicate ranks cannot share a run, and this also allows at most one Ace
		if seen[c.Rank] {
			return false
		}
		seen[c.Rank] = true
	}

	if spanMatches(naturals, false, len(cards)) {
		return true
	}
	return seen[RankAce] && spanMatches(naturals, true, len(cards))
}

func spanMatches(naturals []Card, aceHigh bool, length int) bool {
	lo, hi := acePositionHigh+1, 0
	for _, c := range naturals {
		p := c.Rank.position(aceHigh)
		if p < lo {
			lo = p
		}
		if p > hi {
			hi = p
		}
	}
	return hi-lo+1 == length
}

// MeetsRoundObjective reports whether combinations contain exactly the
// required number of triplets and sequences and exactly the required number
// of cards.
func MeetsRoundObjective(combinations []Combination, objective RoundObjective) bool {
	triplets, sequences, cards := 0, 0, 0
	for _, c := range combinations {
		switch c.Type {
		case Triplet:
			triplets++
		case Sequence:
			sequences++
		default:
			return false
		}
		cards += len(c.Cards)
	}
	return triplets == objective.Triplets &&
		sequences == objective.Sequences &&
		cards == objective.TotalCards
}

// ValidateCombination checks a single combination against the rule for its
// type and returns a wrapped ErrInvalidTriplet, ErrInvalidSequence or
// ErrUnknownCombination.
func ValidateCombination(c Combination) error {
	switch c.Type {
	case Triplet:
		if !IsValidTriplet(c.Cards) {
			return fmt.Errorf("%w: %v", ErrInvalidTriplet, c.Cards)
		}
	case Sequence:
		if !IsValidSequence(c.Cards) {
			return fmt.Errorf("%w: %v", ErrInvalidSequence, c.Cards)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCombination, c.Type)
	}
	return nil
}

// CanSwapJoker reports whether replacement may take joker's place in
// combination. Only sequences give up their Jokers; the replacement must be a
// natural card of the sequence's suit and the result must still be valid.
func CanSwapJoker(combination Combination, joker, replacement Card) bool {
	if combination.Type != Sequence || replacement.IsJoker() {
		return false
	}
	idx := indexOfCard(combination.Cards, joker.ID)
	if idx < 0 || !combination.Cards[idx].IsJoker() {
		return false
	}
	naturals, _ := splitJokers(combination.Cards)
	if len(naturals) == 0 || replacement.Suit != naturals[0].Suit {
		return false
	}
	swapped := cloneCards(combination.Cards)
	swapped[idx] = replacement
	return IsValidSequence(swapped)
}

// CanExtendSequence reports whether extension can be attached at position
// while keeping the sequence valid.
func CanExtendSequence(sequence Combination, extension []Card, position Position) bool {
	if sequence.Type != Sequence || len(extension) == 0 {
		return false
	}
	joined, ok := joinAt(sequence.Cards, extension, position)
	if !ok {
		return false
	}
	return IsValidSequence(joined)
}

func joinAt(existing, extension []Card, position Position) ([]Card, bool) {
	out := make([]Card, 0, len(existing)+len(extension))
	switch position {
	case AtStart:
		out = append(out, extension...)
		out = append(out, existing...)
	case AtEnd:
		out = append(out, existing...)
		out = append(out, extension...)
	default:
		return nil, false
	}
	return out, true
}

func indexOfCard(cards []Card, id string) int {
	for i, c := range cards {
		if c.ID == id {
			return i
		}
	}
	return -1
}
