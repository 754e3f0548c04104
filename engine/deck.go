package engine

import (
	"fmt"

	"github.com/google/uuid"
)

const (
	// MinPlayers and MaxPlayers bound the table size.
	MinPlayers = 2
	MaxPlayers = 8
	// DeckSize is one 52-card deck plus four Jokers.
	DeckSize = 56
	// JokersPerDeck is the number of Jokers added to each deck.
	JokersPerDeck = 4
	// HandSize is the number of cards dealt to each player.
	HandSize = 11
)

// DeckCount returns how many decks a table of playerCount uses:
// 2 decks up to 4 players, 3 up to 6, 4 up to 8.
func DeckCount(playerCount int) (int, error) {
	switch {
	case playerCount < MinPlayers || playerCount > MaxPlayers:
		return 0, fmt.Errorf("%w: got %d", ErrInvalidPlayerCount, playerCount)
	case playerCount <= 4:
		return 2, nil
	case playerCount <= 6:
		return 3, nil
	default:
		return 4, nil
	}
}

// CreateDecks builds every deck needed for playerCount players and returns
// them shuffled. DeckIndex records the deck each card came from.
func CreateDecks(playerCount int, rng *RNG) ([]Card, error) {
	decks, err := DeckCount(playerCount)
	if err != nil {
		return nil, err
	}
	cards := make([]Card, 0, decks*DeckSize)
	for d := 0; d < decks; d++ {
		cards = append(cards, newDeck(d)...)
	}
	return Shuffle(cards, rng), nil
}

// newDeck returns one sorted 56-card deck tagged with deckIndex.
func newDeck(deckIndex int) []Card {
	cards := make([]Card, 0, DeckSize)
	for _, suit := range Suits {
		for _, rank := range rankOrder {
			cards = append(cards, Card{ID: uuid.NewString(), Rank: rank, Suit: suit, DeckIndex: deckIndex})
		}
	}
	for j := 0; j < JokersPerDeck; j++ {
		cards = append(cards, Card{ID: uuid.NewString(), Rank: RankJoker, Suit: SuitNone, DeckIndex: deckIndex})
	}
	return cards
}

// Shuffle returns a Fisher-Yates shuffled copy of items. The input is not modified.
func Shuffle[T any](items []T, rng *RNG) []T {
	out := make([]T, len(items))
	copy(out, items)
	for i := len(out) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}
